// ABOUTME: Level helpers for soundcheck reports
// ABOUTME: Converts sample peaks to decibels relative to full scale
package main

import "math"

// Reported for silent sounds instead of -Inf
const silenceDBFS = -96.0

func dbfs(peak int) float64 {
	if peak <= 0 {
		return silenceDBFS
	}
	return max(silenceDBFS, 20*math.Log10(float64(peak)/math.MaxInt16))
}
