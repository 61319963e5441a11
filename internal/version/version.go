// ABOUTME: Version information for the sound engine binaries
// ABOUTME: Reported by the CLI, the remote API and mDNS
package version

const (
	// Version is the release of this module
	Version = "0.4.0"

	// Product is the name shown in the soundboard
	Product = "Tilegame Soundboard"

	// Manufacturer identifies the game studio
	Manufacturer = "Tilegame"
)

// UserAgent identifies this build to remote peers
func UserAgent() string {
	return "tilegame-soundcore/" + Version
}
