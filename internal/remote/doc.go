// ABOUTME: Remote control package for the soundboard
// ABOUTME: HTTP and websocket access to play, pause and inspect sounds
// Package remote lets tools and level editors trigger sounds over the network.
//
// Routes:
//
//	GET  /sounds                      list sound names
//	POST /sounds/:name/play?loop&echo play a sound
//	POST /stop                        stop looping sounds
//	POST /pause, POST /resume         global pause
//	GET  /stats                       scheduler statistics
//	GET  /ws                          status stream and commands
package remote
