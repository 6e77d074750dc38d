// Package plume regenerates C sources while keeping the code users write
// between USER CODE markers.
package plume

// Version is the plume release.
const Version = "0.1.0"
