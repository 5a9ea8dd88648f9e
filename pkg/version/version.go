// Package version provides the cytoscnpy tool version.
package version

// Version is the cytoscnpy tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/cytoscnpy/cytoscnpy/pkg/version.Version=2.0.1"
var Version = "dev"
