// Package version provides the debtgraph tool version.
package version

// Version is the debtgraph tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/ingoeichhorst/debtgraph/pkg/version.Version=1.2.0"
var Version = "dev"
