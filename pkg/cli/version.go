package cli

// Version is the running release, overridden at build time with
// -ldflags "-X github.com/Fepozopo/tilt/pkg/cli.Version=x.y.z".
var Version = "0.1.0"
