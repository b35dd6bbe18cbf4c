package version

// Version is set at build time with
// -ldflags "-X github.com/pulumi/cbom-tools/version.Version=<version>".
var Version = "v0.0.0-dev"
