package version

// Version is the current version of grotesque. It gets replaced at build time
// with the real version.
var Version = "dev"
