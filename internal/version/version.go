package version

import "runtime"

// Set at build time via -ldflags "-X ...".
var (
	AppName        = "Server Jester"
	AppDescription = "Discord bot with a music remote, mini-games, warnings and a message classifier"
	AppFullName    = AppName + " - " + AppDescription
	Version        = "dev"
	BuildDate      = "unknown"
	GoVersion      = runtime.Version()
)
