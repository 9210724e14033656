// lsd-capture CLI - capturing reverse proxy for sequence diagrams
package main

import "github.com/lsd-consulting/lsd-interceptors-go/pkg/cli"

// Build-time variables set via ldflags
var (
	Version   = cli.UnsetVersion
	Commit    = cli.UnsetCommit
	BuildDate = cli.UnsetBuildDate
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
