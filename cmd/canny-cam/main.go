package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/ironsheep/canny-cam/cmd/canny-cam/commands"
	"github.com/ironsheep/canny-cam/internal/logger"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	root := commands.NewRootCmd(commands.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	})

	err := root.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
	}
	os.Exit(commands.ExitCode(err))
}
