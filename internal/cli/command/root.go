// Package command provides CLI command definitions for the justext tool.
//
// The commands run the justification engine locally, without a server or
// a usage token.
package command

import (
	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/justext/internal/version"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "justext",
		Usage:   "Fully justify plain text to a fixed line width",
		Version: version.String(),
		Commands: []*cli.Command{
			FormatCommand(),
			CountCommand(),
		},
	}
}
