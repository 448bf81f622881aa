package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/justext/internal/domain"
	"github.com/kailas-cloud/justext/internal/justify"
)

// FormatCommand returns the format subcommand.
func FormatCommand() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Aliases:   []string{"fmt"},
		Usage:     "Justify a file (or stdin) and print the result",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "width",
				Aliases: []string{"w"},
				Usage:   "Line width in bytes",
				EnvVars: []string{"JUSTEXT_WIDTH"},
				Value:   domain.LineWidth,
			},
		},
		Action: formatText,
	}
}

// CountCommand returns the count subcommand.
func CountCommand() *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Print the number of words a justify request would be charged",
		ArgsUsage: "[FILE]",
		Action:    countWords,
	}
}

func formatText(c *cli.Context) error {
	width := c.Int("width")
	if width <= 0 {
		return fmt.Errorf("width must be positive, got %d", width)
	}

	text, err := readInput(c)
	if err != nil {
		return err
	}

	out := justify.Justify(text, width)
	if out == "" {
		return nil
	}
	_, err = fmt.Fprintln(c.App.Writer, out)
	return err
}

func countWords(c *cli.Context) error {
	text, err := readInput(c)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.App.Writer, justify.CountWords(text))
	return err
}

// readInput reads the first argument as a file path, or stdin when none is
// given or the argument is "-".
func readInput(c *cli.Context) (string, error) {
	if c.NArg() > 1 {
		return "", fmt.Errorf("expected at most one file, got %d", c.NArg())
	}

	path := c.Args().First()
	if path == "" || path == "-" {
		r := c.App.Reader
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
