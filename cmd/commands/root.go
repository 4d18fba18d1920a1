package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/albertocavalcante/go-blendlaunch/settings"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "blendlaunch",
		Usage: "Pick and launch the right Blender build",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Aliases: []string{"s"},
				Usage:   "Path to settings file (.jsonc, .json, .yaml)",
				Value:   settings.DefaultPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "library",
				Usage: "Library folder, overrides the settings file",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent metadata reads, overrides the settings file",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			NewLaunchCommand(),
			NewListCommand(),
			NewSelectorsCommand(),
			NewHeaderCommand(),
			NewMatchCommand(),
		},
		DefaultCommand: "launch",
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(errWriter(cmd), &slog.HandlerOptions{Level: level})))
	return ctx, nil
}

// loadSettings reads the settings file and applies flag overrides.
func loadSettings(cmd *cli.Command) (*settings.Settings, string, error) {
	path := cmd.String("settings")
	s, err := settings.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("load settings: %w", err)
	}

	// CLI flags override settings
	if cmd.IsSet("library") {
		s.LibraryFolder = cmd.String("library")
	}
	if cmd.IsSet("workers") {
		if n := cmd.Int("workers"); n > 0 {
			s.WorkerThreadCount = n
		}
	}
	return s, path, nil
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func inReader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
