package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/albertocavalcante/go-blendlaunch/library"
	"github.com/albertocavalcante/go-blendlaunch/selection"
)

// NewMatchCommand returns the match subcommand.
func NewMatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "Show which installed versions a query selects",
		ArgsUsage: "<query>",
		Action:    runMatch,
	}
}

func runMatch(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("usage: match <query>")
	}
	q, err := selection.ParseQuery(cmd.Args().First())
	if err != nil {
		return err
	}

	s, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	idx, err := library.Load(ctx, s.LibraryFolder, s.Categories,
		library.WithWorkers(max(1, s.WorkerThreadCount)),
		library.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	w := outWriter(cmd)
	matches := selection.Match(q, idx.Versions())
	fmt.Fprintf(w, "%s: %d match(es)\n", q, len(matches))
	for _, v := range matches {
		fmt.Fprintf(w, "  %s\t%s\n", v, idx.ByVersion[v].Link)
	}
	return nil
}
