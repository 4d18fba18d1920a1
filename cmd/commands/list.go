package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/albertocavalcante/go-blendlaunch/internal/platform"
	"github.com/albertocavalcante/go-blendlaunch/library"
	"github.com/albertocavalcante/go-blendlaunch/settings"
)

// NewListCommand returns the list subcommand.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List installed builds",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "unrecognized",
				Usage: "List library folders that are not builds",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep listing as the library changes",
			},
		},
		Action: runList,
	}
}

func runList(ctx context.Context, cmd *cli.Command) error {
	s, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	w := outWriter(cmd)

	if cmd.Bool("unrecognized") {
		return printUnrecognized(w, s)
	}
	if err := printBuilds(ctx, w, s); err != nil {
		return err
	}
	if !cmd.Bool("watch") {
		return nil
	}

	watcher := &library.Watcher{
		Root:       s.LibraryFolder,
		Categories: s.Categories,
		Logger:     slog.Default(),
		OnChange: func() {
			fmt.Fprintln(w)
			if err := printBuilds(ctx, w, s); err != nil {
				slog.Warn("relist failed", "error", err)
			}
		},
	}
	return watcher.Run(ctx)
}

func printBuilds(ctx context.Context, w io.Writer, s *settings.Settings) error {
	idx, err := library.Load(ctx, s.LibraryFolder, s.Categories,
		library.WithWorkers(max(1, s.WorkerThreadCount)),
		library.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	if idx.Len() == 0 {
		fmt.Fprintf(w, "No builds in %s\n", s.LibraryFolder)
	} else {
		fmt.Fprintf(w, "%s builds in %s\n", platform.Name(runtime.GOOS), s.LibraryFolder)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tLINK\tBRANCH\tHASH\tFAV")
		for _, b := range idx.Builds() {
			fav := ""
			if b.Link == s.FavoriteBuildLink {
				fav = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.Version, b.Link, dash(b.Branch), dash(b.BuildHash), fav)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, c := range idx.Conflicts {
		fmt.Fprintf(w, "duplicate: %s\n", c)
	}
	for _, f := range idx.Failures {
		fmt.Fprintf(w, "unreadable: %s: %v\n", f.Path, f.Err)
	}
	return nil
}

func printUnrecognized(w io.Writer, s *settings.Settings) error {
	entries := library.Unrecognized(library.Scan(s.LibraryFolder, s.Categories, runtime.GOOS))
	if len(entries) == 0 {
		fmt.Fprintln(w, "No unrecognized folders.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tFOLDER\tPATH")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Category, e.Name, e.Path)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
