package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/albertocavalcante/go-blendlaunch/selection"
	"github.com/albertocavalcante/go-blendlaunch/selector"
	"github.com/albertocavalcante/go-blendlaunch/settings"
)

// NewSelectorsCommand returns the selectors subcommand.
func NewSelectorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "selectors",
		Usage: "Manage rules for file versions that are not installed",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List selector rules",
				Action: runSelectorsList,
			},
			{
				Name:      "set",
				Usage:     "Add or replace a rule",
				ArgsUsage: "<version> <query>",
				Action:    runSelectorsSet,
			},
			{
				Name:      "remove",
				Usage:     "Delete a rule",
				ArgsUsage: "<version>",
				Action:    runSelectorsRemove,
			},
		},
		DefaultCommand: "list",
	}
}

func runSelectorsList(_ context.Context, cmd *cli.Command) error {
	s, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	store, err := s.Selectors()
	if err != nil {
		return err
	}

	w := outWriter(cmd)
	if store.Len() == 0 {
		fmt.Fprintln(w, "No selectors.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE VERSION\tRESOLVES TO")
	for _, e := range store.Entries() {
		fmt.Fprintf(tw, "%s\t%s\n", e.Trigger, e.Resolution)
	}
	return tw.Flush()
}

func runSelectorsSet(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return errors.New("usage: selectors set <version> <query>")
	}
	trigger, err := selection.ParseQuery(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	resolution, err := selection.ParseQuery(cmd.Args().Get(1))
	if err != nil {
		return err
	}

	s, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	store, err := s.Selectors()
	if err != nil {
		return err
	}
	e := selector.Entry{Trigger: trigger, Resolution: resolution}
	store.Set(e)
	if err := settings.SaveSelectors(path, store); err != nil {
		return err
	}
	fmt.Fprintf(outWriter(cmd), "Set %s\n", e)
	return nil
}

func runSelectorsRemove(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("usage: selectors remove <version>")
	}
	trigger, err := selection.ParseQuery(cmd.Args().First())
	if err != nil {
		return err
	}

	s, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	store, err := s.Selectors()
	if err != nil {
		return err
	}
	if !store.Remove(trigger) {
		return fmt.Errorf("no selector for %s", trigger)
	}
	if err := settings.SaveSelectors(path, store); err != nil {
		return err
	}
	fmt.Fprintf(outWriter(cmd), "Removed %s\n", trigger)
	return nil
}
