package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/albertocavalcante/go-blendlaunch/blendfile"
	"github.com/albertocavalcante/go-blendlaunch/version"
)

// NewHeaderCommand returns the header subcommand.
func NewHeaderCommand() *cli.Command {
	return &cli.Command{
		Name:      "header",
		Usage:     "Show the header of .blend files",
		ArgsUsage: "<file.blend>...",
		Action:    runHeader,
	}
}

func runHeader(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New("usage: header <file.blend>...")
	}

	tw := tabwriter.NewWriter(outWriter(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tVERSION\tRAW\tPOINTER\tENDIAN\tCOMPRESSION")
	var errs []error
	for _, file := range cmd.Args().Slice() {
		h, err := blendfile.ReadHeader(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		endian := "little"
		if !h.LittleEndian {
			endian = "big"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			file, version.Decode(h.Version), h.Version, h.PointerSize, endian, h.Compression)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return errors.Join(errs...)
}
