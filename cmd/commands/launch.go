package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	blendlaunch "github.com/albertocavalcante/go-blendlaunch"
	"github.com/albertocavalcante/go-blendlaunch/launch"
	"github.com/albertocavalcante/go-blendlaunch/selection"
	"github.com/albertocavalcante/go-blendlaunch/selector"
	"github.com/albertocavalcante/go-blendlaunch/settings"
)

// stdinIsTerminal reports whether the user can be prompted.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// NewLaunchCommand returns the launch subcommand.
func NewLaunchCommand() *cli.Command {
	return &cli.Command{
		Name:      "launch",
		Usage:     "Launch the build for a file, a version query or the favorite",
		ArgsUsage: "[file.blend]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to a .blend file to open",
			},
			&cli.StringFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   `Version query, e.g. "4.2.^" or "3.-.*"`,
			},
			&cli.StringFlag{
				Name:  "select",
				Usage: "Answer for an unresolved version, instead of prompting",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the command line instead of launching",
			},
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "Wait for the build to exit",
			},
		},
		Action: runLaunch,
	}
}

func runLaunch(ctx context.Context, cmd *cli.Command) error {
	s, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	r, err := blendlaunch.Load(ctx, s, blendlaunch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	req := blendlaunch.Request{File: cmd.String("file"), Version: cmd.String("version")}
	if req.File == "" {
		req.File = cmd.Args().First()
	}

	out, err := r.Resolve(ctx, req)
	if err != nil {
		return err
	}

	if esc, ok := out.(blendlaunch.Escalate); ok {
		out, err = settle(ctx, cmd, r, esc, req, path)
		if err != nil {
			return err
		}
	}

	switch out := out.(type) {
	case blendlaunch.Launch:
		return start(ctx, cmd, s, out)
	case blendlaunch.Failure:
		return out.Reason
	case blendlaunch.Escalate:
		return &blendlaunch.EscalationError{Escalate: out}
	}
	return fmt.Errorf("unexpected outcome %T", out)
}

// settle asks for an answer to esc and resolves again with it.
//
// In version mode the answer replaces the query. In file mode it becomes a
// selector for the file's version, and only the selectors are written back to
// the settings file.
func settle(ctx context.Context, cmd *cli.Command, r *blendlaunch.Resolver, esc blendlaunch.Escalate,
	req blendlaunch.Request, path string) (blendlaunch.Outcome, error) {
	w := outWriter(cmd)
	printEscalation(w, esc)

	answer := cmd.String("select")
	if answer == "" {
		if !stdinIsTerminal() {
			return nil, &blendlaunch.EscalationError{Escalate: esc}
		}
		var err error
		answer, err = prompt(w, inReader(cmd), esc)
		if err != nil {
			return nil, err
		}
	}

	q, err := selection.ParseQuery(answer)
	if err != nil {
		return nil, err
	}

	if req.File == "" {
		return r.Resolve(ctx, blendlaunch.Request{Version: q.String()})
	}

	r.Learn(selector.Entry{Trigger: esc.Query, Resolution: q})
	if err := settings.SaveSelectors(path, r.Selectors()); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Saved selector %s -> %s\n", esc.Query, q)
	return r.Resolve(ctx, blendlaunch.Request{File: req.File})
}

func printEscalation(w io.Writer, esc blendlaunch.Escalate) {
	fmt.Fprintf(w, "No single build for %s", esc.Query)
	if esc.Selector != nil {
		fmt.Fprintf(w, " (selector %s)", *esc.Selector)
	}
	fmt.Fprintf(w, ": %v\n", esc.Err())
	if len(esc.Candidates) == 0 {
		fmt.Fprintln(w, "No builds installed.")
		return
	}
	fmt.Fprintln(w, "Candidates:")
	for _, v := range esc.Candidates {
		fmt.Fprintf(w, "  %s\n", v)
	}
}

func prompt(w io.Writer, in io.Reader, esc blendlaunch.Escalate) (string, error) {
	fmt.Fprintf(w, "Version query to use for %s: ", esc.Query)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return "", &blendlaunch.EscalationError{Escalate: esc}
	}
	return answer, nil
}

func start(ctx context.Context, cmd *cli.Command, s *settings.Settings, l blendlaunch.Launch) error {
	w := outWriter(cmd)
	launcher := &launch.Launcher{Args: s.LaunchArgs, Logger: slog.Default()}

	if cmd.Bool("dry-run") {
		argv, err := launcher.Argv(l.Build, l.File)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, strings.Join(argv, " "))
		return nil
	}

	wait := cmd.Bool("wait")
	if wait {
		launcher.Observer = launch.NewObserver()
		launcher.Stdout = w
		launcher.Stderr = errWriter(cmd)
	}
	p, err := launcher.Start(ctx, l.Build, l.File)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Launched %s (%s), pid %d\n", l.Build.Version, l.Build.Link, p.Pid())
	slog.Debug("build command line", "args", strings.Join(p.Args(), " "))
	if !wait {
		return nil
	}
	if err := launcher.Observer.Wait(ctx); err != nil {
		return err
	}
	return p.Wait()
}
