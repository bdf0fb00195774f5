package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/jrsteele09/go-travels-client/internal/config"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/internal/logging"
	"github.com/spf13/pflag"
)

// runFunc executes a command once its flags are parsed.
type runFunc func(ctx context.Context, a *app, args []string) error

type command struct {
	name    string
	args    string
	summary string
	// setup registers the command's flags and returns the function that
	// runs it with the parsed values.
	setup func(flags *pflag.FlagSet) runFunc
}

func commands() []*command {
	cmds := append(accountCommands(), travelCommands()...)
	cmds = append(cmds, adminCommands()...)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })
	return cmds
}

func findCommand(name string) *command {
	for _, c := range commands() {
		if c.name == name {
			return c
		}
	}
	return nil
}

// execute parses the global flags, then dispatches to the named command.
func execute(ctx context.Context, args []string, env environment) error {
	global := pflag.NewFlagSet("travelsctl", pflag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.SetInterspersed(false)
	configPath := global.String("config", "", "YAML configuration file (default $TRAVELS_CONFIG)")
	logLevel := global.String("log-level", "", "trace, debug, info, warn, error or off")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return usage(env.stdout, config.New(), global)
		}
		return fmt.Errorf("[travelsctl] %w: %w", errors.ErrInvalidRequest, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	level := *logLevel
	if level == "" {
		level = cfg.GetLogLevel()
	}
	logging.ConfigureRuntime(level)

	rest := global.Args()
	if len(rest) == 0 || rest[0] == "help" {
		return usage(env.stdout, cfg, global)
	}

	cmd := findCommand(rest[0])
	if cmd == nil {
		return fmt.Errorf("[travelsctl] %w: unknown command %q", errors.ErrInvalidRequest, rest[0])
	}

	flags := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	runCmd := cmd.setup(flags)
	if err := flags.Parse(rest[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return commandUsage(env.stdout, cmd, flags)
		}
		return fmt.Errorf("[%s] %w: %w", cmd.name, errors.ErrInvalidRequest, err)
	}

	a, err := newApp(cfg, env)
	if err != nil {
		return err
	}
	return runCmd(ctx, a, flags.Args())
}

func usage(w io.Writer, cfg config.Config, global *pflag.FlagSet) error {
	displayAppname(w, cfg.GetAppName())
	fmt.Fprintln(w, "Usage: travelsctl [global flags] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commands() {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.name, c.args, c.summary)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, global.FlagUsages())
	return nil
}

func commandUsage(w io.Writer, cmd *command, flags *pflag.FlagSet) error {
	fmt.Fprintf(w, "Usage: travelsctl %s [flags] %s\n\n%s\n", cmd.name, cmd.args, cmd.summary)
	if flags.HasFlags() {
		fmt.Fprintln(w)
		fmt.Fprint(w, flags.FlagUsages())
	}
	return nil
}

// exactArgs checks the positional argument count.
func exactArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("[%s] %w: expected %d argument(s), got %d", name, errors.ErrInvalidRequest, n, len(args))
	}
	return nil
}

// idArg parses a single positional numeric id.
func idArg(name string, args []string) (int, error) {
	if err := exactArgs(name, args, 1); err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("[%s] %w: %q is not a valid id", name, errors.ErrInvalidRequest, args[0])
	}
	return id, nil
}
