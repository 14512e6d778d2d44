// Package cobrarunner exposes namespace collections as cobra command trees.
// Groups become commands with subcommands and tasks become leaf commands, so
// "build.python.build-wheel" is run as "prog build python build-wheel" or
// "prog build.python.build-wheel".
package cobrarunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kination/incite/internal/nspath"
	"github.com/kination/incite/internal/runner"
)

// RunnerName is the name the cobra runner registers under
const RunnerName = "cobra"

// Runner implements runner.Runner on top of cobra
type Runner struct {
	program string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a cobra runner. program names the root command; nil writers
// default to the process streams.
func New(program string, stdout, stderr io.Writer) *Runner {
	// Help output lists commands in declaration order
	cobra.EnableCommandSorting = false

	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Runner{program: program, stdout: stdout, stderr: stderr}
}

// Name returns the runner name
func (r *Runner) Name() string {
	return RunnerName
}

// Task is a task function wrapped as a leaf command
type Task struct {
	cmd  *cobra.Command
	opts runner.TaskOptions
}

// Options returns the options the task was wrapped with
func (t *Task) Options() runner.TaskOptions {
	return t.opts
}

// Command returns the underlying cobra command
func (t *Task) Command() *cobra.Command {
	return t.cmd
}

// Wrap builds a leaf command calling fn. ArgHelp entries become string flags.
func (r *Runner) Wrap(fn runner.Func, opts runner.TaskOptions) (runner.Invocable, error) {
	if fn == nil {
		return nil, errors.New("cannot wrap a nil task function")
	}

	cmd := &cobra.Command{
		Short:   opts.Short,
		Long:    opts.Long,
		Aliases: opts.Aliases,
		Hidden:  opts.Hidden,
		Args:    cobra.ArbitraryArgs,
	}
	flagNames := runner.FlagNames(opts)
	for _, name := range flagNames {
		cmd.Flags().String(name, "", opts.ArgHelp[name])
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		inv := &runner.Invocation{
			Path:   commandPath(cmd).String(),
			Args:   args,
			Flags:  make(map[string]string, len(flagNames)),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}
		for _, name := range flagNames {
			v, err := cmd.Flags().GetString(name)
			if err != nil {
				return err
			}
			inv.Flags[name] = v
		}
		return fn(cmd.Context(), inv)
	}

	return &Task{cmd: cmd, opts: opts}, nil
}

// Collection is a command grouping tasks and sub-collections
type Collection struct {
	cmd  *cobra.Command
	root bool
}

// NewCollection creates a group command. An empty name creates the root
// command named after the program.
func (r *Runner) NewCollection(name string) runner.Collection {
	cmd := &cobra.Command{
		Use:  name,
		Args: cobra.ArbitraryArgs,
		RunE: runGroup,
	}
	if name == "" {
		cmd.Use = r.program
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		cmd.CompletionOptions.DisableDefaultCmd = true
	} else {
		cmd.Short = fmt.Sprintf("Tasks in the %s namespace", name)
	}
	return &Collection{cmd: cmd, root: name == ""}
}

// runGroup prints help for a bare group and rejects names it does not hold
func runGroup(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return fmt.Errorf("unknown task %q", commandPath(cmd).Qualify(args[0]))
}

// Name returns the group name, empty for the root
func (c *Collection) Name() string {
	if c.root {
		return ""
	}
	return c.cmd.Name()
}

// Command returns the underlying cobra command
func (c *Collection) Command() *cobra.Command {
	return c.cmd
}

// AddCollection attaches child as a subcommand
func (c *Collection) AddCollection(child runner.Collection) error {
	group, ok := child.(*Collection)
	if !ok {
		return fmt.Errorf("cobra: unsupported collection type %T", child)
	}
	if group.root {
		return errors.New("cobra: cannot nest a root collection")
	}
	if err := c.checkFree(group.cmd.Name()); err != nil {
		return err
	}
	c.cmd.AddCommand(group.cmd)
	return nil
}

// AddTask attaches task as a subcommand called name
func (c *Collection) AddTask(task runner.Invocable, name string) error {
	t, ok := task.(*Task)
	if !ok {
		return fmt.Errorf("cobra: unsupported task type %T", task)
	}
	for _, key := range append([]string{name}, t.cmd.Aliases...) {
		if err := c.checkFree(key); err != nil {
			return err
		}
	}
	t.cmd.Use = name
	c.cmd.AddCommand(t.cmd)
	return nil
}

func (c *Collection) checkFree(name string) error {
	for _, sub := range c.cmd.Commands() {
		if sub.Name() == name {
			return fmt.Errorf("cobra: command %q already exists under %q", name, c.cmd.Name())
		}
		if sub.HasAlias(name) {
			return fmt.Errorf("cobra: %q is already an alias of %q under %q", name, sub.Name(), c.cmd.Name())
		}
	}
	return nil
}

// Run executes args against the root command
func (r *Runner) Run(ctx context.Context, root runner.Collection, args []string) error {
	rc, ok := root.(*Collection)
	if !ok {
		return fmt.Errorf("cobra: unsupported collection type %T", root)
	}
	if args == nil {
		args = []string{}
	}
	reset(ctx, rc.cmd)
	rc.cmd.SetArgs(runner.SplitTarget(args))
	rc.cmd.SetOut(r.stdout)
	rc.cmd.SetErr(r.stderr)
	return rc.cmd.ExecuteContext(ctx)
}

// reset clears flag values left by a previous run and hands ctx to every
// command, since cobra only propagates a context to commands without one.
func reset(ctx context.Context, cmd *cobra.Command) {
	cmd.SetContext(ctx)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, sub := range cmd.Commands() {
		reset(ctx, sub)
	}
}

// commandPath returns the namespace path of cmd, excluding the root command
func commandPath(cmd *cobra.Command) nspath.Path {
	var segs []string
	for cursor := cmd; cursor.HasParent(); cursor = cursor.Parent() {
		segs = append([]string{cursor.Name()}, segs...)
	}
	return nspath.Path(segs)
}
