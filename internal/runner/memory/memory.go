// Package memory provides an in-process runner that keeps collections as
// plain structs. It is used for dry runs and for asserting tree structure.
package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"

	"github.com/kination/incite/internal/nspath"
	"github.com/kination/incite/internal/runner"
)

// RunnerName is the name the memory runner registers under
const RunnerName = "memory"

// ErrNoTask is returned by Run when args do not name a task
var ErrNoTask = errors.New("no task specified")

// Runner implements runner.Runner without any CLI framework
type Runner struct {
	stdout io.Writer
	stderr io.Writer
}

// New creates a memory runner writing task output to stdout and stderr.
// Nil writers default to the process streams.
func New(stdout, stderr io.Writer) *Runner {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Runner{stdout: stdout, stderr: stderr}
}

// Name returns the runner name
func (r *Runner) Name() string {
	return RunnerName
}

// Task is a wrapped task function
type Task struct {
	fn   runner.Func
	opts runner.TaskOptions
}

// Options returns the options the task was wrapped with
func (t *Task) Options() runner.TaskOptions {
	return t.opts
}

// Wrap turns fn into a Task
func (r *Runner) Wrap(fn runner.Func, opts runner.TaskOptions) (runner.Invocable, error) {
	if fn == nil {
		return nil, errors.New("cannot wrap a nil task function")
	}
	return &Task{fn: fn, opts: opts}, nil
}

type namedTask struct {
	name string
	task *Task
}

// Collection is a named group of tasks and sub-collections
type Collection struct {
	name   string
	groups []*Collection
	tasks  []namedTask
}

// NewCollection creates an empty collection
func (r *Runner) NewCollection(name string) runner.Collection {
	return &Collection{name: name}
}

// Name returns the collection name
func (c *Collection) Name() string {
	return c.name
}

// AddCollection attaches child under its own name
func (c *Collection) AddCollection(child runner.Collection) error {
	group, ok := child.(*Collection)
	if !ok {
		return fmt.Errorf("memory: unsupported collection type %T", child)
	}
	if group.name == "" {
		return errors.New("memory: cannot nest an unnamed collection")
	}
	if c.has(group.name) {
		return fmt.Errorf("memory: name %q already used in collection %q", group.name, c.name)
	}
	c.groups = append(c.groups, group)
	return nil
}

// AddTask attaches task under name
func (c *Collection) AddTask(task runner.Invocable, name string) error {
	t, ok := task.(*Task)
	if !ok {
		return fmt.Errorf("memory: unsupported task type %T", task)
	}
	for _, key := range append([]string{name}, t.opts.Aliases...) {
		if c.has(key) {
			return fmt.Errorf("memory: name %q already used in collection %q", key, c.name)
		}
	}
	c.tasks = append(c.tasks, namedTask{name: name, task: t})
	return nil
}

// Groups returns the sub-collections in insertion order
func (c *Collection) Groups() []*Collection {
	out := make([]*Collection, len(c.groups))
	copy(out, c.groups)
	return out
}

// Group returns the sub-collection called name
func (c *Collection) Group(name string) (*Collection, bool) {
	for _, g := range c.groups {
		if g.name == name {
			return g, true
		}
	}
	return nil, false
}

// Task returns the task called name or aliased as name
func (c *Collection) Task(name string) (*Task, bool) {
	for _, t := range c.tasks {
		if t.name == name || slices.Contains(t.task.opts.Aliases, name) {
			return t.task, true
		}
	}
	return nil, false
}

// LocalTaskNames returns the names of the tasks directly in c
func (c *Collection) LocalTaskNames() []string {
	names := make([]string, 0, len(c.tasks))
	for _, t := range c.tasks {
		names = append(names, t.name)
	}
	return names
}

// TaskNames returns the dotted names of every task reachable from c,
// own tasks first, then each group in insertion order
func (c *Collection) TaskNames() []string {
	var names []string
	c.collectNames(nspath.Root(), &names)
	return names
}

func (c *Collection) collectNames(prefix nspath.Path, names *[]string) {
	for _, t := range c.tasks {
		*names = append(*names, prefix.Qualify(t.name))
	}
	for _, g := range c.groups {
		g.collectNames(prefix.Child(g.name), names)
	}
}

func (c *Collection) has(name string) bool {
	if _, ok := c.Group(name); ok {
		return true
	}
	_, ok := c.Task(name)
	return ok
}

// Run resolves args against root and calls the named task. Dotted and
// space-separated task paths are both accepted.
func (r *Runner) Run(ctx context.Context, root runner.Collection, args []string) error {
	cursor, ok := root.(*Collection)
	if !ok {
		return fmt.Errorf("memory: unsupported collection type %T", root)
	}

	args = runner.SplitTarget(args)
	path := nspath.Root()
	for i, arg := range args {
		if group, ok := cursor.Group(arg); ok {
			cursor = group
			path = path.Child(arg)
			continue
		}
		if task, ok := cursor.Task(arg); ok {
			return r.invoke(ctx, task, path.Qualify(arg), args[i+1:])
		}
		return fmt.Errorf("unknown task %q", path.Qualify(arg))
	}
	if path.IsRoot() {
		return ErrNoTask
	}
	return fmt.Errorf("%w: %q is a group", ErrNoTask, path.String())
}

func (r *Runner) invoke(ctx context.Context, task *Task, name string, args []string) error {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(r.stderr)
	values := make(map[string]*string, len(task.opts.ArgHelp))
	for _, flagName := range runner.FlagNames(task.opts) {
		values[flagName] = flags.String(flagName, "", task.opts.ArgHelp[flagName])
	}
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("task %s: %w", name, err)
	}

	inv := &runner.Invocation{
		Path:   name,
		Args:   flags.Args(),
		Flags:  make(map[string]string, len(values)),
		Stdout: r.stdout,
		Stderr: r.stderr,
	}
	for flagName, v := range values {
		inv.Flags[flagName] = *v
	}
	return task.fn(ctx, inv)
}
