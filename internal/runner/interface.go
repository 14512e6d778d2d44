// Package runner defines the capabilities incite needs from a task runner.
// A runner wraps task functions into invocable commands, groups them into
// nested collections and dispatches command lines against the root collection.
package runner

import (
	"context"
	"io"
)

// Func is the signature of a task function
type Func func(ctx context.Context, inv *Invocation) error

// Invocation carries the command line a task was invoked with
type Invocation struct {
	// Path is the dotted name the task was dispatched under
	Path string

	// Args are the positional arguments after the task name
	Args []string

	// Flags holds the values of the flags declared through TaskOptions.ArgHelp
	Flags map[string]string

	Stdout io.Writer
	Stderr io.Writer
}

// TaskOptions are passed through verbatim to the runner when wrapping a task
type TaskOptions struct {
	// Short is the one-line help text
	Short string

	// Long is the full help text
	Long string

	// Aliases are alternative names for the task
	Aliases []string

	// Hidden hides the task from help listings
	Hidden bool

	// ArgHelp declares string flags, keyed by flag name, with their help text
	ArgHelp map[string]string
}

// Invocable is a task function wrapped by a Runner
type Invocable interface {
	// Options returns the options the task was wrapped with
	Options() TaskOptions
}

// Collection groups named tasks and sub-collections
type Collection interface {
	// Name returns the collection name, empty for the root
	Name() string

	// AddCollection attaches a child collection under its own name
	AddCollection(child Collection) error

	// AddTask attaches a wrapped task under name
	AddTask(task Invocable, name string) error
}

// Runner is the external task runner incite organizes tasks for
type Runner interface {
	// Name returns the name the runner is registered under
	Name() string

	// Wrap turns a task function into an invocable task
	Wrap(fn Func, opts TaskOptions) (Invocable, error)

	// NewCollection creates an empty collection. An empty name creates a root.
	NewCollection(name string) Collection

	// Run dispatches args against the root collection
	Run(ctx context.Context, root Collection, args []string) error
}
