// Package sdk declares tasks into namespaces and exposes them through a task
// runner.
//
// Tasks are plain functions. They are registered with a namespace path and
// grouped into nested collections the first time the namespace is requested:
//
//	var _ = sdk.Task(hello)
//	var _ = sdk.TaskWith(sdk.Namespace("build"))(clean)
//	var _ = sdk.TaskWith(sdk.Namespace("build.python"))(buildWheel)
//
//	func main() { sdk.Main() }
//
// which is invoked as "prog build.python.build-wheel" or
// "prog build python build-wheel".
package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	incitev1 "github.com/kination/incite/api/v1"
	"github.com/kination/incite/internal/collector"
	"github.com/kination/incite/internal/config"
	"github.com/kination/incite/internal/ctxlog"
	"github.com/kination/incite/internal/logger"
	"github.com/kination/incite/internal/manifest"
	"github.com/kination/incite/internal/runner"
	"github.com/kination/incite/internal/runner/cobrarunner"
	"github.com/kination/incite/internal/runner/memory"
	"github.com/kination/incite/internal/tree"
)

type (
	// Func is the signature of a task function
	Func = runner.Func
	// Invocation carries the command line a task was invoked with
	Invocation = runner.Invocation
	// Runner is a task runner tasks can be exposed through
	Runner = runner.Runner
	// Collection is a runner's group of tasks and sub-collections
	Collection = runner.Collection
)

// Decorator registers the function it is applied to and returns it unchanged
type Decorator func(Func) Func

// App owns one task namespace and the runner it is exposed through
type App struct {
	name    string
	cfg     *config.Config
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
	runners *runner.Registry
	runner  runner.Runner
	custom  runner.Runner

	tree      *tree.Tree
	collector *collector.Collector

	mu   sync.Mutex
	errs []error
}

// Option configures an App
type Option func(*App)

// WithConfig uses cfg instead of loading the configuration
func WithConfig(cfg *config.Config) Option {
	return func(a *App) { a.cfg = cfg }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithRunner exposes tasks through r regardless of the configured runner
func WithRunner(r Runner) Option {
	return func(a *App) { a.custom = r }
}

// WithOutput sets the streams runners and builtin flags write to
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// New creates an App. name is the program name shown in help output.
func New(name string, opts ...Option) (*App, error) {
	a := &App{
		name:    name,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		runners: runner.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.cfg == nil {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		a.cfg = cfg
	} else if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	if a.logger == nil {
		a.logger = logger.New(a.cfg.LogLevel, a.cfg.LogFormat, a.stderr)
	}

	a.runners.Register(cobrarunner.New(name, a.stdout, a.stderr))
	a.runners.Register(memory.New(a.stdout, a.stderr))
	selected := a.cfg.Runner
	if a.custom != nil {
		a.runners.Register(a.custom)
		selected = a.custom.Name()
	}
	r, err := a.runners.Get(selected)
	if err != nil {
		return nil, fmt.Errorf("failed to select runner: %w", err)
	}
	a.runner = r

	a.tree = tree.New()
	a.collector = collector.New(a.tree, a.logger)
	a.logger.Debug("Task namespace created.", "program", name, "runner", r.Name())
	return a, nil
}

// Name returns the program name
func (a *App) Name() string {
	return a.name
}

// Runner returns the runner tasks are exposed through
func (a *App) Runner() Runner {
	return a.runner
}

// Register declares fn as a task and returns any declaration error
func (a *App) Register(fn Func, opts ...TaskOption) error {
	if fn == nil {
		return errors.New("cannot register a nil task function")
	}
	cfg, err := resolve(fn, opts)
	if err != nil {
		return err
	}

	inv, err := a.runner.Wrap(fn, cfg.Runner)
	if err != nil {
		return fmt.Errorf("failed to wrap task %s: %w", cfg.Namespace.Qualify(cfg.Name), err)
	}
	return a.collector.Register(cfg.Namespace, tree.Task{
		Name:      cfg.Name,
		Invocable: inv,
		Options:   cfg.Runner,
	})
}

// Task declares fn as a task and returns fn unchanged. Declaration errors
// are reported by Namespace and every later operation.
func (a *App) Task(fn Func, opts ...TaskOption) Func {
	if err := a.Register(fn, opts...); err != nil {
		a.mu.Lock()
		a.errs = append(a.errs, err)
		a.mu.Unlock()
	}
	return fn
}

// TaskWith returns a Decorator declaring tasks with opts
func (a *App) TaskWith(opts ...TaskOption) Decorator {
	return func(fn Func) Func {
		return a.Task(fn, opts...)
	}
}

// Err returns the declaration errors recorded by Task, or nil
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return utilerrors.NewAggregate(a.errs)
}

// Namespace returns the root collection holding every declared task.
// Repeated calls without new declarations return the same collection.
func (a *App) Namespace(ctx context.Context) (Collection, error) {
	if err := a.Err(); err != nil {
		return nil, err
	}
	return a.collector.Materialize(ctxlog.WithLogger(ctx, a.logger), a.runner)
}

// TaskNames returns the dotted name of every declared task
func (a *App) TaskNames(ctx context.Context) ([]string, error) {
	if _, err := a.Namespace(ctx); err != nil {
		return nil, err
	}
	return manifest.TaskNames(a.tree), nil
}

// Manifest describes every declared group and task
func (a *App) Manifest(ctx context.Context) (*incitev1.TaskNamespace, error) {
	if _, err := a.Namespace(ctx); err != nil {
		return nil, err
	}
	return manifest.Build(a.name, a.tree), nil
}

// WriteManifest encodes the manifest to w. An empty format uses the
// configured manifest format.
func (a *App) WriteManifest(ctx context.Context, w io.Writer, format string) error {
	doc, err := a.Manifest(ctx)
	if err != nil {
		return err
	}
	if format == "" {
		format = a.cfg.ManifestFormat
	}
	return manifest.Encode(w, doc, format)
}

// Execute runs a command line. Leading --list, --manifest and
// --manifest-format flags are handled here; everything from the first
// non-flag argument on is passed to the runner.
func (a *App) Execute(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet(a.name, pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {}
	list := fs.BoolP("list", "l", false, "list available tasks")
	showManifest := fs.Bool("manifest", false, "print the task manifest")
	format := fs.String("manifest-format", a.cfg.ManifestFormat, "manifest format (yaml or json)")

	rest := args
	if err := fs.Parse(args); err != nil {
		// help belongs to the runner
		if !errors.Is(err, pflag.ErrHelp) {
			return err
		}
	} else {
		rest = fs.Args()
	}

	root, err := a.Namespace(ctx)
	if err != nil {
		return err
	}

	switch {
	case *list:
		for _, name := range manifest.TaskNames(a.tree) {
			fmt.Fprintln(a.stdout, name)
		}
		return nil
	case *showManifest:
		return a.WriteManifest(ctx, a.stdout, *format)
	}

	a.logger.Debug("Running task.", "runner", a.runner.Name(), "args", rest)
	return a.runner.Run(ctxlog.WithLogger(ctx, a.logger), root, rest)
}
