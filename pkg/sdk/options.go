package sdk

import (
	"github.com/kination/incite/internal/nspath"
	"github.com/kination/incite/internal/runner"
)

// TaskConfig is the resolved declaration of one task
type TaskConfig struct {
	// Namespace is the group path the task is placed under
	Namespace nspath.Path

	// Name is the display name. Empty means derive it from the function name.
	Name string

	// Runner holds the options passed through to the runner
	Runner runner.TaskOptions
}

// TaskOption configures a task declaration
type TaskOption func(*TaskConfig) error

// Namespace places the task under a group path, given as a dotted string
// ("build.python"), a []string ({"build", "python"}) or nil for the root.
func Namespace(spec any) TaskOption {
	return func(c *TaskConfig) error {
		path, err := nspath.Parse(spec)
		if err != nil {
			return err
		}
		c.Namespace = path
		return nil
	}
}

// Name overrides the display name. It is used verbatim.
func Name(name string) TaskOption {
	return func(c *TaskConfig) error {
		c.Name = name
		return nil
	}
}

// Help sets the one-line help text
func Help(short string) TaskOption {
	return func(c *TaskConfig) error {
		c.Runner.Short = short
		return nil
	}
}

// Description sets the long help text
func Description(long string) TaskOption {
	return func(c *TaskConfig) error {
		c.Runner.Long = long
		return nil
	}
}

// Aliases adds alternative names
func Aliases(aliases ...string) TaskOption {
	return func(c *TaskConfig) error {
		c.Runner.Aliases = append(c.Runner.Aliases, aliases...)
		return nil
	}
}

// Hidden hides the task from help listings
func Hidden() TaskOption {
	return func(c *TaskConfig) error {
		c.Runner.Hidden = true
		return nil
	}
}

// ArgHelp declares string flags keyed by name, with their help text
func ArgHelp(help map[string]string) TaskOption {
	return func(c *TaskConfig) error {
		if c.Runner.ArgHelp == nil {
			c.Runner.ArgHelp = make(map[string]string, len(help))
		}
		for name, text := range help {
			c.Runner.ArgHelp[name] = text
		}
		return nil
	}
}

func resolve(fn Func, opts []TaskOption) (*TaskConfig, error) {
	cfg := &TaskConfig{Namespace: nspath.Root()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Name == "" {
		name, err := displayName(funcName(fn))
		if err != nil {
			return nil, err
		}
		cfg.Name = name
	} else if err := validateName(cfg.Name); err != nil {
		return nil, err
	}
	return cfg, nil
}
