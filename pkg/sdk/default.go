package sdk

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
)

var (
	defaultMu  sync.Mutex
	defaultApp *App
)

// Default returns the App behind the package-level functions, creating it
// on first use. It panics if the configuration cannot be loaded.
func Default() *App {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultApp == nil {
		app, err := New(filepath.Base(os.Args[0]))
		if err != nil {
			panic(fmt.Sprintf("incite: %v", err))
		}
		defaultApp = app
	}
	return defaultApp
}

// ResetDefault drops the default App and every task declared on it
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultApp = nil
}

// Task declares fn on the default App
func Task(fn Func, opts ...TaskOption) Func {
	return Default().Task(fn, opts...)
}

// TaskWith returns a Decorator declaring tasks on the default App
func TaskWith(opts ...TaskOption) Decorator {
	return func(fn Func) Func {
		return Default().Task(fn, opts...)
	}
}

// Register declares fn on the default App
func Register(fn Func, opts ...TaskOption) error {
	return Default().Register(fn, opts...)
}

// TaskNamespace returns the root collection of the default App
func TaskNamespace() (Collection, error) {
	return Default().Namespace(context.Background())
}

// Main runs the default App with the process arguments and exits with
// status 1 on error.
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := Default().Execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
