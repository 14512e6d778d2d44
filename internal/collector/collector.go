// Package collector stores declared tasks by namespace path and feeds them
// into the namespace tree when the task collection is materialized.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kination/incite/internal/ctxlog"
	"github.com/kination/incite/internal/nspath"
	"github.com/kination/incite/internal/runner"
	"github.com/kination/incite/internal/tree"
)

type entry struct {
	path  nspath.Path
	tasks []tree.Task
	// fed counts the tasks already attached to the tree
	fed int
}

// Collector maps namespace paths to ordered task lists
type Collector struct {
	mu      sync.Mutex
	tree    *tree.Tree
	logger  *slog.Logger
	keys    []string
	entries map[string]*entry
}

// New creates a collector feeding into t. A nil logger uses slog.Default.
func New(t *tree.Tree, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		tree:    t,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Register appends task under path. A name already registered under the
// same path is rejected with a *tree.DuplicateNameError.
func (c *Collector) Register(path nspath.Path, task tree.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := path.Key()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{path: append(nspath.Path{}, path...)}
		c.entries[key] = e
		c.keys = append(c.keys, key)
	}
	for _, existing := range e.tasks {
		if existing.Name == task.Name {
			return &tree.DuplicateNameError{Key: task.Name, Path: e.path, Existing: "task"}
		}
	}

	e.tasks = append(e.tasks, task)
	c.logger.Debug("Task registered.", "path", path.String(), "task", task.Name)
	return nil
}

// Materialize attaches every task not yet in the tree and returns the root
// collection built by r. Calling it again without new registrations returns
// the same cached collection.
func (c *Collector) Materialize(ctx context.Context, r runner.Runner) (runner.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := ctxlog.FromContext(ctx)

	attached := 0
	for _, key := range c.keys {
		e := c.entries[key]
		for e.fed < len(e.tasks) {
			task := e.tasks[e.fed]
			if _, err := c.tree.AttachTask(e.path, task); err != nil {
				return nil, fmt.Errorf("failed to attach task %s: %w", e.path.Qualify(task.Name), err)
			}
			e.fed++
			attached++
		}
	}
	if attached > 0 {
		logger.Debug("Tasks attached to namespace tree.", "count", attached)
	}

	root, err := c.tree.View(r)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize namespace tree: %w", err)
	}
	return root, nil
}

// Paths returns the registered paths in first-seen order
func (c *Collector) Paths() []nspath.Path {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]nspath.Path, 0, len(c.keys))
	for _, key := range c.keys {
		paths = append(paths, c.entries[key].path)
	}
	return paths
}

// Tasks returns the tasks registered under path in registration order
func (c *Collector) Tasks(path nspath.Path) []tree.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path.Key()]
	if !ok {
		return nil
	}
	out := make([]tree.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// Len returns the total number of registered tasks
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		n += len(e.tasks)
	}
	return n
}

// Tree returns the tree the collector feeds
func (c *Collector) Tree() *tree.Tree {
	return c.tree
}
