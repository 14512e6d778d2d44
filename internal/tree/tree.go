// Package tree holds the namespace tree: named nodes keyed by path segment,
// each carrying its tasks and a cached runner collection that is rebuilt only
// when the node or one of its descendants changed.
package tree

import (
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/kination/incite/internal/nspath"
	"github.com/kination/incite/internal/runner"
)

// Task is a registered task function and its display name
type Task struct {
	Name      string
	Invocable runner.Invocable
	Options   runner.TaskOptions
}

// DuplicateNameError reports a name used twice within one node
type DuplicateNameError struct {
	// Key is the conflicting name
	Key string
	// Path is the node the conflict happened in
	Path nspath.Path
	// Existing is what already holds the name: "task", "alias" or "group"
	Existing string
}

func (e *DuplicateNameError) Error() string {
	where := e.Path.String()
	if e.Path.IsRoot() {
		where = "<root>"
	}
	article := "a"
	if e.Existing == "alias" {
		article = "an"
	}
	return fmt.Sprintf("duplicate name %q in namespace %s: already used by %s %s", e.Key, where, article, e.Existing)
}

// Tree is the namespace tree. All methods are safe for concurrent use; a
// single lock guards the whole tree.
type Tree struct {
	mu   sync.Mutex
	root *Node
}

// New creates a tree holding only the root node
func New() *Tree {
	return &Tree{root: newNode("", nil)}
}

// Root returns the root node
func (t *Tree) Root() *Node {
	return t.root
}

// FindOrCreatePath returns the node at path, creating missing nodes
func (t *Tree) FindOrCreatePath(path nspath.Path) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.findOrCreate(path)
}

// Find returns the node at path if it exists
func (t *Tree) Find(path nspath.Path) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cursor := t.root
	for _, seg := range path {
		child, ok := cursor.index[seg]
		if !ok {
			return nil, false
		}
		cursor = child
	}
	return cursor, true
}

// AttachTask appends task to the node at path and invalidates the cached
// views of that node and all its ancestors. The task name and its aliases
// must be free in that node. A rejected task leaves the tree unchanged.
func (t *Tree) AttachTask(path nspath.Path, task Task) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := checkOwnNames(path, task); err != nil {
		return nil, err
	}

	node, missing := t.root.seek(path)
	if len(missing) > 0 {
		// nodes below the first missing segment are created empty
		if err := node.checkFree(missing[0]); err != nil {
			return nil, err
		}
	} else {
		for _, name := range taskKeys(task) {
			if err := node.checkFree(name); err != nil {
				return nil, err
			}
		}
	}

	node, err := t.findOrCreate(path)
	if err != nil {
		return nil, err
	}
	node.tasks = append(node.tasks, task)
	node.taskNames.Insert(task.Name)
	node.aliases.Insert(task.Options.Aliases...)
	node.invalidate()
	return node, nil
}

// taskKeys returns every name task answers to
func taskKeys(task Task) []string {
	return append([]string{task.Name}, task.Options.Aliases...)
}

// checkOwnNames rejects a task whose aliases repeat its name or each other
func checkOwnNames(path nspath.Path, task Task) error {
	seen := sets.New(task.Name)
	for _, alias := range task.Options.Aliases {
		if seen.Has(alias) {
			existing := "alias"
			if alias == task.Name {
				existing = "task"
			}
			return &DuplicateNameError{Key: alias, Path: path, Existing: existing}
		}
		seen.Insert(alias)
	}
	return nil
}

// View returns the materialized root collection, rebuilding dirty nodes only.
// Views cached for a different runner are rebuilt.
func (t *Tree) View(r runner.Runner) (runner.Collection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.root.materialize(r)
}

// Walk visits every node in pre-order, children in insertion order
func (t *Tree) Walk(fn func(n *Node) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.root.walk(fn)
}

func (t *Tree) findOrCreate(path nspath.Path) (*Node, error) {
	cursor, missing := t.root.seek(path)
	if len(missing) == 0 {
		return cursor, nil
	}
	if err := cursor.checkFree(missing[0]); err != nil {
		return nil, err
	}
	for _, seg := range missing {
		cursor = cursor.addChild(seg)
	}
	return cursor, nil
}

// Node is one namespace in the tree
type Node struct {
	name      string
	parent    *Node
	children  []*Node
	index     map[string]*Node
	tasks     []Task
	taskNames sets.Set[string]
	aliases   sets.Set[string]

	view       runner.Collection
	viewRunner string
	dirty      bool
}

func newNode(name string, parent *Node) *Node {
	return &Node{
		name:      name,
		parent:    parent,
		index:     make(map[string]*Node),
		taskNames: sets.New[string](),
		aliases:   sets.New[string](),
		dirty:     true,
	}
}

// Name returns the segment name, empty for the root
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, nil for the root
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether n is the root node
func (n *Node) IsRoot() bool { return n.parent == nil }

// Dirty reports whether the cached view must be rebuilt
func (n *Node) Dirty() bool { return n.dirty || n.view == nil }

// Children returns the child nodes in insertion order
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Tasks returns the node's tasks in registration order
func (n *Node) Tasks() []Task {
	out := make([]Task, len(n.tasks))
	copy(out, n.tasks)
	return out
}

// Path returns the path from the root to n
func (n *Node) Path() nspath.Path {
	var segs []string
	for cursor := n; cursor.parent != nil; cursor = cursor.parent {
		segs = append(segs, cursor.name)
	}
	path := make(nspath.Path, len(segs))
	for i, seg := range segs {
		path[len(segs)-1-i] = seg
	}
	return path
}

func (n *Node) addChild(name string) *Node {
	child := newNode(name, n)
	n.children = append(n.children, child)
	n.index[name] = child
	n.invalidate()
	return child
}

// seek returns the deepest existing node on path and the segments below it
// that do not exist yet
func (n *Node) seek(path nspath.Path) (*Node, nspath.Path) {
	cursor := n
	for i, seg := range path {
		child, ok := cursor.index[seg]
		if !ok {
			return cursor, path[i:]
		}
		cursor = child
	}
	return cursor, nil
}

// checkFree fails when name is already held by a task, a task alias or a
// child group
func (n *Node) checkFree(name string) error {
	if n.taskNames.Has(name) {
		return &DuplicateNameError{Key: name, Path: n.Path(), Existing: "task"}
	}
	if n.aliases.Has(name) {
		return &DuplicateNameError{Key: name, Path: n.Path(), Existing: "alias"}
	}
	if _, ok := n.index[name]; ok {
		return &DuplicateNameError{Key: name, Path: n.Path(), Existing: "group"}
	}
	return nil
}

// invalidate marks n and every ancestor dirty. An ancestor's view embeds
// the views of its descendants.
func (n *Node) invalidate() {
	for cursor := n; cursor != nil; cursor = cursor.parent {
		cursor.dirty = true
	}
}

func (n *Node) materialize(r runner.Runner) (runner.Collection, error) {
	if !n.Dirty() && n.viewRunner == r.Name() {
		return n.view, nil
	}

	coll := r.NewCollection(n.name)
	for _, child := range n.children {
		childView, err := child.materialize(r)
		if err != nil {
			return nil, err
		}
		if err := coll.AddCollection(childView); err != nil {
			return nil, fmt.Errorf("failed to add group %s: %w", child.Path(), err)
		}
	}
	for _, task := range n.tasks {
		if err := coll.AddTask(task.Invocable, task.Name); err != nil {
			return nil, fmt.Errorf("failed to add task %s: %w", n.Path().Qualify(task.Name), err)
		}
	}

	n.view = coll
	n.viewRunner = r.Name()
	n.dirty = false
	return coll, nil
}

func (n *Node) walk(fn func(n *Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, child := range n.children {
		if err := child.walk(fn); err != nil {
			return err
		}
	}
	return nil
}
