// Package manifest describes a namespace tree as a TaskNamespace document
// and as a flat list of dotted task names.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	incitev1 "github.com/kination/incite/api/v1"
	"github.com/kination/incite/internal/runner"
	"github.com/kination/incite/internal/tree"
)

// Supported encodings
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Build creates the manifest of every group and task in t
func Build(name string, t *tree.Tree) *incitev1.TaskNamespace {
	doc := incitev1.NewTaskNamespace(name)
	root := t.Root()
	doc.Spec.Tasks = taskSpecs(root)
	doc.Spec.Groups = groupSpecs(root)
	return doc
}

func taskSpecs(n *tree.Node) []incitev1.TaskSpec {
	tasks := n.Tasks()
	if len(tasks) == 0 {
		return nil
	}
	path := n.Path()
	specs := make([]incitev1.TaskSpec, 0, len(tasks))
	for _, task := range tasks {
		specs = append(specs, incitev1.TaskSpec{
			Name:    task.Name,
			Path:    path.Qualify(task.Name),
			Help:    task.Options.Short,
			Aliases: task.Options.Aliases,
			Hidden:  task.Options.Hidden,
			Flags:   flagNames(task.Options),
		})
	}
	return specs
}

func groupSpecs(n *tree.Node) []incitev1.GroupSpec {
	children := n.Children()
	if len(children) == 0 {
		return nil
	}
	specs := make([]incitev1.GroupSpec, 0, len(children))
	for _, child := range children {
		specs = append(specs, incitev1.GroupSpec{
			Name:   child.Name(),
			Path:   child.Path().String(),
			Tasks:  taskSpecs(child),
			Groups: groupSpecs(child),
		})
	}
	return specs
}

func flagNames(opts runner.TaskOptions) []string {
	names := runner.FlagNames(opts)
	if len(names) == 0 {
		return nil
	}
	return names
}

// TaskNames lists the dotted name of every task in t. Each node's own tasks
// come first, then its groups in insertion order.
func TaskNames(t *tree.Tree) []string {
	var names []string
	_ = t.Walk(func(n *tree.Node) error {
		path := n.Path()
		for _, task := range n.Tasks() {
			names = append(names, path.Qualify(task.Name))
		}
		return nil
	})
	return names
}

// Encode writes doc to w in the given format
func Encode(w io.Writer, doc *incitev1.TaskNamespace, format string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	switch format {
	case FormatJSON:
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case FormatYAML, "":
		return encodeYAML(w, data)
	default:
		return fmt.Errorf("unsupported manifest format: %s", format)
	}
}

// encodeYAML re-emits JSON as block-style YAML, keeping key order
func encodeYAML(w io.Writer, jsonData []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(jsonData, &node); err != nil {
		return fmt.Errorf("failed to convert manifest to yaml: %w", err)
	}
	resetStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}
