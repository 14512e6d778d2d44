package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// TaskSpec describes one declared task
type TaskSpec struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"` // Dotted name the task is invoked by
	Help    string   `json:"help,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
	Hidden  bool     `json:"hidden,omitempty"`
	Flags   []string `json:"flags,omitempty"`
}

// GroupSpec describes a namespace group and everything below it
type GroupSpec struct {
	Name   string      `json:"name"`
	Path   string      `json:"path"`
	Tasks  []TaskSpec  `json:"tasks,omitempty"`
	Groups []GroupSpec `json:"groups,omitempty"`
}

// NamespaceSpec is the root of the task tree
type NamespaceSpec struct {
	Tasks  []TaskSpec  `json:"tasks,omitempty"`
	Groups []GroupSpec `json:"groups,omitempty"`
}

// TaskNamespace is the manifest describing every task a program declares
type TaskNamespace struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec NamespaceSpec `json:"spec"`
}

// NewTaskNamespace returns an empty manifest with type information set
func NewTaskNamespace(name string) *TaskNamespace {
	return &TaskNamespace{
		TypeMeta: metav1.TypeMeta{
			APIVersion: GroupVersion.String(),
			Kind:       KindTaskNamespace,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
		},
	}
}
