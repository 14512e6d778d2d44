// Package v1 contains the TaskNamespace manifest types
package v1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var (
	// GroupVersion is the group version used to describe task namespaces
	GroupVersion = schema.GroupVersion{Group: "tasks.incite.io", Version: "v1"}
)

// KindTaskNamespace is the kind of a task namespace manifest
const KindTaskNamespace = "TaskNamespace"
