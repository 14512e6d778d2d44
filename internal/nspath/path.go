// Package nspath parses namespace specifiers into canonical path segments.
// A specifier is either a slice of segments or a single dot-delimited string;
// both forms address the same position in the task tree.
package nspath

import (
	"fmt"
	"strings"
	"unicode"
)

// Separator delimits segments in the string form of a namespace
const Separator = "."

// Path is an ordered list of namespace segments. The empty Path is the root.
type Path []string

// Root returns the root path
func Root() Path {
	return Path{}
}

// ConfigurationError reports a malformed namespace specifier or task name
type ConfigurationError struct {
	// Subject names what was malformed, "namespace" when empty
	Subject string
	Spec    string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "namespace"
	}
	return fmt.Sprintf("invalid %s %q: %s", subject, e.Spec, e.Reason)
}

// Parse converts a namespace specifier into a canonical Path.
//
// Accepted specifiers are nil, a string ("build.python"), a []string or a
// Path. Nil, the empty string and an empty slice all mean the root. Segments
// have underscores replaced by hyphens, so "the_other" and "the-other" are
// the same group.
func Parse(spec any) (Path, error) {
	switch v := spec.(type) {
	case nil:
		return Root(), nil
	case string:
		if v == "" {
			return Root(), nil
		}
		return fromSegments(v, strings.Split(v, Separator))
	case []string:
		return fromSegments(fmt.Sprint(v), v)
	case Path:
		return fromSegments(v.String(), v)
	default:
		return nil, &ConfigurationError{
			Spec:   fmt.Sprint(spec),
			Reason: fmt.Sprintf("unsupported specifier type %T", spec),
		}
	}
}

// MustParse is like Parse but panics on error
func MustParse(spec any) Path {
	p, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return p
}

func fromSegments(spec string, segments []string) (Path, error) {
	path := make(Path, 0, len(segments))
	for i, seg := range segments {
		if seg == "" {
			return nil, &ConfigurationError{Spec: spec, Reason: fmt.Sprintf("segment %d is empty", i)}
		}
		if strings.Contains(seg, Separator) {
			return nil, &ConfigurationError{Spec: spec, Reason: fmt.Sprintf("segment %q contains %q", seg, Separator)}
		}
		if strings.ContainsFunc(seg, unicode.IsSpace) {
			return nil, &ConfigurationError{Spec: spec, Reason: fmt.Sprintf("segment %q contains whitespace", seg)}
		}
		path = append(path, NormalizeSegment(seg))
	}
	return path, nil
}

// NormalizeSegment returns the CLI form of a group name
func NormalizeSegment(seg string) string {
	return strings.ReplaceAll(seg, "_", "-")
}

// IsRoot reports whether p addresses the root node
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// String renders the dotted form. The root renders as the empty string.
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// Key returns a comparable form of p for use as a map key
func (p Path) Key() string {
	return p.String()
}

// Child returns a new path with seg appended
func (p Path) Child(seg string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, seg)
}

// Qualify returns the dotted name of an entry called name under p
func (p Path) Qualify(name string) string {
	if p.IsRoot() {
		return name
	}
	return p.String() + Separator + name
}

// Equal reports whether p and other have the same segments
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
