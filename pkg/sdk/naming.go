package sdk

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"unicode"

	"github.com/stoewer/go-strcase"

	"github.com/kination/incite/internal/nspath"
)

// anonymous matches the generated names of function literals
var anonymous = regexp.MustCompile(`^(func)?\d+$`)

// funcName returns the unqualified name of fn, e.g. "buildWheel" for
// "github.com/acme/tasks.buildWheel" and "Deploy" for a method value.
func funcName(fn Func) string {
	full := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	name := full[strings.LastIndex(full, "/")+1:]
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// displayName converts a function name into its kebab case task name
func displayName(raw string) (string, error) {
	if raw == "" || anonymous.MatchString(raw) {
		return "", &nspath.ConfigurationError{
			Subject: "task name",
			Spec:    raw,
			Reason:  "function literals have no usable name; set one with sdk.Name",
		}
	}
	return strcase.KebabCase(raw), nil
}

func validateName(name string) error {
	switch {
	case strings.Contains(name, nspath.Separator):
		return &nspath.ConfigurationError{Subject: "task name", Spec: name, Reason: fmt.Sprintf("contains %q", nspath.Separator)}
	case strings.ContainsFunc(name, unicode.IsSpace):
		return &nspath.ConfigurationError{Subject: "task name", Spec: name, Reason: "contains whitespace"}
	case strings.HasPrefix(name, "-"):
		return &nspath.ConfigurationError{Subject: "task name", Spec: name, Reason: "starts with '-'"}
	}
	return nil
}
