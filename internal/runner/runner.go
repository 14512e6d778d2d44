package runner

import (
	"sort"
	"strings"

	"github.com/kination/incite/internal/nspath"
)

// SplitTarget expands a dotted task name in the first argument into path
// segments, so "build.python.build-wheel -x" becomes
// "build python build-wheel -x". Flags and undotted names pass through.
func SplitTarget(args []string) []string {
	if len(args) == 0 {
		return args
	}
	first := args[0]
	if strings.HasPrefix(first, "-") || !strings.Contains(first, nspath.Separator) {
		return args
	}

	segments := strings.Split(first, nspath.Separator)
	out := make([]string, 0, len(segments)+len(args)-1)
	out = append(out, segments...)
	return append(out, args[1:]...)
}

// FlagNames returns the flag names declared in opts, sorted
func FlagNames(opts TaskOptions) []string {
	names := make([]string, 0, len(opts.ArgHelp))
	for name := range opts.ArgHelp {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
