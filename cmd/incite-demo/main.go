// Command incite-demo declares a small task namespace:
//
//	incite-demo --list
//	incite-demo hello
//	incite-demo build.clean
//	incite-demo build python build-wheel --out dist
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kination/incite/pkg/sdk"
)

var (
	_ = sdk.Task(hello, sdk.Help("Say hello to the world."))

	_ = sdk.TaskWith(sdk.Namespace("build"), sdk.Help("Clean build artifacts."))(clean)

	_ = sdk.TaskWith(
		sdk.Namespace([]string{"build", "python"}),
		sdk.Help("Build Python wheel."),
		sdk.ArgHelp(map[string]string{"out": "output directory"}),
	)(buildWheel)

	_ = sdk.TaskWith(sdk.Namespace("build.python"), sdk.Help("Build Python sdist."))(buildSdist)
)

func hello(ctx context.Context, inv *sdk.Invocation) error {
	fmt.Fprintln(inv.Stdout, "Hello, world!")
	return nil
}

func clean(ctx context.Context, inv *sdk.Invocation) error {
	return os.RemoveAll("dist")
}

func buildWheel(ctx context.Context, inv *sdk.Invocation) error {
	out := inv.Flags["out"]
	if out == "" {
		out = "dist"
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	fmt.Fprintf(inv.Stdout, "Building wheel into %s\n", out)
	return nil
}

func buildSdist(ctx context.Context, inv *sdk.Invocation) error {
	return sdk.InDir(filepath.Join(".", "python"), func() error {
		fmt.Fprintln(inv.Stdout, "Building sdist")
		return nil
	})
}

func main() {
	sdk.Main()
}
