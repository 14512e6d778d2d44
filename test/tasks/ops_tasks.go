package main

import (
	"context"
	"fmt"

	"github.com/kination/incite/pkg/sdk"
)

var (
	_ = sdk.TaskWith(sdk.Namespace("ops"), sdk.Help("Deploy the current build."))(deploy)
	_ = sdk.TaskWith(sdk.Namespace("ops.db"), sdk.Name("migrate"), sdk.Aliases("mig"))(migrateDatabase)
	_ = sdk.TaskWith(sdk.Namespace("ops.db"), sdk.Hidden())(resetDatabase)
)

func deploy(ctx context.Context, inv *sdk.Invocation) error {
	fmt.Fprintln(inv.Stdout, "Deploying")
	return nil
}

func migrateDatabase(ctx context.Context, inv *sdk.Invocation) error {
	fmt.Fprintln(inv.Stdout, "Migrating")
	return nil
}

func resetDatabase(ctx context.Context, inv *sdk.Invocation) error {
	fmt.Fprintln(inv.Stdout, "Resetting")
	return nil
}

func main() {
	sdk.Main()
}
