// Command ganttpdf renders gantt exports and stored projects as single-page
// PDF charts.
//
//	ganttpdf export plan.json -o plan.pdf
//	ganttpdf import plan.json --project house
//	ganttpdf plan --project house
//	ganttpdf export --project house --config ganttpdf.yaml > house.pdf
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/lvillar/ganttpdf/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd(&cli.App{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
