package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/memseg/scope"
	"github.com/wippyai/memseg/store"
)

func main() {
	var (
		configFile  = flag.String("config", "", "YAML workload file")
		backing     = flag.String("backing", "all", "Backing to walk: mapped, linear, heap or all")
		layoutName  = flag.String("layout", "s32", "Element layout (s8..u64, f32, f64, optional be/le suffix)")
		elements    = flag.Uint64("elements", 1_000_000, "Elements to allocate")
		iterations  = flag.Int("iterations", 10, "Walks per run")
		inclusive   = flag.Bool("inclusive", false, "Visit the final element (>= instead of >)")
		verbose     = flag.Bool("v", false, "Log scope and store lifecycle")
		plain       = flag.Bool("plain", false, "Disable styled output")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	log := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log = l
		defer func() { _ = log.Sync() }()
	}
	scope.SetLogger(log)
	store.SetLogger(log)

	runs, err := resolveWorkloads(*configFile, *backing, *layoutName, *elements, *iterations, *inclusive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: slicewalk [-backing mapped|linear|heap|all] [-layout s32] [-elements N] [-iterations N]")
		fmt.Fprintln(os.Stderr, "       slicewalk -config walk.yaml")
		fmt.Fprintln(os.Stderr, "       slicewalk -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(runs, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	styled := !*plain && term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(context.Background(), runs, log, styled); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resolveWorkloads(configFile, backing, layoutName string, elements uint64, iterations int, inclusive bool) ([]workload, error) {
	if configFile != "" {
		return loadWorkloads(configFile)
	}

	names := []string{backing}
	if backing == "all" {
		names = backings
	}
	runs := make([]workload, 0, len(names))
	for _, b := range names {
		w := workload{
			Backing:    b,
			Layout:     layoutName,
			Elements:   elements,
			Iterations: iterations,
			Inclusive:  inclusive,
		}
		w.defaults()
		if err := w.validate(); err != nil {
			return nil, err
		}
		runs = append(runs, w)
	}
	return runs, nil
}

func run(ctx context.Context, runs []workload, log *zap.Logger, styled bool) error {
	results := make([]result, 0, len(runs))
	failed := 0
	for _, w := range runs {
		r := w.run(ctx, log)
		if r.err != nil {
			failed++
		}
		results = append(results, r)
	}

	fmt.Print(renderReport(results, styled))
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(runs))
	}
	return nil
}
