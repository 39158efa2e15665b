package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigjosh/gotham-pi-maker/pkg/dedup"
	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
	"github.com/bigjosh/gotham-pi-maker/pkg/layout"
)

var (
	planMinLength int
	planMaxLength int
	planNameLen   int
)

func init() {
	cmd := newPlanCmd()
	cmd.Flags().IntVar(&planMinLength, "min-length", 2, "Shortest window length to evaluate")
	cmd.Flags().IntVar(&planMaxLength, "max-length", 10, "Longest window length to evaluate")
	cmd.Flags().IntVar(&planNameLen, "name-length", 4, "Typical structure name length for the cost model")
	rootCmd.AddCommand(cmd)
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <digits>",
		Short: "Estimate output size for a range of window lengths",
		Long: `The plan command counts windows for each length in a range and
evaluates the GDSII cost model, to pick the window length offline.

Example:
  pigds plan pi.txt --min-length 4 --max-length 8
  pigds plan pi.txt --config grid.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(args)
		},
	}
	return cmd
}

type planResult struct {
	Symbols   int64            `json:"symbols"`
	Estimates []dedup.Estimate `json:"estimates"`
	Best      int              `json:"best_length"`
}

func runPlan(args []string) error {
	if planMinLength < 1 || planMaxLength > dedup.MaxKeyLength || planMinLength > planMaxLength {
		return fmt.Errorf("window lengths must satisfy 1 <= min <= max <= %d", dedup.MaxKeyLength)
	}
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	grid, err := layout.NewGrid(opts.Grid)
	if err != nil {
		return err
	}
	src, err := digits.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	model := dedup.GDSCostModel(planNameLen)
	res := planResult{Symbols: grid.SymbolCount()}
	for l := planMinLength; l <= planMaxLength; l++ {
		cfg := opts.Dedup
		cfg.Length = l
		idx, err := dedup.Build(context.Background(), grid, src, cfg)
		if err != nil {
			return err
		}
		est := model.Estimate(idx.Histogram(), l, cfg.Threshold, res.Symbols)
		if len(res.Estimates) == 0 || est.Bytes < res.Estimates[res.Best-planMinLength].Bytes {
			res.Best = l
		}
		res.Estimates = append(res.Estimates, est)
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("%-6s %-10s %14s %16s %16s\n", "Length", "Threshold", "Promoted", "Glyph symbols", "Bytes")
	for _, e := range res.Estimates {
		printInfo("%-6d %-10d %14d %16d %16.0f\n", e.Length, e.Threshold, e.Promoted, e.GlyphSymbols, e.Bytes)
	}
	printInfo("\nSmallest estimate at length %d\n", res.Best)
	return nil
}
