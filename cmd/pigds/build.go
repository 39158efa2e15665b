package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
	"github.com/bigjosh/gotham-pi-maker/pkg/font"
	"github.com/bigjosh/gotham-pi-maker/pkg/pipeline"
)

var (
	buildOutput    string
	buildFont      string
	buildMerge     bool
	buildGzip      bool
	buildWorkers   int
	buildRows      int
	buildChunkRows int
	buildLength    int
	buildThreshold int
)

func init() {
	cmd := newBuildCmd()
	f := cmd.Flags()
	f.StringVarP(&buildOutput, "output", "o", "pi.gds", "Output file (part numbers are added for several chunks)")
	f.StringVar(&buildFont, "font", "", "Bitmap font file (default: built-in 4x6)")
	f.BoolVar(&buildMerge, "merge", false, "Draw glyphs as merged polygons instead of pixel arrays")
	f.BoolVar(&buildGzip, "gzip", false, "Compress output files")
	f.IntVar(&buildWorkers, "workers", 0, "Chunks encoded at once (0 = all CPUs)")
	f.IntVar(&buildRows, "rows", 0, "Process only the first N grid rows (0 = all)")
	f.IntVar(&buildChunkRows, "chunk-rows", 0, "Grid rows per output file")
	f.IntVar(&buildLength, "dedup-length", 0, "Shared window length (0 disables sharing)")
	f.IntVar(&buildThreshold, "dedup-threshold", 0, "Uses needed to share a window")
	rootCmd.AddCommand(cmd)
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <digits>",
		Short: "Build the GDSII layout",
		Long: `The build command lays out a normalized digit stream and writes one
GDSII file per chunk of grid rows.

Example:
  pigds build pi.txt -o pi.gds
  pigds build pi.txt --rows 1000 --chunk-rows 1000 --merge
  pigds build pi.txt --config grid.yaml --gzip -o pi.gds.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args)
		},
	}
	return cmd
}

// buildOptions applies the flags the user set on top of the config file.
func buildOptions(cmd *cobra.Command) (pipeline.Options, error) {
	opts, err := loadOptions()
	if err != nil {
		return opts, err
	}
	f := cmd.Flags()
	if f.Changed("output") || opts.Output == "" {
		opts.Output = buildOutput
	}
	if f.Changed("merge") {
		opts.Merge = buildMerge
	}
	if f.Changed("gzip") {
		opts.Gzip = buildGzip
	}
	if f.Changed("workers") {
		opts.Workers = buildWorkers
	}
	if f.Changed("rows") {
		opts.Grid.Rows = buildRows
	}
	if f.Changed("chunk-rows") {
		opts.Grid.ChunkRows = buildChunkRows
	}
	if f.Changed("dedup-length") {
		opts.Dedup.Length = buildLength
	}
	if f.Changed("dedup-threshold") {
		opts.Dedup.Threshold = buildThreshold
	}
	return opts, nil
}

func loadFont(path string) (*font.Table, error) {
	if path == "" {
		return font.Default(), nil
	}
	return font.Load(path)
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}
	table, err := loadFont(buildFont)
	if err != nil {
		return err
	}
	src, err := digits.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := pipeline.Run(ctx, opts, table, src)
	if err != nil {
		return fmt.Errorf("build %s: %w", args[0], err)
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Rows:            %d\n", res.Rows)
	printInfo("Symbols:         %d\n", res.Symbols)
	printInfo("Windows:         %d (%d distinct)\n", res.Dedup.Windows, res.Dedup.Distinct)
	printInfo("Promoted:        %d (window %d, threshold %d)\n", res.Dedup.Promoted, res.Dedup.Length, res.Dedup.Threshold)
	printInfo("Shared refs:     %d\n", res.Usage.SharedPlacements)
	printInfo("Glyph refs:      %d\n", res.Usage.GlyphPlacements)
	printInfo("Demoted windows: %d\n", res.Usage.Demoted)
	printInfo("Unique used:     %d\n", res.UniqueUsed)
	for _, kc := range res.TopUsed {
		printInfo("  %s  %d\n", kc.Key, kc.Count)
	}
	printInfo("Files:\n")
	for _, c := range res.Chunks {
		printInfo("  %s  %d bytes, %d cells\n", c.Path, c.FileBytes, c.Cells)
	}
	printInfo("Elapsed:         %s\n", res.Elapsed)
	return nil
}
