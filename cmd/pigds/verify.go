package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/bigjosh/gotham-pi-maker/pkg/gds"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check GDSII files for structural integrity",
		Long: `The verify command decodes GDSII files (gzip compressed when the name
ends in .gz) and checks record order, unique structure names and that every
reference names a structure defined earlier in the same file.

Example:
  pigds verify pi.gds
  pigds verify pi_part*.gds.gz --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

type verifyResult struct {
	File   string      `json:"file"`
	Valid  bool        `json:"valid"`
	Error  string      `json:"error,omitempty"`
	Report *gds.Report `json:"report,omitempty"`
}

func verifyFile(path string) (*gds.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	return gds.Verify(r)
}

func runVerify(args []string) error {
	var (
		results []verifyResult
		failed  int
	)
	for _, path := range args {
		rep, err := verifyFile(path)
		res := verifyResult{File: path, Valid: err == nil, Report: rep}
		if err != nil {
			res.Error = err.Error()
			failed++
		}
		results = append(results, res)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if !r.Valid {
				printInfo("✗ %s: %s\n", r.File, r.Error)
				continue
			}
			rep := r.Report
			printInfo("✓ %s: library %s, %d structures, %d boundaries, %d srefs, %d arefs, %d placements, top %s\n",
				r.File, rep.Library, rep.Structures, rep.Boundaries, rep.SRefs, rep.ARefs, rep.Placements, strings.Join(rep.Roots, ","))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, len(args))
	}
	return nil
}
