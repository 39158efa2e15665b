package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigjosh/gotham-pi-maker/internal/writer"
	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
)

func init() {
	rootCmd.AddCommand(newNormalizeCmd())
}

func newNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <input> <output>",
		Short: "Convert a digit file into the symbol stream",
		Long: `The normalize command drops whitespace and fuses the decimal point
with the digit after it ("3.14159" becomes "3P4159"), producing the stream
build expects.

Example:
  pigds normalize pi-billion.txt pi.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(args)
		},
	}
	return cmd
}

func runNormalize(args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := writer.Create(args[1], writer.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = out.Abort() }()

	n, err := digits.Normalize(in, out)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", args[0], err)
	}
	if err := out.Commit(); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]interface{}{"input": args[0], "output": args[1], "symbols": n})
	}
	printInfo("Wrote %d symbols to %s\n", n, args[1])
	return nil
}
