package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/image/font/basicfont"

	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
	"github.com/bigjosh/gotham-pi-maker/pkg/font"
	"github.com/bigjosh/gotham-pi-maker/pkg/polymerge"
)

var fontFace string

func init() {
	cmd := newFontCmd()
	cmd.Flags().StringVar(&fontFace, "face", "", "Rasterize a built-in face instead (basic7x13)")
	rootCmd.AddCommand(cmd)
}

func newFontCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "font [file]",
		Short: "Validate and print a bitmap font",
		Long: `The font command loads a font file (or the built-in 4x6 font),
checks that every symbol is present and prints the table in font file
syntax, so a rasterized face can be saved and edited.

Example:
  pigds font
  pigds font my5x7.txt
  pigds font --face basic7x13 > basic.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFont(args)
		},
	}
	return cmd
}

type fontGlyphInfo struct {
	Symbol   string `json:"symbol"`
	Filled   int    `json:"filled"`
	Polygons int    `json:"polygons"`
	Advance  int    `json:"advance"`
}

func runFont(args []string) error {
	var (
		table *font.Table
		err   error
	)
	switch {
	case fontFace == "basic7x13":
		table, err = font.FromFace(basicfont.Face7x13, font.FaceOptions{})
	case fontFace != "":
		return fmt.Errorf("unknown face %q (must be basic7x13)", fontFace)
	case len(args) == 1:
		table, err = font.Load(args[0])
	default:
		table = font.Default()
	}
	if err != nil {
		return err
	}
	if err := table.Validate(digits.Alphabet); err != nil {
		return err
	}

	if !jsonOut {
		printInfo("%s", table.String())
		return nil
	}
	info := map[string]interface{}{"width": table.Width(), "height": table.Height()}
	var glyphs []fontGlyphInfo
	for _, sym := range table.Symbols() {
		g, _ := table.Glyph(sym)
		polys, err := polymerge.Merge(polymerge.FromGlyph(g))
		if err != nil {
			return fmt.Errorf("glyph %q: %w", sym, err)
		}
		glyphs = append(glyphs, fontGlyphInfo{Symbol: string(sym), Filled: g.Filled(), Polygons: len(polys), Advance: g.Advance})
	}
	info["glyphs"] = glyphs
	return printJSON(info)
}
