package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/bigjosh/gotham-pi-maker/pkg/pipeline"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
)

// printer formats counts with thousands separators.
var printer = message.NewPrinter(language.English)

var rootCmd = &cobra.Command{
	Use:   "pigds",
	Short: "Lay out digits of pi as a GDSII mask",
	Long: `pigds turns a stream of pi digits into hierarchical GDSII layout files:
a grid of justified text blocks with macro gridlines, drawn with a bitmap font
and compressed by sharing cells for frequent digit windows.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML options file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	if quiet {
		pipeline.SetLogger(nil)
		return
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadOptions returns the defaults overlaid with the --config file.
func loadOptions() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if configPath == "" {
		return opts, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", configPath, err)
	}
	return opts, nil
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		printer.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
