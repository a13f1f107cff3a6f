// Package main provides the CLI entry point for xlsxchart.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/javajack/xlsxchart"
)

var (
	outputPath       string
	oneSheetPerChart bool
	encoding         string
	vars             map[string]string
	verbose          bool
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlsxchart",
		Short: "Build Excel workbooks with native charts from YAML or JSON specs",
		Long: `xlsxchart turns a declarative chart description (series over categories,
with colours and layout hints) into an .xlsx workbook holding the data
tables and native charts.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	buildCmd := &cobra.Command{
		Use:   "build [spec.yaml|-]",
		Short: "Generate a workbook from a chart spec",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	buildCmd.Flags().BoolVar(&oneSheetPerChart, "one-sheet-per-chart", false, "Give every chart its own worksheet")
	buildCmd.Flags().StringVar(&encoding, "encoding", "", "Output encoding: buffer, base64, text (default: from spec)")
	buildCmd.Flags().StringToStringVar(&vars, "var", nil, "Title template variable, key=value (repeatable)")

	validateCmd := &cobra.Command{
		Use:   "validate [spec.yaml|-]",
		Short: "Check a chart spec without generating a workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	describeCmd := &cobra.Command{
		Use:   "describe [input.xlsx]",
		Short: "List the sheets, rows and charts of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runDescribe,
	}

	rootCmd.AddCommand(buildCmd, validateCmd, describeCmd)
	return rootCmd
}

func logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadSpec(cmd *cobra.Command, path string) (any, error) {
	if path == "-" {
		return xlsxchart.LoadSpec(cmd.InOrStdin())
	}
	return xlsxchart.LoadSpecFile(path)
}

func generatorOptions(cmd *cobra.Command) ([]xlsxchart.Option, error) {
	opts := []xlsxchart.Option{xlsxchart.WithLogger(logger(cmd.ErrOrStderr()))}
	if encoding != "" {
		enc, err := xlsxchart.ParseEncoding(encoding)
		if err != nil {
			return nil, err
		}
		opts = append(opts, xlsxchart.WithOutputEncoding(enc))
	}
	if cmd.Flags().Changed("one-sheet-per-chart") {
		opts = append(opts, xlsxchart.WithOneSheetPerChart(oneSheetPerChart))
	}
	if len(vars) > 0 {
		m := make(map[string]any, len(vars))
		for k, v := range vars {
			m[k] = v
		}
		opts = append(opts, xlsxchart.WithVars(m))
	}
	return opts, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	raw, err := loadSpec(cmd, args[0])
	if err != nil {
		return err
	}
	opts, err := generatorOptions(cmd)
	if err != nil {
		return err
	}
	data, err := xlsxchart.NewGenerator(opts...).Generate(raw)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if outputPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("%w %q: %w", xlsxchart.ErrWriteFile, outputPath, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", outputPath, humanize.Bytes(uint64(len(data))))
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	raw, err := loadSpec(cmd, args[0])
	if err != nil {
		return err
	}
	issues := xlsxchart.Validate(raw, xlsxchart.WithLogger(logger(cmd.ErrOrStderr())))
	errorCount := 0
	for _, issue := range issues {
		fmt.Fprintln(cmd.OutOrStdout(), issue)
		if issue.Severity == xlsxchart.SeverityError {
			errorCount++
		}
	}
	if errorCount > 0 {
		return fmt.Errorf("%d errors found", errorCount)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok (%d warnings)\n", len(issues))
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}
	out, err := xlsxchart.Describe(bytes.NewReader(data))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	fmt.Fprintf(cmd.OutOrStdout(), "Size: %s\n", humanize.Bytes(uint64(len(data))))
	return nil
}
