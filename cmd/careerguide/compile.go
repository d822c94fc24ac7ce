package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/akshayks13/genai-frontend-sub000/internal/compile"
	"github.com/akshayks13/genai-frontend-sub000/internal/config"
	"github.com/akshayks13/genai-frontend-sub000/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var compileCmd = &cobra.Command{
	Use:   "compile <file.tex>",
	Short: "Compile a LaTeX file to PDF",
	Long:  "Compiles a LaTeX file the same way the gateway does: remote service, then local pdflatex, then a plain-text layout.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

var (
	compileOutput  string
	compileConfig  string
	compileVerbose bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "out", "o", "", "Path to output PDF (defaults to the input name with .pdf)")
	compileCmd.Flags().StringVar(&compileConfig, "config", "", "Path to a YAML config file")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "Print a compile summary")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	input := args[0]
	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	cfg, err := config.Load(compileConfig)
	if err != nil {
		return err
	}
	logger := zap.NewNop()
	if compileVerbose {
		if logger, err = observability.NewLogger("debug", "console"); err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
	}

	result, err := newCompiler(cfg, logger).Compile(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	output := compileOutput
	if output == "" {
		output = strings.TrimSuffix(input, ".tex") + ".pdf"
	}
	if err := os.WriteFile(output, result.PDF, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if compileVerbose {
		summary := &observability.CompileSummary{
			Input:  input,
			Output: output,
			Stage:  string(result.Stage),
			Bytes:  len(result.PDF),
			Pages:  result.Pages,
		}
		for _, line := range result.Lines {
			summary.Lines = append(summary.Lines, line.Text)
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintCompileSummary(summary)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", output, result.Stage)
	}
	return nil
}
