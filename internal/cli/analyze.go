package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/ingest"
)

var analyzePretty bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single claim document",
	Long: `Analyze runs one claim document through extraction, normalization,
the claim rules, scoring and the decision policy, and prints the result
as JSON on stdout.

Example:
  claimassist analyze claim.pdf
  claimassist analyze scan.png --pretty --log-level debug`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzePretty, "pretty", false, "indent the JSON output")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	st, err := setup(cmd)
	if err != nil {
		return err
	}

	loader := ingest.NewFSIngestor(st.cfg.Document.MaxBytes, false, st.logger)
	loaded, err := loader.Load(args[0])
	if err != nil {
		return err
	}

	res, err := st.app.Processor.Analyze(cmd.Context(), loaded.Document)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", loaded.Path, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if analyzePretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}
