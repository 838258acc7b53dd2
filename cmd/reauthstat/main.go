// Package main provides the CLI entrypoint for reauthstat.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hab-project/reauthstat/internal/compare"
	"github.com/hab-project/reauthstat/internal/config"
	"github.com/hab-project/reauthstat/internal/model"
	"github.com/hab-project/reauthstat/internal/report"
	"github.com/hab-project/reauthstat/internal/resultsui"
	"github.com/hab-project/reauthstat/internal/tsv"
)

const (
	defaultJobs        = 1
	defaultPEstimation = string(model.PFromGroupMean)
)

var (
	analyzeBatch       string
	analyzeStrategy    string
	analyzeJobs        int
	analyzeOutDir      string
	analyzePEstimation string
	analyzeBrowse      bool

	summarizeStrategy string
	summarizeOut      string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reauthstat [trials.tsv...]",
		Short:         "Re-authentication benchmark analysis",
		Long:          "Aggregates per-trial re-authentication tables and compares the empirical distribution against the geometric closed-form approximation.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runAnalyzeCmd,
	}

	rootCmd.Flags().StringVar(&analyzeBatch, "batch", "", "TOML batch file of configurations")
	rootCmd.Flags().StringVar(&analyzeStrategy, "strategy", "", "strategy label for positional tables")
	rootCmd.Flags().IntVar(&analyzeJobs, "jobs", defaultJobs, "concurrent configurations (0 = sequential)")
	rootCmd.Flags().StringVar(&analyzeOutDir, "out-dir", "", "write per-configuration summary TSVs here")
	rootCmd.Flags().StringVar(&analyzePEstimation, "p-estimation", defaultPEstimation, "success-probability source (group-mean or base-rate)")
	rootCmd.Flags().BoolVar(&analyzeBrowse, "browse", false, "open the interactive results browser")

	rootCmd.AddCommand(newSummarizeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "jobs", &analyzeJobs, fileCfg.Analyze.Jobs)
	applyStringConfig(cmd, "p-estimation", &analyzePEstimation, fileCfg.Analyze.PEstimation)
	applyStringConfig(cmd, "out-dir", &analyzeOutDir, fileCfg.Analyze.OutDir)

	specs, batchJobs, err := resolveSpecs(args)
	if err != nil {
		return err
	}
	jobs := analyzeJobs
	if !cmd.Flags().Changed("jobs") && batchJobs > 0 {
		jobs = batchJobs
	}
	if jobs < 0 {
		return fmt.Errorf("--jobs must be >= 0")
	}

	results := compare.Run(context.Background(), specs, compare.Options{Jobs: jobs})

	if analyzeOutDir != "" {
		if err := writeSummaryFiles(analyzeOutDir, results); err != nil {
			return err
		}
	}

	if analyzeBrowse {
		ui := resultsui.NewModel(results)
		program := tea.NewProgram(ui, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run results browser: %w", err)
		}
		return nil
	}

	if err := report.Render(cmd.OutOrStdout(), results, report.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return batchError(results)
}

func resolveSpecs(args []string) ([]model.ConfigSpec, int, error) {
	if analyzeBatch != "" {
		if len(args) > 0 {
			return nil, 0, fmt.Errorf("--batch and positional tables are mutually exclusive")
		}
		return compare.LoadBatch(analyzeBatch)
	}
	if len(args) == 0 {
		return nil, 0, fmt.Errorf("provide a --batch file or at least one trials table")
	}
	estimation := model.PEstimation(analyzePEstimation)
	if estimation != model.PFromGroupMean && estimation != model.PFromBaseRate {
		return nil, 0, fmt.Errorf("unknown p-estimation %q", analyzePEstimation)
	}
	if estimation == model.PFromBaseRate {
		return nil, 0, fmt.Errorf("p-estimation %q requires a batch file with base-rates tables", model.PFromBaseRate)
	}
	specs := make([]model.ConfigSpec, 0, len(args))
	for _, path := range args {
		specs = append(specs, model.ConfigSpec{
			Label:       filepath.Base(path),
			Strategy:    model.ParseStrategy(analyzeStrategy),
			TrialsPath:  path,
			PEstimation: estimation,
		})
	}
	return specs, 0, nil
}

// batchError surfaces a non-zero exit when every configuration failed; a
// partial batch still reports success so one bad file never blanks the rest.
func batchError(results []model.ComparisonResult) error {
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	if failed > 0 && failed == len(results) {
		return fmt.Errorf("all %d configurations failed", failed)
	}
	return nil
}

func writeSummaryFiles(dir string, results []model.ComparisonResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for i, result := range results {
		if result.Err != nil {
			continue
		}
		path := filepath.Join(dir, summaryFileName(result.Label, i))
		if err := writeSummaryFile(path, result); err != nil {
			return err
		}
		logErrf("Wrote %s\n", path)
	}
	return nil
}

func writeSummaryFile(path string, result model.ComparisonResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := tsv.WriteSummaries(file, result.Empirical, result.Approx); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func summaryFileName(label string, idx int) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, label)
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		cleaned = fmt.Sprintf("config_%d", idx+1)
	}
	return cleaned + "__summary.tsv"
}

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <trials.tsv>",
		Short: "Summarize a single trials table",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummarizeCmd,
	}
	cmd.Flags().StringVar(&summarizeStrategy, "strategy", "", "strategy label override")
	cmd.Flags().StringVar(&summarizeOut, "out", "", "write the summary TSV to this path")
	return cmd
}

func runSummarizeCmd(cmd *cobra.Command, args []string) error {
	spec := model.ConfigSpec{
		Label:       filepath.Base(args[0]),
		Strategy:    model.ParseStrategy(summarizeStrategy),
		TrialsPath:  args[0],
		PEstimation: model.PFromGroupMean,
	}
	results := compare.Run(context.Background(), []model.ConfigSpec{spec}, compare.Options{})
	result := results[0]
	if result.Err != nil {
		return result.Err
	}
	if summarizeOut != "" {
		if err := writeSummaryFile(summarizeOut, result); err != nil {
			return err
		}
		logErrf("Wrote %s\n", summarizeOut)
		return nil
	}
	return report.Render(cmd.OutOrStdout(), results, report.TerminalWidth())
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# reauthstat configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# jobs = %d                    # Concurrent configurations (0 = sequential)
# p-estimation = %q  # Success-probability source (group-mean or base-rate)
# out-dir = "summaries"       # Write per-configuration summary TSVs here
`,
		defaultJobs,
		defaultPEstimation,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
