package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jinno0sec/copilot-instruction-eval/internal/agent"
	"github.com/jinno0sec/copilot-instruction-eval/internal/eval"
)

var (
	runInstructions string
	runResultsDir   string
	runTimeout      float64
	runMaxRetries   int
	runRetryDelay   float64
	runFlushEvery   int
	runVerbose      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the evaluation batch against both agents",
	Long: `Run every instruction against agent v1 and agent v2, score the
responses, and write evaluation_results.json and evaluation_results.csv
to the results directory.

Endpoints and API keys come from the environment or the config file:
  AGENT_V1_ENDPOINT, AGENT_V1_API_KEY
  AGENT_V2_ENDPOINT, AGENT_V2_API_KEY, AGENT_V2_MODEL (optional)`,
	RunE: runEvaluation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runInstructions, "instructions", "", "instructions file (JSON or YAML)")
	runCmd.Flags().StringVar(&runResultsDir, "results-dir", "", "directory for persisted results")
	runCmd.Flags().Float64Var(&runTimeout, "timeout", 0, "per-attempt timeout in seconds")
	runCmd.Flags().IntVar(&runMaxRetries, "max-retries", -1, "additional attempts after a transient failure")
	runCmd.Flags().Float64Var(&runRetryDelay, "retry-delay", -1, "fixed delay between attempts in seconds")
	runCmd.Flags().IntVar(&runFlushEvery, "flush-every", 0, "instructions between report flushes")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print response diffs against expected output")
}

func runEvaluation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveRunConfig()
	if err != nil {
		return err
	}

	instructions, err := eval.LoadInstructions(cfg.InstructionsFile)
	if err != nil {
		return fmt.Errorf("failed to load instructions: %w", err)
	}
	fmt.Printf("Loaded %d instructions from %s\n", len(instructions), cfg.InstructionsFile)

	v1, err := agent.NewClient(viper.GetString("agent_v1_kind"), agent.Config{
		Endpoint:   cfg.AgentV1Endpoint,
		APIKey:     cfg.APIKeyV1,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent v1 client: %w", err)
	}

	v2, err := agent.NewClient(viper.GetString("agent_v2_kind"), agent.Config{
		Endpoint:   cfg.AgentV2Endpoint,
		APIKey:     cfg.APIKeyV2,
		Model:      cfg.AgentV2Model,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent v2 client: %w", err)
	}

	store, err := eval.NewStore(cfg)
	if err != nil {
		return err
	}

	runner := eval.NewRunner(v1, v2,
		eval.WithStore(store),
		eval.WithFlushEvery(cfg.FlushEvery),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := runner.RunAll(ctx, instructions); err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if err := store.Finalize(); err != nil {
		return fmt.Errorf("failed to persist results: %w", err)
	}

	reporter := eval.NewReporter(runVerbose)
	reporter.Report(store.Run(), instructions)

	fmt.Printf("\nResults saved to: %s\n", cfg.ResultsDir)
	return nil
}

// resolveRunConfig merges flags, config file, and environment into the
// run configuration, applying the standard defaults.
func resolveRunConfig() (eval.RunConfig, error) {
	viper.SetDefault("instructions_file", "instructions.json")
	viper.SetDefault("results_dir", "results")
	viper.SetDefault("timeout", 60.0)
	viper.SetDefault("max_retries", 3)
	viper.SetDefault("retry_delay", 5.0)
	viper.SetDefault("flush_every", 1)
	viper.SetDefault("agent_v1_kind", "generate")
	viper.SetDefault("agent_v2_kind", "chat")

	cfg := eval.RunConfig{
		AgentV1Endpoint:  viper.GetString("agent_v1_endpoint"),
		AgentV2Endpoint:  viper.GetString("agent_v2_endpoint"),
		AgentV2Model:     viper.GetString("agent_v2_model"),
		APIKeyV1:         viper.GetString("agent_v1_api_key"),
		APIKeyV2:         viper.GetString("agent_v2_api_key"),
		InstructionsFile: viper.GetString("instructions_file"),
		ResultsDir:       viper.GetString("results_dir"),
		Timeout:          secondsToDuration(viper.GetFloat64("timeout")),
		MaxRetries:       viper.GetInt("max_retries"),
		RetryDelay:       secondsToDuration(viper.GetFloat64("retry_delay")),
		FlushEvery:       viper.GetInt("flush_every"),
	}

	if runInstructions != "" {
		cfg.InstructionsFile = runInstructions
	}
	if runResultsDir != "" {
		cfg.ResultsDir = runResultsDir
	}
	if runTimeout > 0 {
		cfg.Timeout = secondsToDuration(runTimeout)
	}
	if runMaxRetries >= 0 {
		cfg.MaxRetries = runMaxRetries
	}
	if runRetryDelay >= 0 {
		cfg.RetryDelay = secondsToDuration(runRetryDelay)
	}
	if runFlushEvery > 0 {
		cfg.FlushEvery = runFlushEvery
	}

	required := map[string]string{
		"AGENT_V1_ENDPOINT": cfg.AgentV1Endpoint,
		"AGENT_V2_ENDPOINT": cfg.AgentV2Endpoint,
		"AGENT_V1_API_KEY":  cfg.APIKeyV1,
		"AGENT_V2_API_KEY":  cfg.APIKeyV2,
	}
	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required configuration variables: %s\nset these in your environment or config file", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
