// Package main implements the analyzer CLI entry point: run, watch and
// rank subcommands over the detect→correlate→metrics pipeline. Grounded
// on the teacher's src/cli/cmd/blackpoint root command pattern (persistent
// flags, cobra.Command tree, zap-backed logging wired in a PersistentPreRun
// rather than the teacher's package-level cobra.OnInitialize).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sentinelgrid/analyzer/internal/adminhttp"
	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/internal/pipeline"
	"github.com/sentinelgrid/analyzer/internal/policy"
	"github.com/sentinelgrid/analyzer/internal/telemetry"
	"github.com/sentinelgrid/analyzer/pkg/common"
)

var (
	flagConfigDir   string
	flagLogLevel    string
	flagLogPath     string
	flagInput       string
	flagOutput      string
	flagPolicies    string
	flagHorizonDays float64
	flagPollSeconds int
	flagAdminAddr   string
	flagMaxWorkers  int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "analyzer",
		Short:         "Smart-energy cyber-resilience analyzer",
		Long:          "Detects threats, correlates incidents and computes resilience metrics over a stream of simulated smart-energy events, under one or more competing security policies.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logCfg := common.NewLogConfig()
			if flagLogLevel != "" {
				logCfg.Level = flagLogLevel
			}
			if flagLogPath != "" {
				logCfg.OutputPath = flagLogPath
			}
			return common.InitLogger(logCfg)
		},
	}

	root.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "config", "directory containing rules.yaml and policies.yaml")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogPath, "log-path", "", "override log file path")

	root.AddCommand(newRunCmd(), newWatchCmd(), newRankCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the analyzer once over a batch input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch()
		},
	}
	cmd.Flags().StringVar(&flagInput, "input", "", "path to the event input file (CSV or JSONL)")
	cmd.Flags().StringVar(&flagOutput, "output", "out", "output directory for results.csv/incidents.csv/reports")
	cmd.Flags().StringVar(&flagPolicies, "policies", "all", "comma-separated policy names, or \"all\"")
	cmd.Flags().Float64Var(&flagHorizonDays, "horizon-days", 0, "horizon in days (0 = derive from event span)")
	cmd.Flags().IntVar(&flagMaxWorkers, "max-workers", 4, "maximum number of policies evaluated concurrently")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail an append-only event file and re-run the analysis on every tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch()
		},
	}
	cmd.Flags().StringVar(&flagInput, "input", "", "path to the append-only event input file")
	cmd.Flags().StringVar(&flagOutput, "output", "out", "output directory for results.csv/incidents.csv")
	cmd.Flags().StringVar(&flagPolicies, "policies", "all", "comma-separated policy names, or \"all\"")
	cmd.Flags().Float64Var(&flagHorizonDays, "horizon-days", 0, "horizon in days (0 = derive from event span)")
	cmd.Flags().IntVar(&flagPollSeconds, "poll-seconds", 5, "poll interval in seconds")
	cmd.Flags().StringVar(&flagAdminAddr, "admin-addr", ":9090", "address for the /healthz and /metrics admin server")
	cmd.Flags().IntVar(&flagMaxWorkers, "max-workers", 4, "maximum number of policies evaluated concurrently")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank policies by declared control effectiveness without running the detector",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank()
		},
	}
	cmd.Flags().StringVar(&flagPolicies, "policies", "all", "comma-separated policy names, or \"all\"")
	return cmd
}

func runBatch() error {
	defer common.Sync()

	rulesCfg, policiesCfg, err := loadConfigs()
	if err != nil {
		return err
	}

	events, err := pipeline.LoadEvents(flagInput)
	if err != nil {
		return err
	}
	common.Info("events loaded", zap.Int("event_count", len(events)))

	names := pipeline.ResolvePolicyNames(flagPolicies, policiesCfg)
	horizon := pipeline.Horizon(events, flagHorizonDays)
	metrics := telemetry.New()

	results, err := pipeline.RunAll(events, names, rulesCfg, policiesCfg, horizon, metrics, flagMaxWorkers)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(flagOutput, 0o755); err != nil {
		return common.WrapError(err, "failed to create output directory", map[string]interface{}{"dir": flagOutput})
	}

	allMetrics := pipeline.AllMetrics(results)
	allIncidents := pipeline.AllIncidents(results)
	ranked := policy.Rank(policiesCfg, names)

	if err := pipeline.WriteResultsCSV(filepath.Join(flagOutput, "results.csv"), allMetrics); err != nil {
		return err
	}
	if err := pipeline.WriteIncidentsCSV(filepath.Join(flagOutput, "incidents.csv"), allIncidents); err != nil {
		return err
	}
	if err := pipeline.WriteTextReport(filepath.Join(flagOutput, "report.txt"), allMetrics, ranked, policiesCfg); err != nil {
		return err
	}
	if err := pipeline.WriteHTMLReport(filepath.Join(flagOutput, "report.html"), allMetrics, ranked, policiesCfg); err != nil {
		return err
	}

	common.Info("run complete", zap.Int("policies", len(results)), zap.Int("incidents", len(allIncidents)))
	return nil
}

func runWatch() error {
	defer common.Sync()

	rulesCfg, policiesCfg, err := loadConfigs()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(flagOutput, 0o755); err != nil {
		return common.WrapError(err, "failed to create output directory", map[string]interface{}{"dir": flagOutput})
	}

	names := pipeline.ResolvePolicyNames(flagPolicies, policiesCfg)
	metrics := telemetry.New()

	admin := adminhttp.New(flagAdminAddr, metrics)
	admin.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		common.Info("shutdown signal received")
		cancel()
	}()

	err = pipeline.Watch(ctx, pipeline.WatchOptions{
		InputPath:    flagInput,
		OutputDir:    flagOutput,
		Policies:     names,
		RulesCfg:     rulesCfg,
		PoliciesCfg:  policiesCfg,
		HorizonDays:  flagHorizonDays,
		PollInterval: time.Duration(flagPollSeconds) * time.Second,
		MaxWorkers:   flagMaxWorkers,
		Metrics:      metrics,
	})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = admin.Shutdown(shutdownCtx)

	return err
}

func runRank() error {
	defer common.Sync()

	_, policiesCfg, err := loadConfigs()
	if err != nil {
		return err
	}

	names := pipeline.ResolvePolicyNames(flagPolicies, policiesCfg)
	for _, r := range policy.Rank(policiesCfg, names) {
		fmt.Printf("%-20s effectiveness=%.3f avg_mttd_mult=%.3f avg_mttr_mult=%.3f controls=%v\n",
			r.Policy, r.Effectiveness, r.AvgMTTDMult, r.AvgMTTRMult, r.EnabledControls)
	}
	return nil
}

func loadConfigs() (config.RulesConfig, config.PoliciesConfig, error) {
	rulesCfg, err := config.LoadRules(flagConfigDir)
	if err != nil {
		return config.RulesConfig{}, config.PoliciesConfig{}, err
	}
	policiesCfg, err := config.LoadPolicies(flagConfigDir)
	if err != nil {
		return config.RulesConfig{}, config.PoliciesConfig{}, err
	}
	return rulesCfg, policiesCfg, nil
}
