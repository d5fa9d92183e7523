package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harshal31718/enma-quant-trading-platform/backtest"
	"github.com/harshal31718/enma-quant-trading-platform/config"
	"github.com/harshal31718/enma-quant-trading-platform/journal"
	"github.com/harshal31718/enma-quant-trading-platform/market"
	"github.com/harshal31718/enma-quant-trading-platform/report"
	sig "github.com/harshal31718/enma-quant-trading-platform/signal"
	"github.com/harshal31718/enma-quant-trading-platform/util"
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Multi-asset portfolio backtester with hierarchical risk budgets",
	Long: `Backtest runs a multi-asset portfolio simulation over historical candle data.

It provides:
  - Hierarchical risk budgets (portfolio, bucket, and per-symbol caps)
  - Slippage and fee-aware trade execution
  - A drawdown circuit breaker with cooldown liquidation
  - CSV and SQLite trade journals
  - Equity charts and a metrics report`,
}

var (
	runConfigPath string
	runLogLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	RunE:  runRun,
}

var initConfigPath string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Default().SaveToFile(initConfigPath); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", initConfigPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	runCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initConfigPath, "config", "f", "config.yaml", "path to write the default config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := util.NewLogger(runLogLevel)

	series := make(map[string]market.Series, len(cfg.Symbols))
	for _, sc := range cfg.Symbols {
		if sc.File == "" {
			return fmt.Errorf("symbol %s has no data file configured", sc.Symbol)
		}
		s, err := market.LoadCSV(sc.File, sc.Symbol)
		if err != nil {
			return fmt.Errorf("load %s: %w", sc.Symbol, err)
		}
		series[sc.Symbol] = s
		log.Info().Str("symbol", sc.Symbol).Int("candles", s.Len()).Msg("loaded series")
	}

	var provider sig.Provider
	switch cfg.Signals.Mode {
	case "http":
		provider = sig.NewHTTP(cfg.Signals.URL)
	default:
		provider = sig.NewRandom(cfg.Signals.Seed)
	}

	var jrnl journal.Journal
	switch cfg.Journal.Type {
	case "csv":
		jrnl, err = journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		jrnl, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	if jrnl != nil {
		defer jrnl.Close()
	}

	engine, err := backtest.NewEngine(cfg.Backtest(), backtest.Deps{
		Series:  series,
		Signals: provider,
		Journal: jrnl,
		Logger:  &log,
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	printSummary(result)

	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		metricsPath := filepath.Join(cfg.Output.Dir, "metrics.json")
		if err := report.WriteMetricsJSON(metricsPath, result); err != nil {
			return err
		}
		chartPath := filepath.Join(cfg.Output.Dir, "equity.html")
		if err := report.WriteEquityChart(chartPath, result); err != nil {
			return err
		}
		fmt.Printf("\nReports written to %s\n", cfg.Output.Dir)
	}

	return nil
}

func printSummary(r backtest.Result) {
	s := r.Summary
	fmt.Println("=== Backtest Summary ===")
	fmt.Printf("  Run ID:          %s\n", r.RunID)
	fmt.Printf("  Initial capital: $%.2f\n", s.InitialCapital)
	fmt.Printf("  Final equity:    $%.2f\n", s.FinalEquity)
	fmt.Printf("  Return:          %.2f%%\n", s.Metrics.ReturnPct)
	fmt.Printf("  Max drawdown:    %.2f%%\n", s.MaxDrawdownPct)
	fmt.Printf("  Sharpe:          %.3f\n", s.Metrics.Sharpe)
	fmt.Printf("  CAGR:            %.2f%%\n", s.Metrics.CAGRPct)
	fmt.Printf("  Trades:          %d\n", s.TotalTrades)
	fmt.Printf("  Final state:     %s\n", s.FinalState)
}
