package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"quantdesk/internal/analytics"
	"quantdesk/internal/config"
	"quantdesk/internal/engine"
	"quantdesk/internal/journal"
	"quantdesk/internal/market"
	"quantdesk/internal/metrics"
	"quantdesk/internal/util"
)

var cfgPath string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "quantdesk",
		Short: "Signal-driven paper trading engine with portfolio analytics",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "internal/config/config.yaml", "path to YAML config")
	root.AddCommand(runCmd(), analyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	return cfg
}

func runCmd() *cobra.Command {
	var autoTrade bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the engine loops until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if autoTrade {
				cfg.Engine.AutoTrading = true
			}
			log := util.NewLogger(cfg.App.LogLevel)

			srv := metrics.Serve(cfg.App.MetricsAddr)
			log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

			ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			opts := []engine.Option{}
			if cfg.Portfolio.JournalPath != "" {
				rec, err := journal.NewJSONL(cfg.Portfolio.JournalPath)
				if err != nil {
					return fmt.Errorf("open journal: %w", err)
				}
				defer rec.Close()
				opts = append(opts, engine.WithRecorder(rec))
			}

			eng := engine.New(cfg, log, opts...)
			eng.Start(ctx)
			defer eng.Stop()

			if cfg.Market.Provider == "stream" {
				stream := market.NewTradeStream(cfg.Market.StreamURL, cfg.Market.Symbols, log)
				snaps := make(chan market.Snapshot, 256)
				go func() {
					if err := stream.Run(ctx, snaps); err != nil {
						log.Error().Err(err).Msg("trade stream stopped")
						cancel()
					}
				}()
				go func() {
					for snap := range snaps {
						_ = eng.Market().Update(snap)
					}
				}()
			}

			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 3*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
			log.Info().Msg("shutting down")
			return nil
		},
	}
	cmd.Flags().BoolVar(&autoTrade, "auto-trade", false, "enable autonomous execution")
	return cmd
}

// valuePoint mirrors the {date, value} rows accepted by analyze.
type valuePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func analyzeCmd() *cobra.Command {
	var portfolioPath, benchmarkPath, holdingsPath string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute portfolio analytics over a value history file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			rets, err := loadReturns(portfolioPath)
			if err != nil {
				return err
			}

			out := map[string]any{
				"totalReturn":       analytics.TotalReturn(rets),
				"volatility":        analytics.Volatility(rets),
				"sharpeRatio":       analytics.Sharpe(rets, cfg.Analytics.RiskFreeRate),
				"sortinoRatio":      analytics.Sortino(rets, cfg.Analytics.RiskFreeRate),
				"maxDrawdown":       analytics.MaxDrawdown(rets),
				"var95":             analytics.VaR95(rets),
				"expectedShortfall": analytics.ExpectedShortfall(rets),
			}

			if benchmarkPath != "" {
				bench, err := loadReturns(benchmarkPath)
				if err != nil {
					return err
				}
				out["beta"] = analytics.Beta(rets, bench)
				out["alpha"] = analytics.Alpha(rets, bench, cfg.Analytics.RiskFreeRate)
				out["informationRatio"] = analytics.InformationRatio(rets, bench)
			}

			if holdingsPath != "" {
				var holdings []analytics.Holding
				if err := readJSON(holdingsPath, &holdings); err != nil {
					return err
				}
				out["taxReport"] = analytics.HarvestOpportunities(
					holdings, cfg.Analytics.HarvestThreshold, cfg.Analytics.TaxRate)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&portfolioPath, "portfolio", "", "JSON file of {date,value} points (required)")
	cmd.Flags().StringVar(&benchmarkPath, "benchmark", "", "JSON file of benchmark {date,value} points")
	cmd.Flags().StringVar(&holdingsPath, "holdings", "", "JSON file of taxable holdings")
	_ = cmd.MarkFlagRequired("portfolio")
	return cmd
}

func loadReturns(path string) ([]float64, error) {
	var points []valuePoint
	if err := readJSON(path, &points); err != nil {
		return nil, err
	}
	rets := make([]float64, 0, len(points))
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value
		if prev == 0 {
			rets = append(rets, 0)
			continue
		}
		rets = append(rets, (points[i].Value-prev)/prev)
	}
	return rets, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
