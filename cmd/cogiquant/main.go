// cogiquant: quantitative indicators and market data for US equities.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cogiquant/cogiquant/internal/config"
	"github.com/cogiquant/cogiquant/internal/datasource"
	"github.com/cogiquant/cogiquant/internal/logger"
	"github.com/cogiquant/cogiquant/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Set up by the root command before any subcommand runs.
var (
	cfg *config.Config
	log zerolog.Logger
	agg *datasource.Aggregator
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cogiquant",
	Short: "Technical indicators and market data for US equities",
	Long: `cogiquant fetches price history, quotes, company profiles and headlines
from Yahoo Finance and computes moving averages, RSI, MACD, normalisation
and sample statistics over them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log, err = logger.New(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}

		agg = datasource.NewAggregatorFromConfig(cfg, logger.Component(log, "datasource"))
		log.Debug().Str("base_url", cfg.Provider.BaseURL).Msg("config loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json", false, "print results as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil // no config needed
	},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "cogiquant %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show market status and configured credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		now := utils.NowET()
		fmt.Fprintf(out, "Market:    %s (%s ET)\n", utils.MarketStatus(now), now.Format("Mon 2006-01-02 15:04"))
		fmt.Fprintf(out, "Provider:  %s\n", cfg.Provider.BaseURL)
		fmt.Fprintf(out, "Cache TTL: %s\n", cfg.Provider.CacheDuration())
		fmt.Fprintln(out, "Credentials:")
		for _, k := range config.CheckCredentials(cfg) {
			state := "not set"
			if k.IsSet {
				state = fmt.Sprintf("%s (%s)", k.Masked, k.Source)
			}
			fmt.Fprintf(out, "  %-14s %s\n", k.Name+":", state)
		}
		return nil
	},
}

// --- Shared helpers ---

// addRangeFlags registers --period/--start/--end/--interval on cmd.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("period", "", "history period (1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max)")
	cmd.Flags().String("start", "", "start date YYYY-MM-DD (requires --end)")
	cmd.Flags().String("end", "", "end date YYYY-MM-DD (requires --start)")
	cmd.Flags().String("interval", "", "bar interval (1m ... 1d 1wk 1mo)")
}

// rangeFromFlags builds a history range, falling back to the configured
// period and interval.
func rangeFromFlags(cmd *cobra.Command) (datasource.Range, error) {
	period, _ := cmd.Flags().GetString("period")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	interval, _ := cmd.Flags().GetString("interval")
	if interval == "" {
		interval = cfg.Analysis.Interval
	}

	if start == "" && end == "" {
		if period == "" {
			period = cfg.Analysis.Period
		}
		return datasource.PeriodRange(period, interval).Normalize()
	}

	var r datasource.Range
	var err error
	if start != "" {
		if r.Start, err = utils.ParseDate(start); err != nil {
			return r, err
		}
	}
	if end != "" {
		if r.End, err = utils.ParseDate(end); err != nil {
			return r, err
		}
	}
	r.Period = period
	r.Interval = interval
	return r.Normalize()
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// row joins cells with tabs and terminates the line.
func row(cells ...string) string {
	return strings.Join(cells, "\t") + "\t\n"
}

// barTime formats a bar timestamp for its interval.
func barTime(t time.Time, interval string) string {
	switch interval {
	case "1d", "5d", "1wk", "1mo", "3mo":
		return utils.FormatDate(t)
	}
	return t.In(utils.ET).Format("2006-01-02 15:04")
}

func num(v float64) string { return utils.FormatFloat(v, 2) }
