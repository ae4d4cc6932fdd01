package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"iata-code-fetcher/lib/codes"
	"iata-code-fetcher/lib/configutil"
	"iata-code-fetcher/lib/restyutil"
	"iata-code-fetcher/lib/scrapers/iata"
	"iata-code-fetcher/lib/serviceutil"
	"iata-code-fetcher/lib/telemetry"
	"iata-code-fetcher/services/crawler"

	"github.com/spf13/cobra"
)

type fetchConfig struct {
	SearchUrl        string `json:"search_url"`
	RequestDelayMs   int    `json:"request_delay_ms"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	RetryCount       int    `json:"retry_count"`
	RetryWaitSeconds int    `json:"retry_wait_seconds"`
}

const (
	carrierFile = "carrier_data_full.jsonl"
	airportFile = "airport_data_full.jsonl"
)

var fetchKind *string
var fetchOut *string

func init() {
	fetchKind = fetchCmd.Flags().String("kind", "all", "Code class to crawl: carrier, airport or all.")
	fetchOut = fetchCmd.Flags().String("out", ".", "Directory to write the JSONL output files to.")
	rootCmd.AddCommand(fetchCmd)
}

func createClient(cfg fetchConfig) *iata.Client {
	opts := iata.ClientOptions{
		SearchUrl:   cfg.SearchUrl,
		MinInterval: time.Duration(cfg.RequestDelayMs) * time.Millisecond,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		RetryCount:  cfg.RetryCount,
		RetryWait:   time.Duration(cfg.RetryWaitSeconds) * time.Second,
	}
	if *verbose {
		opts.InstrumentOutput = restyutil.NewFilesystemOutput(".dev/resty/iata")
	}

	client, err := iata.NewClient(opts)
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}
	return client
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--kind carrier|airport|all] [--out <dir>]",
	Short: "Crawls every code of the selected class(es) and appends matches to JSONL files.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[fetchConfig]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read config", err)
		}

		var kinds []codes.Kind
		switch *fetchKind {
		case "all":
			kinds = []codes.Kind{codes.Carrier, codes.Airport}
		default:
			kind, ok := codes.ParseKind(*fetchKind)
			if !ok {
				cmd.PrintErrf("invalid kind %q, expected carrier, airport or all\n", *fetchKind)
				os.Exit(1)
			}
			kinds = []codes.Kind{kind}
		}

		ctx := cmd.Context()
		telemetry.InstrumentPerfStats(ctx)
		client := createClient(cfg)

		for _, kind := range kinds {
			out := filepath.Join(*fetchOut, carrierFile)
			if kind == codes.Airport {
				out = filepath.Join(*fetchOut, airportFile)
			}

			t1 := time.Now()
			stats, err := crawler.Run(ctx, client, kind, out)
			if err != nil {
				serviceutil.Fatal("crawl failed", err)
			}
			slog.Info("crawl time",
				"kind", kind.String(),
				"seconds", time.Since(t1).Seconds(),
				"matched", stats.Matched,
			)
		}
	},
}
