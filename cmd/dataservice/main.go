package main

import (
	"fmt"
	"os"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/spf13/cobra"

	"github.com/harshal31718/enma-quant-trading-platform/dataservice"
	"github.com/harshal31718/enma-quant-trading-platform/util"
)

var (
	addr     string
	dataDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "dataservice",
	Short: "HTTP service exposing historical candles from Binance futures",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := util.NewLogger(logLevel)

		if dataDir != "" {
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
		}

		client := futures.NewClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET"))
		fetcher := dataservice.NewKlinesFetcher(client)
		srv := dataservice.NewServer(fetcher, dataDir, log)

		log.Info().Str("addr", addr).Msg("dataservice listening")
		return srv.Router().Run(addr)
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", ":8001", "listen address")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "directory for cached candle CSVs")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
