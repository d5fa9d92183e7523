package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harshal31718/enma-quant-trading-platform/signalservice"
	"github.com/harshal31718/enma-quant-trading-platform/util"
)

var (
	addr     string
	seed     int64
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "signalservice",
	Short: "HTTP service handing out mock trade signals",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := util.NewLogger(logLevel)
		srv := signalservice.NewServer(seed, log)
		log.Info().Str("addr", addr).Int64("seed", seed).Msg("signalservice listening")
		return srv.Router().Run(addr)
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", ":8002", "listen address")
	rootCmd.Flags().Int64Var(&seed, "seed", 42, "random seed for signal generation")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
