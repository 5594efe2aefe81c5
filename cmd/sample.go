package main

import (
	"ChartService/internal/mock"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSampleCmd() *cobra.Command {
	var (
		outDir  string
		candles int
		trades  int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write sample_ohlcv.csv and sample_trades.csv for trying the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if candles <= 0 {
				return fmt.Errorf("--candles must be positive")
			}
			if trades < 0 {
				return fmt.Errorf("--trades cannot be negative")
			}

			genCfg := mock.DefaultGeneratorConfig()
			genCfg.Candles = candles
			genCfg.Trades = trades
			if seed != 0 {
				genCfg.Seed = seed
			}

			gen := mock.NewSampleGeneratorWithConfig(genCfg)
			candleRows := gen.GenerateCandles()
			tradeRows := gen.GenerateTrades(candleRows)

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			ohlcvPath := filepath.Join(outDir, "sample_ohlcv.csv")
			f, err := os.Create(ohlcvPath)
			if err != nil {
				return err
			}
			if err := mock.WriteCandlesCSV(f, candleRows); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", ohlcvPath, err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			tradesPath := filepath.Join(outDir, "sample_trades.csv")
			f, err = os.Create(tradesPath)
			if err != nil {
				return err
			}
			if err := mock.WriteTradesCSV(f, tradeRows); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", tradesPath, err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			log.Info().
				Str("ohlcv", ohlcvPath).Int("candles", len(candleRows)).
				Str("trades", tradesPath).Int("trade_count", len(tradeRows)).
				Msg("sample data created")
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for the generated files")
	cmd.Flags().IntVar(&candles, "candles", 400, "number of one-minute candles")
	cmd.Flags().IntVar(&trades, "trades", 30, "number of trades")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")

	return cmd
}
