package main

import (
	"ChartService/api"
	"ChartService/internal/config"
	"ChartService/internal/model"
	"ChartService/internal/service"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newProcessCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		ohlcvPath  string
		tradesPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the CSV pipeline on local files and print the JSON payload",
		Long: "With both --ohlcv and --trades the output matches POST /api/process-chart-data; " +
			"with only one of them it matches the matching single upload endpoint.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ohlcvPath == "" && tradesPath == "" {
				return fmt.Errorf("provide --ohlcv, --trades or both")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc := service.NewChartService(cfg.MaxUploadBytes)

			var payload any
			switch {
			case ohlcvPath != "" && tradesPath != "":
				ohlcv, closeOHLCV, err := openUpload(ohlcvPath)
				if err != nil {
					return err
				}
				defer closeOHLCV()
				trades, closeTrades, err := openUpload(tradesPath)
				if err != nil {
					return err
				}
				defer closeTrades()

				result, err := svc.ProcessChartData(cmd.Context(), ohlcv, trades)
				if err != nil {
					return err
				}
				payload = api.ChartDataResponse{Success: true, ChartPayload: *result}

			default:
				kind, path := model.KindOHLCV, ohlcvPath
				if path == "" {
					kind, path = model.KindTrades, tradesPath
				}
				upload, closeFile, err := openUpload(path)
				if err != nil {
					return err
				}
				defer closeFile()

				rows, err := svc.ProcessUpload(cmd.Context(), kind, upload)
				if err != nil {
					return err
				}
				payload = api.UploadResponse{Success: true, Data: rows, Count: len(rows)}
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(payload); err != nil {
				return fmt.Errorf("encode payload: %w", err)
			}

			if outPath != "" {
				log.Info().Str("out", outPath).Msg("payload written")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ohlcvPath, "ohlcv", "", "OHLCV CSV file")
	cmd.Flags().StringVar(&tradesPath, "trades", "", "trades CSV file")
	cmd.Flags().StringVar(&outPath, "out", "", "write JSON here instead of stdout")

	return cmd
}

func openUpload(path string) (service.Upload, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return service.Upload{}, nil, err
	}
	return service.Upload{Filename: filepath.Base(path), Body: f}, func() { _ = f.Close() }, nil
}
