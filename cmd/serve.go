package main

import (
	"ChartService/api"
	"ChartService/internal/config"
	"ChartService/internal/service"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Port = port
			}

			// Cancel on SIGINT/SIGTERM so the server drains in-flight uploads
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			chartService := service.NewChartService(cfg.MaxUploadBytes)
			apiHandler := api.NewAPIHandler(chartService, cfg, &log.Logger)

			log.Info().
				Int("port", cfg.Port).
				Str("environment", cfg.Environment).
				Strs("endpoints", []string{
					"POST /api/upload-ohlcv",
					"POST /api/upload-trades",
					"POST /api/process-chart-data",
					"GET /api/health",
				}).
				Msg("chart data service starting")

			if err := apiHandler.StartServer(ctx); err != nil {
				return err
			}
			log.Info().Msg("chart data service stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")

	return cmd
}
