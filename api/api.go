package api

import (
	"ChartService/internal/config"
	"ChartService/internal/model"
	"ChartService/internal/service"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// This file serves as the main entry point for the API package. It defines the APIHandler struct and its dependencies.
// The package structure is as follows:
// - api.go: Main API handler, dependencies and routing (this file)
// - handler.go: HTTP request handlers
// - middleware.go: Middleware functions
// - validator.go: Upload validation

// Constants
const (
	DefaultTimeout      = 30 * time.Second
	ServiceVersion      = "1.0.0"
	ServiceName         = "chart-data-service"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"

	FormFieldFile   = "file"
	FormFieldOHLCV  = "ohlcv_file"
	FormFieldTrades = "trades_file"

	// room for multipart boundaries and headers around the files
	multipartOverhead = 1 << 20
)

// ChartService is an interface defining methods to turn uploads into chart data
type ChartService interface {
	ProcessUpload(ctx context.Context, kind model.RecordKind, upload service.Upload) ([]model.Row, error)
	ProcessChartData(ctx context.Context, ohlcv, trades service.Upload) (*model.ChartPayload, error)
	MaxUploadBytes() int64
}

// UploadResponse is returned by the single-file endpoints
type UploadResponse struct {
	Success bool        `json:"success"`
	Data    []model.Row `json:"data"`
	Count   int         `json:"count"`
}

// ChartDataResponse is returned by the combined endpoint
type ChartDataResponse struct {
	Success bool `json:"success"`
	model.ChartPayload
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// APIHandler handles HTTP requests using Gin framework
type APIHandler struct {
	chartService ChartService
	validator    *Validator
	config       *config.Config
	logger       zerolog.Logger
}

// NewAPIHandler creates a new API handler. A nil config selects defaults
// and a nil logger selects the global zerolog logger.
func NewAPIHandler(chartService ChartService, cfg *config.Config, logger *zerolog.Logger) *APIHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = &log.Logger
	}

	return &APIHandler{
		chartService: chartService,
		validator:    GetValidator(),
		config:       cfg,
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

// StartServer serves HTTP until ctx is cancelled, then shuts down gracefully
func (h *APIHandler) StartServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(h.config.Port),
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		h.logger.Info().Msg("received shutdown signal, stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes() *gin.Engine {
	if h.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(requestIDMiddleware())
	router.Use(zerologMiddleware(h.logger))
	router.Use(recoveryMiddleware(h.logger))
	router.Use(corsMiddleware(h.config.CORS))

	router.GET("/", h.Root)

	api := router.Group("/api")
	api.GET("/health", h.HealthCheck)
	api.HEAD("/health", h.HealthCheck)

	uploads := api.Group("")
	uploads.Use(bodyLimitMiddleware(2*h.chartService.MaxUploadBytes() + multipartOverhead))
	uploads.POST("/upload-ohlcv", h.UploadOHLCV)
	uploads.POST("/upload-trades", h.UploadTrades)
	uploads.POST("/process-chart-data", h.ProcessChartData)

	return router
}
