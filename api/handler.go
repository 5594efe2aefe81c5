package api

import (
	"ChartService/internal/customerrors"
	"ChartService/internal/model"
	"ChartService/internal/service"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// UploadOHLCV handles POST /api/upload-ohlcv requests
func (h *APIHandler) UploadOHLCV(c *gin.Context) {
	h.handleSingleUpload(c, model.KindOHLCV)
}

// UploadTrades handles POST /api/upload-trades requests
func (h *APIHandler) UploadTrades(c *gin.Context) {
	h.handleSingleUpload(c, model.KindTrades)
}

func (h *APIHandler) handleSingleUpload(c *gin.Context, kind model.RecordKind) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	upload, closeFile, err := h.openUpload(c, FormFieldFile)
	if err != nil {
		h.handleUploadError(c, err, "Error processing file")
		return
	}
	defer closeFile()

	rows, err := h.chartService.ProcessUpload(ctx, kind, upload)
	if err != nil {
		h.handleUploadError(c, err, "Error processing file")
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Success: true,
		Data:    rows,
		Count:   len(rows),
	})
}

// ProcessChartData handles POST /api/process-chart-data requests
func (h *APIHandler) ProcessChartData(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	ohlcv, closeOHLCV, err := h.openUpload(c, FormFieldOHLCV)
	if err != nil {
		h.handleUploadError(c, &customerrors.SideError{Side: string(model.KindOHLCV), Err: err}, "Error processing files")
		return
	}
	defer closeOHLCV()

	trades, closeTrades, err := h.openUpload(c, FormFieldTrades)
	if err != nil {
		h.handleUploadError(c, &customerrors.SideError{Side: string(model.KindTrades), Err: err}, "Error processing files")
		return
	}
	defer closeTrades()

	payload, err := h.chartService.ProcessChartData(ctx, ohlcv, trades)
	if err != nil {
		h.handleUploadError(c, err, "Error processing files")
		return
	}

	c.JSON(http.StatusOK, ChartDataResponse{
		Success:      true,
		ChartPayload: *payload,
	})
}

// Root handles GET / requests
func (h *APIHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Charting Solution API"})
}

// HealthCheck handles GET /api/health requests
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// openUpload fetches and validates a multipart file field
func (h *APIHandler) openUpload(c *gin.Context, field string) (service.Upload, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if isBodyTooLarge(err) {
			return service.Upload{}, nil, customerrors.ErrUploadTooLarge
		}
		return service.Upload{}, nil, fieldRequired(field)
	}

	filename, err := h.validator.ValidateUpload(fileHeader, h.chartService.MaxUploadBytes())
	if err != nil {
		return service.Upload{}, nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return service.Upload{}, nil, err
	}

	return service.Upload{Filename: filename, Body: file}, func() { _ = file.Close() }, nil
}

// handleUploadError maps pipeline errors to a status code and client message
func (h *APIHandler) handleUploadError(c *gin.Context, err error, prefix string) {
	status := http.StatusBadRequest
	detail := prefix + ": " + err.Error()

	switch {
	case errors.Is(err, customerrors.ErrUploadTooLarge) || isBodyTooLarge(err):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
	case errors.Is(err, ErrFileRequired):
		var mf *missingFieldError
		if errors.As(err, &mf) {
			detail = mf.Error()
		} else {
			detail = err.Error()
		}
	case errors.Is(err, customerrors.ErrBadExtension):
		if _, tagged := customerrors.Side(err); !tagged {
			detail = "File must be a CSV"
		}
	}

	h.handleError(c, err, status, detail)
}

// handleError logs the error and sends appropriate HTTP response
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestIDStr := requestID(c)

	event := h.logger.Warn()
	if statusCode >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.
		Str("request_id", requestIDStr).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Err(err).
		Int("status_code", statusCode).
		Msg("API error")

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Detail:    userMessage,
		RequestID: requestIDStr,
	})
}

func requestID(c *gin.Context) string {
	if v, exists := c.Get(RequestIDContextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return "unknown"
}
