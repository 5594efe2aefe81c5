package api

import (
	"ChartService/internal/config"
	"ChartService/internal/customerrors"
	"ChartService/internal/model"
	"ChartService/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	validCandles = "DateTime,Open,High,Low,Close,Volume\n" +
		"2024-01-01 09:31:00,100,101,99,100.5,2000\n" +
		"2024-01-01 09:30:00,99,100,98,99.5,1500\n"
	validTrades = "DateTime,Entry,Exit,TakeProfit,StopLoss,Reason\n" +
		"2024-01-01 09:31:00,100.2,101.4,103,98.5,Take Profit\n"
)

// MockChartService implements ChartService interface for testing
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) ProcessUpload(ctx context.Context, kind model.RecordKind, upload service.Upload) ([]model.Row, error) {
	args := m.Called(ctx, kind, upload)
	rows, _ := args.Get(0).([]model.Row)
	return rows, args.Error(1)
}

func (m *MockChartService) ProcessChartData(ctx context.Context, ohlcv, trades service.Upload) (*model.ChartPayload, error) {
	args := m.Called(ctx, ohlcv, trades)
	payload, _ := args.Get(0).(*model.ChartPayload)
	return payload, args.Error(1)
}

func (m *MockChartService) MaxUploadBytes() int64 {
	return int64(m.Called().Int(0))
}

type formFile struct {
	field    string
	filename string
	content  string
}

func setupGinTestMode() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestRouter(svc ChartService, cfg *config.Config) *gin.Engine {
	setupGinTestMode()
	return NewAPIHandler(svc, cfg, testLogger()).SetupRoutes()
}

func newMockService() *MockChartService {
	svc := &MockChartService{}
	svc.On("MaxUploadBytes").Return(1 << 20).Maybe()
	return svc
}

func multipartRequest(t *testing.T, path string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNewAPIHandler(t *testing.T) {
	svc := newMockService()

	handler := NewAPIHandler(svc, nil, nil)
	require.NotNil(t, handler)
	assert.Equal(t, config.DefaultPort, handler.config.Port)
	assert.NotNil(t, handler.validator)

	cfg := config.Default()
	cfg.Port = 9999
	handler = NewAPIHandler(svc, cfg, testLogger())
	assert.Same(t, cfg, handler.config)
}

func TestRootAndHealth(t *testing.T) {
	router := newTestRouter(newMockService(), nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Charting Solution API"}`, w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var health map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "OK", health["status"])
	assert.Equal(t, ServiceName, health["service"])
	assert.Equal(t, ServiceVersion, health["version"])

	w = serve(router, httptest.NewRequest(http.MethodHead, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(newMockService(), nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeaderKey))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeaderKey, "req-123")
	w = serve(router, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeaderKey))
}

func TestUploadOHLCVOrdersRows(t *testing.T) {
	router := newTestRouter(service.NewChartService(0), nil)

	w := serve(router, multipartRequest(t, "/api/upload-ohlcv", formFile{FormFieldFile, "candles.csv", validCandles}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.JSONEq(t, `{
		"success": true,
		"count": 2,
		"data": [
			{"DateTime":"2024-01-01 09:30:00","Open":99,"High":100,"Low":98,"Close":99.5,"Volume":1500},
			{"DateTime":"2024-01-01 09:31:00","Open":100,"High":101,"Low":99,"Close":100.5,"Volume":2000}
		]
	}`, w.Body.String())

	// keys keep the header order on the wire
	assert.Contains(t, w.Body.String(), `{"DateTime":"2024-01-01 09:30:00","Open":99,"High":100,"Low":98,"Close":99.5,"Volume":1500}`)
}

func TestUploadTrades(t *testing.T) {
	router := newTestRouter(service.NewChartService(0), nil)

	csv := "DateTime,Entry,Exit,TakeProfit,StopLoss\n2024-01-01T09:31:00,100,101,103,98\n"
	w := serve(router, multipartRequest(t, "/api/upload-trades", formFile{FormFieldFile, "trades.csv", csv}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool             `json:"success"`
		Data    []model.TradeRow `json:"data"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "2024-01-01 09:31:00", resp.Data[0].DateTime.String())
	assert.Empty(t, resp.Data[0].Reason)
}

func TestUploadErrors(t *testing.T) {
	router := newTestRouter(service.NewChartService(0), nil)

	tests := []struct {
		name     string
		path     string
		file     formFile
		status   int
		contains []string
	}{
		{
			name:     "not a csv",
			path:     "/api/upload-ohlcv",
			file:     formFile{FormFieldFile, "candles.txt", validCandles},
			status:   http.StatusBadRequest,
			contains: []string{"File must be a CSV"},
		},
		{
			name:     "trades missing stop loss",
			path:     "/api/upload-trades",
			file:     formFile{FormFieldFile, "trades.csv", "DateTime,Entry,Exit,TakeProfit\n2024-01-01,1,2,3\n"},
			status:   http.StatusBadRequest,
			contains: []string{"Error processing file", "StopLoss", "Missing: StopLoss"},
		},
		{
			name:     "unparseable cell",
			path:     "/api/upload-ohlcv",
			file:     formFile{FormFieldFile, "candles.csv", "DateTime,Open,High,Low,Close,Volume\nabc,1,1,1,1,1\n"},
			status:   http.StatusBadRequest,
			contains: []string{"row 1", "DateTime"},
		},
		{
			name:     "wrong field name",
			path:     "/api/upload-trades",
			file:     formFile{"upload", "trades.csv", validTrades},
			status:   http.StatusBadRequest,
			contains: []string{"file is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, multipartRequest(t, tt.path, tt.file))
			assert.Equal(t, tt.status, w.Code)

			resp := decodeError(t, w)
			for _, s := range tt.contains {
				assert.Contains(t, resp.Detail, s)
			}
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	cfg := config.Default()
	router := newTestRouter(service.NewChartService(32), cfg)

	w := serve(router, multipartRequest(t, "/api/upload-ohlcv", formFile{FormFieldFile, "candles.csv", validCandles}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestProcessChartData(t *testing.T) {
	router := newTestRouter(service.NewChartService(0), nil)

	w := serve(router, multipartRequest(t, "/api/process-chart-data",
		formFile{FormFieldOHLCV, "ohlcv.csv", validCandles},
		formFile{FormFieldTrades, "trades.csv", validTrades},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success     bool              `json:"success"`
		OHLCV       []model.CandleRow `json:"ohlcv"`
		Trades      []model.TradeRow  `json:"trades"`
		OHLCVCount  int               `json:"ohlcv_count"`
		TradesCount int               `json:"trades_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.OHLCVCount)
	assert.Equal(t, 1, resp.TradesCount)
	assert.Equal(t, "2024-01-01 09:30:00", resp.OHLCV[0].DateTime.String())
	assert.Equal(t, "Take Profit", resp.Trades[0].Reason)
}

func TestProcessChartDataNamesFailingSide(t *testing.T) {
	router := newTestRouter(service.NewChartService(0), nil)

	tests := []struct {
		name    string
		files   []formFile
		side    string
		notSide string
	}{
		{
			name: "malformed trades",
			files: []formFile{
				{FormFieldOHLCV, "ohlcv.csv", validCandles},
				{FormFieldTrades, "trades.csv", "DateTime,Entry\n\"2024-01-01,1\n"},
			},
			side:    "trades file",
			notSide: "ohlcv file",
		},
		{
			name: "ohlcv not a csv",
			files: []formFile{
				{FormFieldOHLCV, "ohlcv.xlsx", validCandles},
				{FormFieldTrades, "trades.csv", validTrades},
			},
			side:    "ohlcv file",
			notSide: "trades file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, multipartRequest(t, "/api/process-chart-data", tt.files...))
			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeError(t, w)
			assert.True(t, strings.HasPrefix(resp.Detail, "Error processing files: "+tt.side), resp.Detail)
			assert.NotContains(t, resp.Detail, tt.notSide)
		})
	}
}

func TestProcessChartDataMissingField(t *testing.T) {
	router := newTestRouter(service.NewChartService(0), nil)

	w := serve(router, multipartRequest(t, "/api/process-chart-data", formFile{FormFieldOHLCV, "ohlcv.csv", validCandles}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "trades_file is required", decodeError(t, w).Detail)

	w = serve(router, multipartRequest(t, "/api/process-chart-data", formFile{FormFieldTrades, "trades.csv", validTrades}))
	assert.Equal(t, "ohlcv_file is required", decodeError(t, w).Detail)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{name: "timeout", err: context.DeadlineExceeded, status: http.StatusRequestTimeout},
		{name: "too large", err: customerrors.ErrUploadTooLarge, status: http.StatusRequestEntityTooLarge},
		{name: "malformed", err: customerrors.Malformed("line 3: bare quote"), status: http.StatusBadRequest,
			detail: "Error processing file: file is not valid delimited text: line 3: bare quote"},
		{name: "bad extension", err: customerrors.ErrBadExtension, status: http.StatusBadRequest, detail: "File must be a CSV"},
		{name: "unexpected", err: errors.New("disk on fire"), status: http.StatusBadRequest, detail: "Error processing file: disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockService()
			svc.On("ProcessUpload", mock.Anything, model.KindOHLCV, mock.AnythingOfType("service.Upload")).Return(nil, tt.err)

			router := newTestRouter(svc, nil)
			w := serve(router, multipartRequest(t, "/api/upload-ohlcv", formFile{FormFieldFile, "candles.csv", validCandles}))

			assert.Equal(t, tt.status, w.Code)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, decodeError(t, w).Detail)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandlerPassesSanitizedFilename(t *testing.T) {
	svc := newMockService()
	svc.On("ProcessUpload", mock.Anything, model.KindTrades, mock.MatchedBy(func(u service.Upload) bool {
		return u.Filename == "trades.csv" && u.Body != nil
	})).Return([]model.Row{}, nil)

	router := newTestRouter(svc, nil)
	w := serve(router, multipartRequest(t, "/api/upload-trades", formFile{FormFieldFile, "../../tmp/trades.csv", validTrades}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCORS(t *testing.T) {
	router := newTestRouter(newMockService(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/upload-ohlcv", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(router, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = serve(router, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestValidatorSanitizeFilename(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		input string
		want  string
	}{
		{input: "candles.csv", want: "candles.csv"},
		{input: "  spaced.csv  ", want: "spaced.csv"},
		{input: "../../etc/passwd.csv", want: "passwd.csv"},
		{input: `C:\Users\me\trades.csv`, want: "trades.csv"},
		{input: "bad\x00name.csv", want: "badname.csv"},
		{input: "", want: ""},
		{input: strings.Repeat("a", 300) + ".csv", want: strings.Repeat("a", 251) + ".csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, v.sanitizeFilename(tt.input), "input %q", tt.input)
	}
}
