package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"ChartService/internal/core"
	"ChartService/internal/customerrors"
	"ChartService/internal/model"
)

// Configuration constants
const (
	DefaultMaxUploadBytes int64 = 10 << 20
	CSVExtension                = ".csv"
)

// Upload is one file received from a client
type Upload struct {
	Filename string
	Body     io.Reader
}

// ChartService turns CSV uploads into chart-ready rows
type ChartService struct {
	maxUploadBytes int64
}

// NewChartService creates a chart service. A non-positive limit selects DefaultMaxUploadBytes.
func NewChartService(maxUploadBytes int64) *ChartService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ChartService{
		maxUploadBytes: maxUploadBytes,
	}
}

// MaxUploadBytes returns the per-file size limit
func (cs *ChartService) MaxUploadBytes() int64 {
	return cs.maxUploadBytes
}

// ProcessUpload validates and converts a single OHLCV or trades file
func (cs *ChartService) ProcessUpload(ctx context.Context, kind model.RecordKind, upload Upload) ([]model.Row, error) {
	schema, ok := core.SchemaFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}

	raw, err := cs.read(upload)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return core.Run(raw, schema)
}

// ProcessChartData converts a paired OHLCV and trades upload into one payload.
// Nothing is returned unless both files pass.
func (cs *ChartService) ProcessChartData(ctx context.Context, ohlcv, trades Upload) (*model.ChartPayload, error) {
	ohlcvRaw, err := cs.read(ohlcv)
	if err != nil {
		return nil, &customerrors.SideError{Side: string(model.KindOHLCV), Err: err}
	}

	tradesRaw, err := cs.read(trades)
	if err != nil {
		return nil, &customerrors.SideError{Side: string(model.KindTrades), Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return core.Assemble(ohlcvRaw, tradesRaw)
}

// read checks the file name and pulls the whole body into memory
func (cs *ChartService) read(upload Upload) ([]byte, error) {
	if filepath.Ext(upload.Filename) != CSVExtension {
		return nil, customerrors.ErrBadExtension
	}
	if upload.Body == nil {
		return nil, customerrors.Malformed("file is empty")
	}

	raw, err := io.ReadAll(io.LimitReader(upload.Body, cs.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", upload.Filename, err)
	}
	if int64(len(raw)) > cs.maxUploadBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", customerrors.ErrUploadTooLarge, upload.Filename, cs.maxUploadBytes)
	}
	return raw, nil
}
