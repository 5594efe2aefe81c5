package core

import (
	"ChartService/internal/customerrors"
	"ChartService/internal/data"
	"ChartService/internal/model"
)

// Run takes the raw bytes of one upload through parse, validation,
// normalization, sorting and projection.
func Run(raw []byte, schema Schema) ([]model.Row, error) {
	table, err := data.Parse(raw)
	if err != nil {
		return nil, err
	}

	if err := Validate(table, schema); err != nil {
		return nil, err
	}

	if err := Normalize(table, schema); err != nil {
		return nil, err
	}

	sorted, err := Sort(table, schema.TimeField)
	if err != nil {
		return nil, err
	}

	return Project(sorted), nil
}

// Assemble runs the OHLCV and trades pipelines independently and packs
// both results. Errors are tagged with the side that produced them; the
// OHLCV side is checked first.
func Assemble(ohlcv, trades []byte) (*model.ChartPayload, error) {
	ohlcvRows, err := Run(ohlcv, CandleSchema)
	if err != nil {
		return nil, &customerrors.SideError{Side: string(model.KindOHLCV), Err: err}
	}

	tradeRows, err := Run(trades, TradeSchema)
	if err != nil {
		return nil, &customerrors.SideError{Side: string(model.KindTrades), Err: err}
	}

	return &model.ChartPayload{
		OHLCV:       ohlcvRows,
		Trades:      tradeRows,
		OHLCVCount:  len(ohlcvRows),
		TradesCount: len(tradeRows),
	}, nil
}
