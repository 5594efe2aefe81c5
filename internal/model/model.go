package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateTimeLayout is the canonical rendering of every DateTime value sent to clients
const DateTimeLayout = "2006-01-02 15:04:05"

// RecordKind identifies which kind of CSV an upload holds
type RecordKind string

const (
	KindOHLCV  RecordKind = "ohlcv"
	KindTrades RecordKind = "trades"
)

// Label returns the human-facing name used in error messages
func (k RecordKind) Label() string {
	switch k {
	case KindOHLCV:
		return "OHLCV"
	case KindTrades:
		return "Trades"
	default:
		return string(k)
	}
}

// DateTime is a timezone-naive instant rendered as DateTimeLayout
type DateTime struct {
	time.Time
}

// NewDateTime drops the zone of t and keeps its wall clock
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: Naive(t)}
}

// Naive keeps the wall clock reading of t and discards its location
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func (d DateTime) String() string {
	return d.Format(DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return fmt.Errorf("invalid DateTime %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// CandleRow is the typed view of one OHLCV row
type CandleRow struct {
	DateTime DateTime        `json:"DateTime"`
	Open     decimal.Decimal `json:"Open"`
	High     decimal.Decimal `json:"High"`
	Low      decimal.Decimal `json:"Low"`
	Close    decimal.Decimal `json:"Close"`
	Volume   int64           `json:"Volume"`
}

// TradeRow is the typed view of one trade row
type TradeRow struct {
	DateTime   DateTime        `json:"DateTime"`
	Entry      decimal.Decimal `json:"Entry"`
	Exit       decimal.Decimal `json:"Exit"`
	TakeProfit decimal.Decimal `json:"TakeProfit"`
	StopLoss   decimal.Decimal `json:"StopLoss"`
	Reason     string          `json:"Reason,omitempty"`
}

// Row is one projected record. Keys keep the source column order when encoded.
type Row struct {
	columns []string
	values  []any
}

// NewRow pairs column names with values. Both slices must be the same length.
func NewRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

// Columns returns the column names in order
func (r Row) Columns() []string {
	return r.columns
}

// Get returns the value stored under column
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Row) String() string {
	parts := make([]string, len(r.columns))
	for i, col := range r.columns {
		parts[i] = fmt.Sprintf("%s=%v", col, r.values[i])
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// ChartPayload is the combined result of an OHLCV and a trades upload
type ChartPayload struct {
	OHLCV       []Row `json:"ohlcv"`
	Trades      []Row `json:"trades"`
	OHLCVCount  int   `json:"ohlcv_count"`
	TradesCount int   `json:"trades_count"`
}
