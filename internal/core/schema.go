package core

import "ChartService/internal/model"

// ColumnType is the declared type of a schema column
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeTimestamp
	TypeDecimal
	TypeInteger
)

func (t ColumnType) String() string {
	switch t {
	case TypeTimestamp:
		return "timestamp"
	case TypeDecimal:
		return "decimal"
	case TypeInteger:
		return "integer"
	default:
		return "string"
	}
}

// ColumnSpec describes one column of a record kind
type ColumnSpec struct {
	Name     string
	Type     ColumnType
	Required bool
}

// Schema is the column descriptor for one record kind
type Schema struct {
	Kind      model.RecordKind
	TimeField string
	Columns   []ColumnSpec
}

// TimestampColumn is the column every record kind is ordered by
const TimestampColumn = "DateTime"

var (
	// CandleSchema describes OHLCV uploads
	CandleSchema = Schema{
		Kind:      model.KindOHLCV,
		TimeField: TimestampColumn,
		Columns: []ColumnSpec{
			{Name: TimestampColumn, Type: TypeTimestamp, Required: true},
			{Name: "Open", Type: TypeDecimal, Required: true},
			{Name: "High", Type: TypeDecimal, Required: true},
			{Name: "Low", Type: TypeDecimal, Required: true},
			{Name: "Close", Type: TypeDecimal, Required: true},
			{Name: "Volume", Type: TypeInteger, Required: true},
		},
	}

	// TradeSchema describes trade uploads. Reason is typed but never required.
	TradeSchema = Schema{
		Kind:      model.KindTrades,
		TimeField: TimestampColumn,
		Columns: []ColumnSpec{
			{Name: TimestampColumn, Type: TypeTimestamp, Required: true},
			{Name: "Entry", Type: TypeDecimal, Required: true},
			{Name: "Exit", Type: TypeDecimal, Required: true},
			{Name: "TakeProfit", Type: TypeDecimal, Required: true},
			{Name: "StopLoss", Type: TypeDecimal, Required: true},
			{Name: "Reason", Type: TypeString},
		},
	}
)

// SchemaFor returns the schema of a record kind
func SchemaFor(kind model.RecordKind) (Schema, bool) {
	switch kind {
	case model.KindOHLCV:
		return CandleSchema, true
	case model.KindTrades:
		return TradeSchema, true
	default:
		return Schema{}, false
	}
}

// RequiredColumns lists the names that must be present, in schema order
func (s Schema) RequiredColumns() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Required {
			out = append(out, c.Name)
		}
	}
	return out
}

// Lookup returns the spec of a declared column
func (s Schema) Lookup(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}
