package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"ChartService/internal/customerrors"
	"ChartService/internal/data"
	"ChartService/internal/model"
)

// maxDecimalExponent bounds the power of ten a numeric cell may carry.
// Rendering 1e2000000000 would take gigabytes.
const maxDecimalExponent = 64

var (
	errEmptyCell   = errors.New("empty value")
	errNotInteger  = errors.New("not an integer")
	errOutOfRange  = errors.New("value out of range")
	errExponentCap = fmt.Errorf("exponent exceeds %d in magnitude", maxDecimalExponent)
)

// ParseTimestamp reads a free-form datetime and returns its naive wall clock.
// Offsets present in the input are dropped, not converted.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return model.Naive(t), nil
}

// FormatTimestamp renders an instant in the canonical layout
func FormatTimestamp(t time.Time) string {
	return t.Format(model.DateTimeLayout)
}

// Normalize parses the schema's timestamp column into time.Time values and
// types every other column. Declared columns must parse as their declared
// type; undeclared columns are inferred. The first bad cell fails the call.
func Normalize(table *data.Table, schema Schema) error {
	for _, name := range table.Columns() {
		cells, _ := table.Column(name)

		spec, declared := schema.Lookup(name)
		if !declared {
			spec = ColumnSpec{Name: name, Type: inferType(cells)}
		}
		if name == schema.TimeField {
			spec.Type = TypeTimestamp
			spec.Required = true
		}

		typed, err := typeColumn(cells, spec)
		if err != nil {
			return err
		}
		if err := table.SetColumn(name, typed); err != nil {
			return err
		}
	}
	return nil
}

func typeColumn(cells []any, spec ColumnSpec) ([]any, error) {
	out := make([]any, len(cells))
	for i, cell := range cells {
		raw, ok := cell.(string)
		if !ok {
			// already typed by an earlier pass
			out[i] = cell
			continue
		}

		if strings.TrimSpace(raw) == "" {
			if spec.Required {
				return nil, &customerrors.ParseError{
					Row:    i + 1,
					Column: spec.Name,
					Value:  raw,
					Type:   spec.Type.String(),
					Err:    errEmptyCell,
				}
			}
			out[i] = nil
			continue
		}

		v, err := parseCell(raw, spec.Type)
		if err != nil {
			return nil, &customerrors.ParseError{
				Row:    i + 1,
				Column: spec.Name,
				Value:  raw,
				Type:   spec.Type.String(),
				Err:    err,
			}
		}
		out[i] = v
	}
	return out, nil
}

func parseCell(raw string, typ ColumnType) (any, error) {
	s := strings.TrimSpace(raw)
	switch typ {
	case TypeTimestamp:
		return ParseTimestamp(s)
	case TypeDecimal:
		return parseDecimal(s)
	case TypeInteger:
		return parseInteger(s)
	default:
		return raw, nil
	}
}

// parseInteger accepts plain integers and integral decimals such as "1500.0"
func parseInteger(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, errNotInteger
	}
	n := d.BigInt()
	if !n.IsInt64() {
		return 0, errOutOfRange
	}
	return n.Int64(), nil
}

// parseDecimal rejects exponents whose rendering would dwarf the input
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return decimal.Decimal{}, errExponentCap
	}
	return d, nil
}

// inferType picks the narrowest type every non-empty cell satisfies
func inferType(cells []any) ColumnType {
	allInt, allDec, seen := true, true, false
	for _, cell := range cells {
		raw, ok := cell.(string)
		if !ok {
			continue
		}
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		seen = true

		if allInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
			}
		}
		if allDec {
			if _, err := parseDecimal(s); err != nil {
				allDec = false
			}
		}
		if !allInt && !allDec {
			return TypeString
		}
	}

	switch {
	case !seen:
		return TypeString
	case allInt:
		return TypeInteger
	case allDec:
		return TypeDecimal
	default:
		return TypeString
	}
}
