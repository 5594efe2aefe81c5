package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"ChartService/internal/data"
	"ChartService/internal/model"
)

// Project turns a normalized table into one Row per table row, keeping
// every column in table order. Timestamps are rendered in the canonical
// layout and numbers stay numbers.
func Project(table *data.Table) []model.Row {
	columns := table.Columns()
	rows := make([]model.Row, table.Len())
	for i := range rows {
		cells := table.Row(i)
		values := make([]any, len(cells))
		for c, cell := range cells {
			values[c] = jsonValue(cell)
		}
		rows[i] = model.NewRow(columns, values)
	}
	return rows
}

func jsonValue(cell any) any {
	switch v := cell.(type) {
	case nil:
		return nil
	case time.Time:
		return FormatTimestamp(v)
	case decimal.Decimal:
		return json.Number(v.String())
	case int64:
		return json.Number(strconv.FormatInt(v, 10))
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
