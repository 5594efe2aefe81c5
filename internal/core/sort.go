package core

import (
	"fmt"
	"sort"
	"time"

	"ChartService/internal/data"
)

// Sort orders rows by the normalized timestamp column, oldest first.
// Rows sharing a timestamp keep their source order.
func Sort(table *data.Table, column string) (*data.Table, error) {
	cells, ok := table.Column(column)
	if !ok {
		return nil, fmt.Errorf("no column %s to sort by", column)
	}

	times := make([]time.Time, len(cells))
	for i, cell := range cells {
		t, ok := cell.(time.Time)
		if !ok {
			return nil, fmt.Errorf("column %s row %d is not normalized", column, i+1)
		}
		times[i] = t
	}

	perm := make([]int, len(times))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return times[perm[a]].Before(times[perm[b]])
	})

	return table.Reorder(perm)
}
