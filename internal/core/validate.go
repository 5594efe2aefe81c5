package core

import (
	"ChartService/internal/customerrors"
	"ChartService/internal/data"
)

// Validate checks that every required column of the schema is present.
// Names match exactly and case-sensitively; extra columns are allowed.
func Validate(table *data.Table, schema Schema) error {
	required := schema.RequiredColumns()

	var missing []string
	for _, name := range required {
		if !table.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	return &customerrors.MissingColumnsError{
		Label:    schema.Kind.Label(),
		Required: required,
		Found:    table.Columns(),
		Missing:  missing,
	}
}
