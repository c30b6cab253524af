package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a JSON file holding a map of field name to table. The
// FieldName of each table is filled from its key when absent. The result is
// not validated; callers run ValidateAll before scoring.
func LoadFile(path string) (Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classification tables: %w", err)
	}

	var tables Tables
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("parse classification tables %s: %w", path, err)
	}
	for field, table := range tables {
		if table.FieldName == "" {
			table.FieldName = field
			tables[field] = table
		}
	}
	return tables, nil
}
