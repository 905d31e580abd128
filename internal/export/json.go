package export

import (
	"encoding/json"
	"io"

	"cashlens/internal/core"
)

// JSON writes a 2-space indented array of records.
type JSON struct{}

func (JSON) Extension() string { return "json" }

func (JSON) Export(w io.Writer, expenses []core.Expense) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toRecords(expenses))
}
