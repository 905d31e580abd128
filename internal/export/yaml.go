package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"cashlens/internal/core"
)

// YAML writes a sequence of records with amounts as two-decimal floats.
type YAML struct{}

func (YAML) Extension() string { return "yaml" }

func (YAML) Export(w io.Writer, expenses []core.Expense) error {
	type yamlRecord struct {
		ID       string    `yaml:"id"`
		Title    string    `yaml:"title"`
		Amount   yaml.Node `yaml:"amount"`
		Category string    `yaml:"category"`
		Date     string    `yaml:"date"`
		Notes    string    `yaml:"notes,omitempty"`
	}

	records := toRecords(expenses)
	out := make([]yamlRecord, len(records))
	for i, r := range records {
		out[i] = yamlRecord{
			ID:       r.ID,
			Title:    r.Title,
			Amount:   yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: r.Amount.String()},
			Category: r.Category,
			Date:     r.Date,
			Notes:    r.Notes,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
