// Package export writes the expense collection in the formats offered on
// the profile screen, plus YAML and a PDF report.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cashlens/internal/core"
)

// Exporter serializes expenses to w.
type Exporter interface {
	Export(w io.Writer, expenses []core.Expense) error
	// Extension is the file extension without the dot.
	Extension() string
}

// Formats lists the supported format names.
var Formats = []string{"csv", "json", "yaml", "pdf"}

// ByFormat returns the exporter for a format name (case-insensitive).
// "yml" is accepted for YAML.
func ByFormat(name string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV{}, nil
	case "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	case "pdf":
		return PDF{Generated: time.Now()}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (expected one of %s)", name, strings.Join(Formats, ", "))
	}
}

// WriteFile exports to <dir>/<base>.<ext>, creating dir when needed, and
// returns the absolute path of the file. An empty dir means the working
// directory.
func WriteFile(dir, base, format string, expenses []core.Expense) (string, error) {
	exp, err := ByFormat(format)
	if err != nil {
		return "", err
	}
	return WriteFileWith(dir, base, exp, expenses)
}

// WriteFileWith is WriteFile for an already configured exporter.
func WriteFileWith(dir, base string, exp Exporter, expenses []core.Expense) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if base == "" {
		base = "expenses-" + time.Now().Format("20060102-1504")
	}

	path := filepath.Join(dir, base+"."+exp.Extension())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := exp.Export(f, expenses); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return filepath.Abs(path)
}

// record is the flat layout shared by the structured formats.
type record struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Amount   core.Money `json:"amount"`
	Category string     `json:"category"`
	Date     string     `json:"date"`
	Notes    string     `json:"notes"`
}

func toRecords(expenses []core.Expense) []record {
	out := make([]record, len(expenses))
	for i, e := range expenses {
		out[i] = record{
			ID:       e.ID,
			Title:    e.Title,
			Amount:   e.Amount,
			Category: e.Category.Name(),
			Date:     formatDate(e.Date),
			Notes:    e.Notes,
		}
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}
