package export

import (
	"bufio"
	"io"
	"strings"

	"cashlens/internal/core"
)

// CSV writes header id,title,amount,category,date,notes. Text columns are
// always quoted; id and amount never are.
type CSV struct{}

func (CSV) Extension() string { return "csv" }

func (CSV) Export(w io.Writer, expenses []core.Expense) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("id,title,amount,category,date,notes\n")
	for _, r := range toRecords(expenses) {
		bw.WriteString(r.ID)
		bw.WriteByte(',')
		bw.WriteString(quote(r.Title))
		bw.WriteByte(',')
		bw.WriteString(r.Amount.String())
		bw.WriteByte(',')
		bw.WriteString(quote(r.Category))
		bw.WriteByte(',')
		bw.WriteString(quote(r.Date))
		bw.WriteByte(',')
		bw.WriteString(quote(r.Notes))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
