package app

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shpitdev/connections-enricher/internal/contacts"
	"github.com/shpitdev/connections-enricher/internal/extract"
)

// FieldStatus counts the records of a store by the state of one target field.
type FieldStatus struct {
	Field    contacts.Field
	Total    int
	Found    int
	Sentinel int
	Failed   int
	Pending  int
}

var sentinels = map[contacts.Field]string{
	contacts.FieldEmail:   extract.NoEmail,
	contacts.FieldHistory: extract.NoExperience,
}

// Summarize reports progress for both target fields.
func Summarize(s *contacts.Store) []FieldStatus {
	out := make([]FieldStatus, 0, 2)
	for _, field := range []contacts.Field{contacts.FieldEmail, contacts.FieldHistory} {
		st := FieldStatus{Field: field}
		for rec := range s.All() {
			st.Total++
			switch {
			case contacts.IsBlank(rec, field):
				st.Pending++
			case contacts.IsFailure(rec, field):
				st.Failed++
			case isSentinel(rec, field):
				st.Sentinel++
			default:
				st.Found++
			}
		}
		out = append(out, st)
	}
	return out
}

func isSentinel(rec *contacts.Record, field contacts.Field) bool {
	switch field {
	case contacts.FieldEmail:
		return rec.Email == sentinels[field]
	case contacts.FieldHistory:
		return !rec.History.IsList() && rec.History.Note == sentinels[field]
	default:
		return false
	}
}

// RenderSummary writes the progress table to w.
func RenderSummary(w io.Writer, rows []FieldStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Field", "Total", "Found", "Sentinel", "Failed", "Pending"})
	for _, r := range rows {
		t.AppendRow(table.Row{string(r.Field), r.Total, r.Found, r.Sentinel, r.Failed, r.Pending})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
