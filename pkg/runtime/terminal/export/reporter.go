package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
	UnitWidth  int
	NoteWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  32,
		ValueWidth: 16,
		UnitWidth:  12,
		NoteWidth:  54,
	}
}

// DisplayLayout formats timestamps in record tables.
const DisplayLayout = "02/01/2006 15:04"

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func (c *Reporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(name string, value any, unit string, note string) string {
			unitStr := unit
			if unit == "" {
				unitStr = strings.Repeat(" ", c.config.UnitWidth)
			}
			return fmt.Sprintf("| %-*s | %-*v | %-*s | %-*s |",
				c.config.NameWidth, truncate(name, c.config.NameWidth),
				c.config.ValueWidth, value,
				c.config.UnitWidth, unitStr,
				c.config.NoteWidth, truncate(note, c.config.NoteWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.UnitWidth+2),
				strings.Repeat("-", c.config.NoteWidth+2))
		},
	}

	tmpl := `
{{.Title}} ({{.Period.Duration}} days)

Period: {{.Period.Start.Format "02/01/2006"}} to {{.Period.End.Format "02/01/2006"}}
Services: {{.Services}}
Technician value: {{.Currency}} {{printf "%.2f" .TechnicianValue}}
Company value: {{.Currency}} {{printf "%.2f" .CompanyValue}}

{{range .Sections}}
=== {{.Title}} ===
{{range $key, $value := .Summary}}{{$key}}: {{$value}}
{{end}}{{if .Details}}
{{separator}}
{{formatRow "Name" "Value" "Unit" "Note"}}
{{separator}}
{{range .Details}}{{formatRow .Name .Value .Unit .Note}}
{{end}}{{separator}}
{{end}}{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

var recordWidths = []int{16, 20, 20, 14, 22, 12, 12}

// Records prints one table row per record.
func (c *Reporter) Records(records []domain.ServiceRecord) error {
	row := func(cells ...string) string {
		var b strings.Builder
		b.WriteString("|")
		for i, cell := range cells {
			fmt.Fprintf(&b, " %-*s |", recordWidths[i], truncate(cell, recordWidths[i]))
		}
		return b.String()
	}
	funcMap := template.FuncMap{
		"header": func() string {
			return row("Timestamp", "Technician", "City", "Status", "Location", "Technician", "Company")
		},
		"formatRecord": func(r domain.ServiceRecord) string {
			location := "-"
			if r.HasLocation() {
				location = fmt.Sprintf("%.5f, %.5f", *r.Latitude, *r.Longitude)
			}
			return row(
				r.Timestamp.Format(DisplayLayout),
				r.TechnicianID,
				r.City,
				r.Status,
				location,
				fmt.Sprintf("%.2f", r.TechnicianValue),
				fmt.Sprintf("%.2f", r.CompanyValue),
			)
		},
		"separator": func() string {
			parts := make([]string, len(recordWidths))
			for i, w := range recordWidths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
	}

	tmpl := `{{separator}}
{{header}}
{{separator}}
{{range .}}{{formatRecord .}}
{{end}}{{separator}}
{{len .}} records
`
	t, err := template.New("records").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, records)
}
