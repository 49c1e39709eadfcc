package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

const plainReport = `{{.Title}}
{{.Period.Start.Format "02/01/2006"}} - {{.Period.End.Format "02/01/2006"}} ({{.Period.Duration}} days), {{.Services}} services
Values: technician {{money .TechnicianValue}}, company {{money .CompanyValue}} {{.Currency}}
{{range .Sections}}
{{.Title}}
{{range $key, $value := .Summary}}  {{$key}}: {{$value}}
{{end}}{{range .Details}}- {{.Name}}: {{.Value}}{{with .Unit}} {{.}}{{end}}{{with .Note}} ({{.}}){{end}}
{{end}}{{end}}`

// Reporter prints reports as plain text, one line per detail.
type Reporter struct {
	writer io.Writer
	tmpl   *template.Template
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	tmpl := template.Must(template.New("plain").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).Parse(plainReport))
	return &Reporter{writer: writer, tmpl: tmpl}
}

func (c *Reporter) Handle(report *domain.Report) error {
	if err := c.tmpl.Execute(c.writer, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
