package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/St1cky1/command-center/internal/entity"
)

var reportTemplate = template.Must(template.New("report").Parse(`<h2>End of day report: {{.Date}}</h2>
<p><strong>From:</strong> {{.Author}}</p>
<h3>Summary</h3>
<p>{{.Summary}}</p>
{{if .Completed}}<h3>Completed</h3>
<p>{{.Completed}}</p>
{{end}}{{if .Blockers}}<h3>Blockers</h3>
<p>{{.Blockers}}</p>
{{end}}{{if .Tomorrow}}<h3>Plan for tomorrow</h3>
<p>{{.Tomorrow}}</p>
{{end}}`))

// ReportMessage собирает письмо с отчетом для руководителя
func ReportMessage(report *entity.Report, author *entity.User, to string) (Message, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, map[string]string{
		"Date":      report.ReportDate.String(),
		"Author":    author.Name,
		"Summary":   report.Summary,
		"Completed": report.Completed,
		"Blockers":  report.Blockers,
		"Tomorrow":  report.Tomorrow,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render report email: %w", err)
	}

	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("EOD report %s: %s", report.ReportDate.String(), author.Name),
		HTML:    buf.String(),
	}, nil
}
