// Package mail renders the club's transactional email bodies. The HTML body
// is rendered with html/template so every interpolated user-controlled
// string is escaped; the plain-text body is rendered verbatim.
package mail

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// SubmissionRequestData feeds the result-submission request email.
type SubmissionRequestData struct {
	RiderName   string
	EventName   string
	EventDate   time.Time
	DistanceKm  int
	ChapterName string
	SubmitURL   string
}

const submissionRequestText = `Hello {{.RiderName}},

{{.EventName}} ({{.DistanceKm}} km, {{.EventDate.Format "January 2, 2006"}}) has closed.
Please submit your result to the {{.ChapterName}} chapter:

{{.SubmitURL}}

If you did not start, you can record a DNS through the same link.

Ride safe,
{{.ChapterName}}
`

const submissionRequestHTML = `<p>Hello {{.RiderName}},</p>
<p><strong>{{.EventName}}</strong> ({{.DistanceKm}}&nbsp;km, {{.EventDate.Format "January 2, 2006"}}) has closed.
Please submit your result to the {{.ChapterName}} chapter:</p>
<p><a href="{{.SubmitURL}}">{{.SubmitURL}}</a></p>
<p>If you did not start, you can record a DNS through the same link.</p>
<p>Ride safe,<br>{{.ChapterName}}</p>
`

var (
	submissionTextTmpl = texttemplate.Must(texttemplate.New("submission-request-text").Parse(submissionRequestText))
	submissionHTMLTmpl = htmltemplate.Must(htmltemplate.New("submission-request-html").Parse(submissionRequestHTML))
)

// RenderSubmissionRequest produces the subject, plain-text body, and HTML
// body for one rider's submission request.
func RenderSubmissionRequest(d SubmissionRequestData) (subject, text, html string, err error) {
	subject = fmt.Sprintf("Submit your result: %s", d.EventName)

	var tb strings.Builder
	if err := submissionTextTmpl.Execute(&tb, d); err != nil {
		return "", "", "", fmt.Errorf("render text body: %w", err)
	}
	var hb strings.Builder
	if err := submissionHTMLTmpl.Execute(&hb, d); err != nil {
		return "", "", "", fmt.Errorf("render html body: %w", err)
	}
	return subject, tb.String(), hb.String(), nil
}
