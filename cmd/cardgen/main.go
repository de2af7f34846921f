// Command cardgen renders printable control cards for one event as HTML on
// stdout. Controls come either from a --controls list or straight from a
// route-planner route via --route.
package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/rwgps"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/cards"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

func main() {
	var (
		name       = flag.String("name", "", "event name (required)")
		eventType  = flag.String("type", "BREVET", "event type: BREVET, POPULAIRE, FLECHE, PERMANENT")
		distance   = flag.Int("distance", 0, "nominal distance in km (required)")
		start      = flag.String("start", "", "start time, RFC 3339 (required)")
		location   = flag.String("location", "", "start location")
		organizer  = flag.String("organizer", "", "organizer name")
		phone      = flag.String("phone", "", "organizer phone")
		riderList  = flag.String("riders", "", "comma-separated rider names")
		blanks     = flag.Int("blanks", 0, "extra blank sheets")
		controls   = flag.String("controls", "", `controls as "Name@55,Name@100" (km)`)
		route      = flag.String("route", "", "route-planner route ID to import controls from")
		plannerURL = flag.String("planner-url", "https://ridewithgps.com", "route-planner base URL")
	)
	flag.Parse()

	if *name == "" || *distance <= 0 || *start == "" {
		flag.Usage()
		os.Exit(2)
	}
	startAt, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		fatalf("invalid --start: %v", err)
	}
	if *controls != "" && *route != "" {
		fatalf("--controls and --route are mutually exclusive")
	}

	ctx := context.Background()
	var ctrls []domain.Control
	switch {
	case *route != "":
		client := rwgps.NewClient(*plannerURL, nil)
		ctrls, err = cards.ImportControls(ctx, client, *route)
		if err != nil {
			fatalf("import controls: %v", err)
		}
	case *controls != "":
		ctrls, err = parseControls(*controls)
		if err != nil {
			fatalf("invalid --controls: %v", err)
		}
	}

	in := cards.Input{
		EventName:       *name,
		EventType:       domain.EventType(strings.ToUpper(*eventType)),
		DistanceKm:      *distance,
		StartAt:         startAt,
		StartLocation:   *location,
		Controls:        ctrls,
		OrganizerName:   *organizer,
		OrganizerPhone:  *phone,
		RiderNames:      splitRiders(*riderList),
		ExtraBlankCards: *blanks,
	}
	set, err := cards.Generate(ctx, in)
	if err != nil {
		fatalf("generate: %v", err)
	}
	if err := cardTemplate.Execute(os.Stdout, set); err != nil {
		fatalf("render: %v", err)
	}
}

func parseControls(s string) ([]domain.Control, error) {
	var out []domain.Control
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, dist, ok := strings.Cut(part, "@")
		if !ok {
			return nil, fmt.Errorf("%q: want Name@km", part)
		}
		km, err := strconv.ParseFloat(strings.TrimSpace(dist), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", part, err)
		}
		out = append(out, domain.Control{Name: strings.TrimSpace(name), DistanceKm: km})
	}
	return out, nil
}

func splitRiders(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cardgen: "+format+"\n", args...)
	os.Exit(1)
}

var cardTemplate = template.Must(template.New("cards").Funcs(template.FuncMap{
	"clock": func(t time.Time) string { return t.Format("Mon 15:04") },
	"km":    func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.EventName}} control cards</title>
<style>
  body { font-family: sans-serif; font-size: 11px; }
  .sheet { page-break-after: always; border: 1px solid #000; margin: 8px; padding: 8px; }
  .slot { border-bottom: 1px dashed #999; padding: 6px 0; }
  .blank-line { display: inline-block; min-width: 18em; border-bottom: 1px solid #000; }
  .columns { display: flex; gap: 12px; }
  .column { flex: 1; }
  table { border-collapse: collapse; width: 100%; }
  td, th { border: 1px solid #666; padding: 2px 4px; text-align: left; }
</style>
</head>
<body>
<h1>{{.EventName}} &middot; {{.DistanceKm}} km {{.EventType}}</h1>
<p>Start: {{.StartAt.Format "2006-01-02 15:04"}} · Time limit: {{.AllowedHours}}h{{printf "%02d" .AllowedMinutes}}
{{- if .OrganizerName}} · Organizer: {{.OrganizerName}}{{if .OrganizerPhone}} ({{.OrganizerPhone}}){{end}}{{end}}</p>
{{range $i, $sheet := .Sheets}}
<div class="sheet">
  {{range $sheet.Front}}
  <div class="slot">
    Rider: {{if .Blank}}<span class="blank-line"></span>{{else}}<strong>{{.RiderName}}</strong>{{end}}
  </div>
  {{end}}
  <div class="columns">
    {{range $sheet.Back}}
    <div class="column">
      {{if .}}
      <table>
        <tr><th>Control</th><th>km</th><th>Opens</th><th>Closes</th><th>Stamp</th></tr>
        {{range .}}
        <tr><td>{{.Name}}</td><td>{{km .DistanceKm}}</td><td>{{clock .OpensAt}}</td><td>{{clock .ClosesAt}}</td><td></td></tr>
        {{end}}
      </table>
      {{end}}
    </div>
    {{end}}
  </div>
</div>
{{end}}
</body>
</html>
`))
