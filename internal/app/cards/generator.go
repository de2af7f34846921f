// Package cards builds printable brevet control cards: double-sided sheets,
// two riders per sheet-pair, with ACP open/close times stamped per control.
package cards

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/acp"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

// backColumns is the number of print columns the control list is split into.
const backColumns = 3

// Input describes one event's card run.
type Input struct {
	EventName  string
	EventType  domain.EventType
	DistanceKm int

	// StartAt is the resolved wall-clock start (event date + start time in
	// the chapter's zone).
	StartAt time.Time

	StartLocation string

	// Controls is the curated list; the implicit start and finish controls
	// are synthesized when missing.
	Controls []domain.Control

	OrganizerName  string
	OrganizerPhone string

	// RiderNames are paired two per sheet in the order given.
	RiderNames []string

	// ExtraBlankCards adds blank sheets for day-of walk-up registrations.
	ExtraBlankCards int
}

// ControlRow is one stamped line on the back of a card.
type ControlRow struct {
	Name       string
	DistanceKm float64
	OpensAt    time.Time
	ClosesAt   time.Time
}

// Slot is one rider's half of a sheet front; blank slots are printed for
// walk-up registration.
type Slot struct {
	RiderName string
	Blank     bool
}

// Sheet is one physical double-sided card pair.
type Sheet struct {
	Front [2]Slot
	// Back holds the control list split across print columns, column-major.
	Back [backColumns][]ControlRow
}

// CardSet is the full printable run for an event.
type CardSet struct {
	EventName  string
	EventType  domain.EventType
	DistanceKm int
	StartAt    time.Time

	OrganizerName  string
	OrganizerPhone string

	// AllowedHours/AllowedMinutes is the overall limit printed on the front.
	AllowedHours   int
	AllowedMinutes int

	Sheets []Sheet
}

// Generate computes the card set for one event.
func Generate(ctx context.Context, in Input) (CardSet, error) {
	_ = ctx
	if in.DistanceKm <= 0 {
		return CardSet{}, acp.ErrInvalidDistance
	}
	if !domain.ControlsStrictlyIncreasing(in.Controls) {
		return CardSet{}, fmt.Errorf("control distances must be strictly increasing")
	}

	hours, minutes, err := acp.AllowableTime(in.EventType, float64(in.DistanceKm))
	if err != nil {
		return CardSet{}, err
	}

	rows, err := controlRows(in)
	if err != nil {
		return CardSet{}, err
	}
	back := splitColumns(rows)

	set := CardSet{
		EventName:      in.EventName,
		EventType:      in.EventType,
		DistanceKm:     in.DistanceKm,
		StartAt:        in.StartAt,
		OrganizerName:  in.OrganizerName,
		OrganizerPhone: in.OrganizerPhone,
		AllowedHours:   hours,
		AllowedMinutes: minutes,
	}

	riders := append([]string(nil), in.RiderNames...)
	for i := 0; i < len(riders); i += 2 {
		sheet := Sheet{Back: back}
		sheet.Front[0] = Slot{RiderName: riders[i]}
		if i+1 < len(riders) {
			sheet.Front[1] = Slot{RiderName: riders[i+1]}
		} else {
			sheet.Front[1] = Slot{Blank: true}
		}
		set.Sheets = append(set.Sheets, sheet)
	}

	blanks := in.ExtraBlankCards
	if len(set.Sheets) == 0 && blanks == 0 {
		// A zero-rider event still prints at least one blank pair.
		blanks = 1
	}
	for i := 0; i < blanks; i++ {
		set.Sheets = append(set.Sheets, Sheet{
			Front: [2]Slot{{Blank: true}, {Blank: true}},
			Back:  back,
		})
	}
	return set, nil
}

func controlRows(in Input) ([]ControlRow, error) {
	total := float64(in.DistanceKm)
	controls := append([]domain.Control(nil), in.Controls...)

	if len(controls) == 0 || controls[0].DistanceKm > 0 {
		startName := "START"
		if in.StartLocation != "" {
			startName = "START - " + in.StartLocation
		}
		controls = append([]domain.Control{{Name: startName, DistanceKm: 0}}, controls...)
	}
	if controls[len(controls)-1].DistanceKm < total {
		controls = append(controls, domain.Control{Name: "FINISH", DistanceKm: total})
	}

	rows := make([]ControlRow, 0, len(controls))
	for _, c := range controls {
		open, clos, err := acp.ControlWindow(in.EventType, total, c.DistanceKm)
		if err != nil {
			return nil, fmt.Errorf("control %q at %.1f km: %w", c.Name, c.DistanceKm, err)
		}
		rows = append(rows, ControlRow{
			Name:       c.Name,
			DistanceKm: c.DistanceKm,
			OpensAt:    in.StartAt.Add(hoursToDuration(open)),
			ClosesAt:   in.StartAt.Add(hoursToDuration(clos)),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DistanceKm < rows[j].DistanceKm })
	return rows, nil
}

// splitColumns distributes rows across the back's print columns, keeping
// route order within and across columns.
func splitColumns(rows []ControlRow) [backColumns][]ControlRow {
	var out [backColumns][]ControlRow
	per := int(math.Ceil(float64(len(rows)) / float64(backColumns)))
	if per == 0 {
		return out
	}
	for i, row := range rows {
		col := i / per
		if col >= backColumns {
			col = backColumns - 1
		}
		out[col] = append(out[col], row)
	}
	return out
}

// hoursToDuration converts fractional hours rounded to the nearest minute,
// matching how the times print on the card.
func hoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h*60)) * time.Minute
}

// cleanImportedName strips planner prefixes such as "CTL" or "CONTROL".
func cleanImportedName(name string) string {
	s := strings.TrimSpace(name)
	upper := strings.ToUpper(s)
	for _, prefix := range []string{"CONTROLE", "CONTROL", "CTL"} {
		if strings.HasPrefix(upper, prefix) {
			s = strings.TrimLeft(s[len(prefix):], " :-.")
			break
		}
	}
	if s == "" {
		return strings.TrimSpace(name)
	}
	return s
}
