package results

import (
	"io"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

// CollectionReport is the aggregate outcome of one collection run. It is a
// value, not an exception: callers inspect counts and per-rider errors.
type CollectionReport struct {
	EventID domain.EventID

	ResultsCreated int
	EmailsSent     int

	// Errors holds one human-readable string per failed rider step.
	Errors []string
}

// SubmissionView is what the token holder sees: their result joined with the
// event and rider identity, plus whether submission is still open.
type SubmissionView struct {
	Token domain.SubmissionToken

	EventID     domain.EventID
	EventName   string
	EventDate   time.Time
	DistanceKm  int
	EventStatus domain.EventStatus
	ChapterName string

	RiderID   domain.RiderID
	RiderName string

	Status     domain.ResultStatus
	FinishTime *string

	GPXURL         *string
	GPXPath        *string
	CardPhotoPaths []string
	Notes          *string

	SubmittedAt *time.Time

	CanSubmit bool
}

// SubmitInput carries a rider's self-reported outcome. Submission overwrites
// the prior values wholesale (last write wins), so fields are plain.
type SubmitInput struct {
	Status     domain.ResultStatus
	FinishTime *string
	GPXURL     *string
	Notes      *string
}

// FileType distinguishes the two kinds of result evidence.
type FileType string

const (
	FileTypeGPX       FileType = "gpx"
	FileTypeCardPhoto FileType = "card-photo"
)

// AttachFileInput describes one uploaded evidence file.
type AttachFileInput struct {
	FileType    FileType
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
