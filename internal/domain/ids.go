package domain

// EventID is an internal identifier for a scheduled ride instance.
type EventID string

// RiderID is an internal identifier for a rider record.
type RiderID string

// RegistrationID is an internal identifier for a registration record.
type RegistrationID string

// ResultID is an internal identifier for a per-rider result record.
type ResultID string

// RouteID is an internal identifier for a route record.
type RouteID string

// ChapterID is an internal identifier for a chapter record.
type ChapterID string

// SubmissionToken is the opaque capability credential that grants write
// access to exactly one result. It is generated once, never rotated.
type SubmissionToken string
