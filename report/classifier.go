package report

import "strings"

// Status is the single derived outcome of one target.
type Status uint32

const (
	StatusSent Status = iota + 1
	StatusOpened
	StatusClicked
	StatusSubmitted
	StatusReported
)

var statusNames = map[Status]string{
	StatusSent:      "sent",
	StatusOpened:    "opened",
	StatusClicked:   "clicked",
	StatusSubmitted: "submitted",
	StatusReported:  "reported",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Classify maps a record to exactly one Status. The order is a priority
// cascade: a target that clicked and later reported is reported, never
// clicked.
//
// The reported flag matches the literal strings "true" and "TRUE" only.
// Other casings ("True") do not count as reported; this mirrors the
// source-of-truth export behavior and is pinned by tests.
func Classify(r Record) Status {
	if r.Reported == "true" || r.Reported == "TRUE" {
		return StatusReported
	}

	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case "submitted data":
		return StatusSubmitted
	case "clicked link":
		return StatusClicked
	case "opened":
		return StatusOpened
	case "email sent":
		return StatusSent
	}

	// unrecognized labels fall back to sent
	return StatusSent
}
