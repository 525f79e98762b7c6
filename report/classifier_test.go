package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_StatusLabels(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   Status
	}{
		{"email sent", Record{Status: "Email Sent"}, StatusSent},
		{"opened", Record{Status: "Opened"}, StatusOpened},
		{"clicked link", Record{Status: "Clicked Link"}, StatusClicked},
		{"submitted data", Record{Status: "Submitted Data"}, StatusSubmitted},
		{"case and whitespace folded", Record{Status: "  CLICKED LINK  "}, StatusClicked},
		{"unrecognized falls back to sent", Record{Status: "Bounced"}, StatusSent},
		{"empty falls back to sent", Record{Status: ""}, StatusSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.record))
		})
	}
}

func TestClassify_ReportedOutranksEverything(t *testing.T) {
	// clicked then reported must classify as reported, never clicked
	rec := Record{Status: "Clicked Link", Reported: "true"}
	assert.Equal(t, StatusReported, Classify(rec))

	rec = Record{Status: "Submitted Data", Reported: "TRUE"}
	assert.Equal(t, StatusReported, Classify(rec))
}

func TestClassify_ReportedLiteralCasingOnly(t *testing.T) {
	// only "true" and "TRUE" count; other casings do not. This pins the
	// source export's literal comparison, intended or not.
	assert.Equal(t, StatusReported, Classify(Record{Reported: "true"}))
	assert.Equal(t, StatusReported, Classify(Record{Reported: "TRUE"}))

	assert.Equal(t, StatusClicked, Classify(Record{Status: "Clicked Link", Reported: "True"}))
	assert.Equal(t, StatusClicked, Classify(Record{Status: "Clicked Link", Reported: "TrUe"}))
	assert.Equal(t, StatusClicked, Classify(Record{Status: "Clicked Link", Reported: "false"}))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "reported", StatusReported.String())
	assert.Equal(t, "unknown", Status(0).String())
}
