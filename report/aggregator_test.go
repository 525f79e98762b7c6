package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, Stats{}, s)
}

func TestAggregate_Counts(t *testing.T) {
	records := []Record{
		{ID: "1", Email: "a@x.com", Status: "Email Sent", SendDate: "2024-01-01"},
		{ID: "2", Email: "b@x.com", Status: "Opened", ModifiedDate: "2024-01-02"},
		{ID: "3", Email: "c@x.com", Status: "Clicked Link", ModifiedDate: "2024-01-02"},
		{ID: "4", Email: "d@x.com", Status: "Submitted Data", ModifiedDate: "2024-01-02", Reported: "true"},
		{ID: "5", Email: "e@x.com", Status: ""},
	}

	s := Aggregate(records)
	assert.Equal(t, uint64(5), s.TotalTargets)
	assert.Equal(t, uint64(4), s.EmailsSent)
	assert.Equal(t, uint64(3), s.EmailsOpened) // modified date set, status past "Email Sent"
	assert.Equal(t, uint64(1), s.LinksClicked)
	assert.Equal(t, uint64(1), s.DataSubmitted)
	assert.Equal(t, uint64(1), s.EmailsReported)
}

func TestAggregate_OpenedExcludesEmailSent(t *testing.T) {
	// a row with a modified date but status still "Email Sent" is not opened
	records := []Record{
		{ID: "1", Email: "a@x.com", Status: "Email Sent", ModifiedDate: "2024-01-02"},
	}
	s := Aggregate(records)
	assert.Equal(t, uint64(0), s.EmailsOpened)
}

func TestAggregate_CountsBoundedByTotal(t *testing.T) {
	records := []Record{
		{ID: "1", Email: "a@x.com", Status: "Clicked Link", ModifiedDate: "x", Reported: "true"},
		{ID: "2", Email: "b@x.com", Status: "Submitted Data", ModifiedDate: "x", Reported: "TRUE"},
		{ID: "3", Email: "c@x.com", Status: "Clicked Link"},
	}

	s := Aggregate(records)
	assert.LessOrEqual(t, s.LinksClicked, s.TotalTargets)
	assert.LessOrEqual(t, s.DataSubmitted, s.TotalTargets)
	assert.LessOrEqual(t, s.EmailsSent, s.TotalTargets)
	assert.LessOrEqual(t, s.EmailsOpened, s.TotalTargets)
	assert.LessOrEqual(t, s.EmailsReported, s.TotalTargets)
}

func TestRoundTrip_ClickedRow(t *testing.T) {
	content := header + "\n" +
		row("1", "Clicked Link", "1.1.1.1", "0", "0", "2024-01-01", "false", "2024-01-02", "a@x.com", "A", "B", "Sales")

	rep, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, rep.Records, 1)
	assert.Equal(t, "a@x.com", rep.Records[0].Email)

	assert.Equal(t, StatusClicked, Classify(rep.Records[0]))

	s := Aggregate(rep.Records)
	assert.Equal(t, uint64(1), s.TotalTargets)
	assert.Equal(t, uint64(1), s.LinksClicked)
	assert.Equal(t, uint64(0), s.EmailsReported)
}

func TestRoundTrip_ReportedOverrides(t *testing.T) {
	content := header + "\n" +
		row("1", "Clicked Link", "1.1.1.1", "0", "0", "2024-01-01", "TRUE", "2024-01-02", "a@x.com", "A", "B", "Sales")

	rep, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, rep.Records, 1)

	assert.Equal(t, StatusReported, Classify(rep.Records[0]))

	s := Aggregate(rep.Records)
	assert.Equal(t, uint64(1), s.EmailsReported)
}
