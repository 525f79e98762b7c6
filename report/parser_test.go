package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "id\tstatus\tip\tlatitude\tlongitude\tsend_date\treported\tmodified_date\temail\tfirst_name\tlast_name\tposition"

func row(fields ...string) string {
	return strings.Join(fields, "\t")
}

func fullRow(id, status, reported, modDate, email string) string {
	return row(id, status, "1.1.1.1", "0", "0", "2024-01-01", reported, modDate, email, "A", "B", "Sales")
}

func TestParse_HeaderOnly(t *testing.T) {
	_, err := Parse(header)
	require.ErrorIs(t, err, ErrMalformedReport)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("")
	require.ErrorIs(t, err, ErrMalformedReport)

	_, err = Parse("\n\n  \n")
	require.ErrorIs(t, err, ErrMalformedReport)
}

func TestParse_SingleRow(t *testing.T) {
	content := header + "\n" +
		row("1", "Clicked Link", "1.1.1.1", "0", "0", "2024-01-01", "false", "2024-01-02", "a@x.com", "A", "B", "Sales")

	rep, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, rep.Records, 1)

	rec := rep.Records[0]
	assert.Equal(t, "1", rec.ID)
	assert.Equal(t, "Clicked Link", rec.Status)
	assert.Equal(t, "a@x.com", rec.Email)
	assert.Equal(t, "2024-01-01", rec.SendDate)
	assert.Equal(t, "2024-01-02", rec.ModifiedDate)
	assert.Equal(t, "Sales", rec.Position)
}

func TestParse_SkipsShapeMismatch(t *testing.T) {
	// one field short of the header, must be dropped without error
	short := row("2", "Opened", "1.1.1.1", "0", "0", "2024-01-01", "false", "2024-01-02", "b@x.com", "A", "B")

	content := header + "\n" +
		fullRow("1", "Email Sent", "false", "", "a@x.com") + "\n" +
		short

	rep, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, rep.Records, 1)
	assert.Equal(t, "a@x.com", rep.Records[0].Email)
}

func TestParse_RequiredFields(t *testing.T) {
	content := header + "\n" +
		fullRow("", "Opened", "false", "2024-01-02", "a@x.com") + "\n" +
		fullRow("2", "Opened", "false", "2024-01-02", "") + "\n" +
		fullRow(" 3 ", "Opened", "false", "2024-01-02", " c@x.com ")

	rep, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, rep.Records, 1)

	for _, rec := range rep.Records {
		assert.NotEmpty(t, rec.ID)
		assert.NotEmpty(t, rec.Email)
	}
	assert.Equal(t, "3", rep.Records[0].ID)
	assert.Equal(t, "c@x.com", rep.Records[0].Email)
}

func TestParse_TrailingBlankLines(t *testing.T) {
	content := header + "\n" +
		fullRow("1", "Opened", "false", "2024-01-02", "a@x.com") + "\n\n\n"

	rep, err := Parse(content)
	require.NoError(t, err)
	assert.Len(t, rep.Records, 1)
}

func TestParse_Summary(t *testing.T) {
	content := header + "\n" +
		fullRow("1", "Email Sent", "false", "", "a@x.com") + "\n" +
		fullRow("2", "Opened", "false", "2024-01-02", "b@x.com") + "\n" +
		fullRow("3", "Clicked Link", "false", "2024-01-02", "c@x.com") + "\n" +
		fullRow("4", "Submitted Data", "TRUE", "2024-01-02", "d@x.com") + "\n" +
		fullRow("5", "", "false", "", "e@x.com")

	rep, err := Parse(content)
	require.NoError(t, err)

	s := rep.Summary
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 4, s.EmailsSent) // row 5 has empty status
	assert.Equal(t, 1, s.EmailsOpened)
	assert.Equal(t, 1, s.LinksClicked)
	assert.Equal(t, 1, s.DataSubmitted)
	assert.Equal(t, 1, s.EmailsReported)
}

func TestParse_SummaryOpenedContains(t *testing.T) {
	// inline summary counts any status containing "opened", case-insensitive
	content := header + "\n" +
		fullRow("1", "Re-Opened", "false", "2024-01-02", "a@x.com")

	rep, err := Parse(content)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Summary.EmailsOpened)
}

func TestParse_CommaDelimitedNotSupported(t *testing.T) {
	// the delimiter is fixed to tab; a comma-only file parses as one
	// header column and rows are all dropped by the id/email check
	content := "id,status,email\n1,Opened,a@x.com"

	rep, err := Parse(content)
	require.NoError(t, err)
	assert.Empty(t, rep.Records)
}
