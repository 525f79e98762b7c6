package report

import (
	"errors"
	"strings"
)

// ErrMalformedReport is returned when the input has no header plus at
// least one data line.
var ErrMalformedReport = errors.New("malformed report: expect a header line and at least one data line")

// Summary is computed inline from the accepted records. Its opened and
// reported definitions differ from Stats (see aggregator.go); both are
// kept under distinct names on purpose.
type Summary struct {
	Total          int
	EmailsSent     int
	EmailsOpened   int
	LinksClicked   int
	DataSubmitted  int
	EmailsReported int
}

// Report is the parsed form of one uploaded results file.
type Report struct {
	Records []Record
	Summary Summary
}

// Parse turns raw tab-delimited report content into accepted records.
//
// The first line is the column header. A data line whose tab-split field
// count differs from the header count is dropped silently, as is any row
// missing an id or email. The delimiter is fixed to tab even though
// exports are conventionally named .csv; comma-only files will not
// split correctly.
func Parse(content string) (*Report, error) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) < 2 {
		return nil, ErrMalformedReport
	}

	header := strings.Split(lines[0], "\t")

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			// export artifact, skip the row
			continue
		}

		rec := newRecord(fields)
		if rec.ID == "" || rec.Email == "" {
			continue
		}

		records = append(records, rec)
	}

	return &Report{
		Records: records,
		Summary: summarize(records),
	}, nil
}

func newRecord(fields []string) Record {
	at := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	return Record{
		ID:           at(colID),
		Status:       at(colStatus),
		IP:           at(colIP),
		Latitude:     at(colLatitude),
		Longitude:    at(colLongitude),
		SendDate:     at(colSendDate),
		Reported:     at(colReported),
		ModifiedDate: at(colModifiedDate),
		Email:        at(colEmail),
		FirstName:    at(colFirstName),
		LastName:     at(colLastName),
		Position:     at(colPosition),
	}
}

func summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Status != "" {
			s.EmailsSent++
		}
		if r.Status == "Opened" || strings.Contains(strings.ToLower(r.Status), "opened") {
			s.EmailsOpened++
		}
		if r.Status == "Clicked Link" {
			s.LinksClicked++
		}
		if r.Status == "Submitted Data" {
			s.DataSubmitted++
		}
		if strings.EqualFold(r.Reported, "true") {
			s.EmailsReported++
		}
	}
	return s
}
