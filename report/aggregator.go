package report

import "strings"

// Stats is the aggregate snapshot persisted onto the campaign.
//
// EmailsOpened here counts rows whose modified date is set and whose
// status moved past "Email Sent" — a weaker definition than
// Summary.EmailsOpened. The two definitions come from different call
// paths in the source system and are deliberately not unified.
type Stats struct {
	TotalTargets   uint64
	EmailsSent     uint64
	EmailsOpened   uint64
	LinksClicked   uint64
	DataSubmitted  uint64
	EmailsReported uint64
}

// Aggregate computes Stats from the full accepted record set.
func Aggregate(records []Record) Stats {
	s := Stats{TotalTargets: uint64(len(records))}
	for _, r := range records {
		if strings.TrimSpace(r.Status) != "" {
			s.EmailsSent++
		}
		if r.ModifiedDate != "" && r.Status != "Email Sent" {
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
