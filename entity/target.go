package entity

import (
	"time"

	"phishtrack/pkg/goutil"
	"phishtrack/report"
)

// PlaceholderEmployeeID marks a target whose employee identity is not
// known from the imported report alone.
const PlaceholderEmployeeID uint64 = 0

// Target is one recipient of a simulated phishing email within a
// campaign, keyed by (campaign_id, email). Interaction timestamps hold
// the raw source-format strings from the report.
type Target struct {
	ID         *uint64 `json:"id,omitempty"`
	CampaignID *uint64 `json:"campaign_id,omitempty"`
	EmployeeID *uint64 `json:"employee_id,omitempty"`
	Email      *string `json:"email,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Position   *string `json:"position,omitempty"`

	Status      *string `json:"status,omitempty"`
	SentAt      *string `json:"sent_at,omitempty"`
	OpenedAt    *string `json:"opened_at,omitempty"`
	ClickedAt   *string `json:"clicked_at,omitempty"`
	SubmittedAt *string `json:"submitted_at,omitempty"`
	ReportedAt  *string `json:"reported_at,omitempty"`

	CreateTime *uint64 `json:"create_time,omitempty"`
	UpdateTime *uint64 `json:"update_time,omitempty"`
}

// NewTargetFromRecord builds a fresh target row for a record with no
// matching existing target. The employee reference is the placeholder
// sentinel.
func NewTargetFromRecord(campaignID uint64, rec report.Record, status report.Status) *Target {
	now := uint64(time.Now().Unix())

	t := &Target{
		CampaignID: goutil.Uint64(campaignID),
		EmployeeID: goutil.Uint64(PlaceholderEmployeeID),
		Email:      goutil.String(rec.Email),
		FirstName:  goutil.String(rec.FirstName),
		LastName:   goutil.String(rec.LastName),
		Position:   goutil.String(rec.Position),
		CreateTime: goutil.Uint64(now),
		UpdateTime: goutil.Uint64(now),
	}
	t.ApplyOutcome(rec, status)

	return t
}

// ApplyOutcome merges a classified report row into the target: status,
// the timestamp of the classified outcome from the row's modified date,
// and sent_at whenever the row carries a send date.
func (e *Target) ApplyOutcome(rec report.Record, status report.Status) {
	e.Status = goutil.String(status.String())

	if rec.SendDate != "" {
		e.SentAt = goutil.String(rec.SendDate)
	}

	switch status {
	case report.StatusOpened:
		e.OpenedAt = goutil.String(rec.ModifiedDate)
	case report.StatusClicked:
		e.ClickedAt = goutil.String(rec.ModifiedDate)
	case report.StatusSubmitted:
		e.SubmittedAt = goutil.String(rec.ModifiedDate)
	case report.StatusReported:
		e.ReportedAt = goutil.String(rec.ModifiedDate)
	}

	e.UpdateTime = goutil.Uint64(uint64(time.Now().Unix()))
}

func (e *Target) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Target) GetCampaignID() uint64 {
	if e != nil && e.CampaignID != nil {
		return *e.CampaignID
	}
	return 0
}

func (e *Target) GetEmployeeID() uint64 {
	if e != nil && e.EmployeeID != nil {
		return *e.EmployeeID
	}
	return 0
}

func (e *Target) GetEmail() string {
	if e != nil && e.Email != nil {
		return *e.Email
	}
	return ""
}

func (e *Target) GetStatus() string {
	if e != nil && e.Status != nil {
		return *e.Status
	}
	return ""
}

func (e *Target) GetSentAt() string {
	if e != nil && e.SentAt != nil {
		return *e.SentAt
	}
	return ""
}

func (e *Target) GetOpenedAt() string {
	if e != nil && e.OpenedAt != nil {
		return *e.OpenedAt
	}
	return ""
}

func (e *Target) GetClickedAt() string {
	if e != nil && e.ClickedAt != nil {
		return *e.ClickedAt
	}
	return ""
}

func (e *Target) GetSubmittedAt() string {
	if e != nil && e.SubmittedAt != nil {
		return *e.SubmittedAt
	}
	return ""
}

func (e *Target) GetReportedAt() string {
	if e != nil && e.ReportedAt != nil {
		return *e.ReportedAt
	}
	return ""
}
