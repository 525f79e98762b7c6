package entity

import (
	"time"

	"phishtrack/pkg/goutil"
	"phishtrack/report"
)

type CampaignStatus uint32

const (
	CampaignStatusUnknown CampaignStatus = iota
	CampaignStatusDraft
	CampaignStatusRunning
	CampaignStatusCompleted
	CampaignStatusFailed
)

// Campaign is one phishing-simulation exercise, tracked from draft
// through completion. Aggregate counters are overwritten from the
// freshly parsed report on every import, never accumulated.
type Campaign struct {
	ID           *uint64        `json:"id,omitempty"`
	Name         *string        `json:"name,omitempty"`
	CampaignDesc *string        `json:"campaign_desc,omitempty"`
	Status       CampaignStatus `json:"status,omitempty"`

	TotalTargets   *uint64 `json:"total_targets,omitempty"`
	EmailsSent     *uint64 `json:"emails_sent,omitempty"`
	EmailsOpened   *uint64 `json:"emails_opened,omitempty"`
	LinksClicked   *uint64 `json:"links_clicked,omitempty"`
	DataSubmitted  *uint64 `json:"data_submitted,omitempty"`
	EmailsReported *uint64 `json:"emails_reported,omitempty"`

	CompletionTime *uint64 `json:"completion_time,omitempty"`
	CreateTime     *uint64 `json:"create_time,omitempty"`
	UpdateTime     *uint64 `json:"update_time,omitempty"`
}

func NewCampaign(name, desc string) *Campaign {
	now := uint64(time.Now().Unix())
	return &Campaign{
		Name:         goutil.String(name),
		CampaignDesc: goutil.String(desc),
		Status:       CampaignStatusDraft,
		CreateTime:   goutil.Uint64(now),
		UpdateTime:   goutil.Uint64(now),
	}
}

// Complete applies an imported aggregate snapshot and transitions the
// campaign to completed. Re-importing overwrites the snapshot and the
// completion timestamp.
func (e *Campaign) Complete(stats report.Stats) {
	now := uint64(time.Now().Unix())

	e.TotalTargets = goutil.Uint64(stats.TotalTargets)
	e.EmailsSent = goutil.Uint64(stats.EmailsSent)
	e.EmailsOpened = goutil.Uint64(stats.EmailsOpened)
	e.LinksClicked = goutil.Uint64(stats.LinksClicked)
	e.DataSubmitted = goutil.Uint64(stats.DataSubmitted)
	e.EmailsReported = goutil.Uint64(stats.EmailsReported)
	e.Status = CampaignStatusCompleted
	e.CompletionTime = goutil.Uint64(now)
	e.UpdateTime = goutil.Uint64(now)
}

func (e *Campaign) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Campaign) GetName() string {
	if e != nil && e.Name != nil {
		return *e.Name
	}
	return ""
}

func (e *Campaign) GetStatus() CampaignStatus {
	if e != nil {
		return e.Status
	}
	return CampaignStatusUnknown
}

func (e *Campaign) GetTotalTargets() uint64 {
	if e != nil && e.TotalTargets != nil {
		return *e.TotalTargets
	}
	return 0
}

func (e *Campaign) GetEmailsReported() uint64 {
	if e != nil && e.EmailsReported != nil {
		return *e.EmailsReported
	}
	return 0
}

func (e *Campaign) GetCompletionTime() uint64 {
	if e != nil && e.CompletionTime != nil {
		return *e.CompletionTime
	}
	return 0
}

func (e *Campaign) IsCompleted() bool {
	return e.GetStatus() == CampaignStatusCompleted
}
