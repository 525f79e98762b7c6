package entity

// TargetEvent is one classified interaction outcome pushed to the
// analytics store after an import.
type TargetEvent struct {
	CampaignID uint64
	Email      string
	Status     string
	IP         string
	SentAt     string
	OccurredAt string
	ImportTime uint64
}
