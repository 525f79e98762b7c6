package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"phishtrack/entity"
)

var ErrTargetNotFound = errors.New("target not found")

type Target struct {
	ID          *uint64
	CampaignID  *uint64
	EmployeeID  *uint64
	Email       *string
	FirstName   *string
	LastName    *string
	Position    *string
	Status      *string
	SentAt      *string
	OpenedAt    *string
	ClickedAt   *string
	SubmittedAt *string
	ReportedAt  *string
	CreateTime  *uint64
	UpdateTime  *uint64
}

func (m *Target) TableName() string {
	return "target_tab"
}

func (m *Target) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

type TargetFilter struct {
	ID         *uint64
	CampaignID *uint64
	Email      *string
}

type TargetRepo interface {
	Create(ctx context.Context, target *entity.Target) (uint64, error)
	Get(ctx context.Context, f *TargetFilter) (*entity.Target, error)
	GetMany(ctx context.Context, f *TargetFilter, p *Pagination) ([]*entity.Target, *Pagination, error)
	Update(ctx context.Context, f *TargetFilter, target *entity.Target) error
	CountByCampaign(ctx context.Context, campaignID uint64) (uint64, error)
}

type targetRepo struct {
	baseRepo BaseRepo
}

func NewTargetRepo(_ context.Context, baseRepo BaseRepo) TargetRepo {
	return &targetRepo{
		baseRepo: baseRepo,
	}
}

func (r *targetRepo) Create(ctx context.Context, target *entity.Target) (uint64, error) {
	targetModel := ToTargetModel(target)

	if err := r.baseRepo.Create(ctx, targetModel); err != nil {
		return 0, err
	}
	target.ID = targetModel.ID

	return targetModel.GetID(), nil
}

func (r *targetRepo) Get(ctx context.Context, f *TargetFilter) (*entity.Target, error) {
	targetModel := new(Target)
	if err := r.baseRepo.Get(ctx, targetModel, &Filter{
		Conditions: r.toConditions(f),
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}

	return ToTarget(targetModel), nil
}

func (r *targetRepo) GetMany(ctx context.Context, f *TargetFilter, p *Pagination) ([]*entity.Target, *Pagination, error) {
	res, pNew, err := r.baseRepo.GetMany(ctx, new(Target), &Filter{
		Conditions: r.toConditions(f),
		Pagination: p,
	})
	if err != nil {
		return nil, nil, err
	}

	targets := make([]*entity.Target, 0, len(res))
	for _, m := range res {
		targets = append(targets, ToTarget(m.(*Target)))
	}

	return targets, pNew, nil
}

func (r *targetRepo) Update(ctx context.Context, f *TargetFilter, target *entity.Target) error {
	targetModel := ToTargetModel(target)
	targetModel.ID = f.ID

	return r.baseRepo.Update(ctx, targetModel)
}

func (r *targetRepo) CountByCampaign(ctx context.Context, campaignID uint64) (uint64, error) {
	return r.baseRepo.Count(ctx, new(Target), &Filter{
		Conditions: []*Condition{
			{
				Field: "campaign_id",
				Value: &campaignID,
				Op:    OpEq,
			},
		},
	})
}

func (r *targetRepo) toConditions(f *TargetFilter) []*Condition {
	return []*Condition{
		{
			Field:         "id",
			Value:         f.ID,
			Op:            OpEq,
			NextLogicalOp: LogicalOpAnd,
		},
		{
			Field:         "campaign_id",
			Value:         f.CampaignID,
			Op:            OpEq,
			NextLogicalOp: LogicalOpAnd,
		},
		{
			Field: "email",
			Value: f.Email,
			Op:    OpEq,
		},
	}
}

func ToTargetModel(target *entity.Target) *Target {
	return &Target{
		ID:          target.ID,
		CampaignID:  target.CampaignID,
		EmployeeID:  target.EmployeeID,
		Email:       target.Email,
		FirstName:   target.FirstName,
		LastName:    target.LastName,
		Position:    target.Position,
		Status:      target.Status,
		SentAt:      target.SentAt,
		OpenedAt:    target.OpenedAt,
		ClickedAt:   target.ClickedAt,
		SubmittedAt: target.SubmittedAt,
		ReportedAt:  target.ReportedAt,
		CreateTime:  target.CreateTime,
		UpdateTime:  target.UpdateTime,
	}
}

func ToTarget(m *Target) *entity.Target {
	return &entity.Target{
		ID:          m.ID,
		CampaignID:  m.CampaignID,
		EmployeeID:  m.EmployeeID,
		Email:       m.Email,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Position:    m.Position,
		Status:      m.Status,
		SentAt:      m.SentAt,
		OpenedAt:    m.OpenedAt,
		ClickedAt:   m.ClickedAt,
		SubmittedAt: m.SubmittedAt,
		ReportedAt:  m.ReportedAt,
		CreateTime:  m.CreateTime,
		UpdateTime:  m.UpdateTime,
	}
}
