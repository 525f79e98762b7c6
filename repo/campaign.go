package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"phishtrack/entity"
	"phishtrack/pkg/goutil"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type Campaign struct {
	ID             *uint64
	Name           *string
	CampaignDesc   *string
	Status         *uint32
	TotalTargets   *uint64
	EmailsSent     *uint64
	EmailsOpened   *uint64
	LinksClicked   *uint64
	DataSubmitted  *uint64
	EmailsReported *uint64
	CompletionTime *uint64
	CreateTime     *uint64
	UpdateTime     *uint64
}

func (m *Campaign) TableName() string {
	return "campaign_tab"
}

func (m *Campaign) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

type CampaignFilter struct {
	ID   *uint64
	Name *string
}

type CampaignRepo interface {
	Create(ctx context.Context, campaign *entity.Campaign) (uint64, error)
	Get(ctx context.Context, f *CampaignFilter) (*entity.Campaign, error)
	GetMany(ctx context.Context, f *CampaignFilter, p *Pagination) ([]*entity.Campaign, *Pagination, error)
	Update(ctx context.Context, f *CampaignFilter, campaign *entity.Campaign) error
}

type campaignRepo struct {
	baseRepo  BaseRepo
	baseCache BaseCache
}

const campaignCachePrefix = "campaign"

func NewCampaignRepo(_ context.Context, baseRepo BaseRepo, baseCache BaseCache) CampaignRepo {
	return &campaignRepo{
		baseRepo:  baseRepo,
		baseCache: baseCache,
	}
}

func (r *campaignRepo) Create(ctx context.Context, campaign *entity.Campaign) (uint64, error) {
	campaignModel := ToCampaignModel(campaign)

	if err := r.baseRepo.Create(ctx, campaignModel); err != nil {
		return 0, err
	}
	campaign.ID = campaignModel.ID

	return campaignModel.GetID(), nil
}

func (r *campaignRepo) Get(ctx context.Context, f *CampaignFilter) (*entity.Campaign, error) {
	if f.ID != nil {
		if v, ok := r.baseCache.Get(ctx, campaignCachePrefix, *f.ID); ok {
			if campaign, ok := v.(*entity.Campaign); ok {
				return campaign, nil
			}
		}
	}

	campaignModel := new(Campaign)
	if err := r.baseRepo.Get(ctx, campaignModel, &Filter{
		Conditions: r.toConditions(f),
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}

	campaign := ToCampaign(campaignModel)
	r.baseCache.Set(ctx, campaignCachePrefix, campaign.GetID(), campaign)

	return campaign, nil
}

func (r *campaignRepo) GetMany(ctx context.Context, f *CampaignFilter, p *Pagination) ([]*entity.Campaign, *Pagination, error) {
	res, pNew, err := r.baseRepo.GetMany(ctx, new(Campaign), &Filter{
		Conditions: r.toConditions(f),
		Pagination: p,
	})
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]*entity.Campaign, 0, len(res))
	for _, m := range res {
		campaigns = append(campaigns, ToCampaign(m.(*Campaign)))
	}

	return campaigns, pNew, nil
}

func (r *campaignRepo) Update(ctx context.Context, f *CampaignFilter, campaign *entity.Campaign) error {
	campaignModel := ToCampaignModel(campaign)
	campaignModel.ID = f.ID

	if err := r.baseRepo.Update(ctx, campaignModel); err != nil {
		return err
	}

	if f.ID != nil {
		r.baseCache.Del(ctx, campaignCachePrefix, *f.ID)
	}

	return nil
}

func (r *campaignRepo) toConditions(f *CampaignFilter) []*Condition {
	return []*Condition{
		{
			Field:         "id",
			Value:         f.ID,
			Op:            OpEq,
			NextLogicalOp: LogicalOpAnd,
		},
		{
			Field: "name",
			Value: f.Name,
			Op:    OpEq,
		},
	}
}

func ToCampaignModel(campaign *entity.Campaign) *Campaign {
	return &Campaign{
		ID:             campaign.ID,
		Name:           campaign.Name,
		CampaignDesc:   campaign.CampaignDesc,
		Status:         goutil.Uint32(uint32(campaign.GetStatus())),
		TotalTargets:   campaign.TotalTargets,
		EmailsSent:     campaign.EmailsSent,
		EmailsOpened:   campaign.EmailsOpened,
		LinksClicked:   campaign.LinksClicked,
		DataSubmitted:  campaign.DataSubmitted,
		EmailsReported: campaign.EmailsReported,
		CompletionTime: campaign.CompletionTime,
		CreateTime:     campaign.CreateTime,
		UpdateTime:     campaign.UpdateTime,
	}
}

func ToCampaign(m *Campaign) *entity.Campaign {
	var status entity.CampaignStatus
	if m.Status != nil {
		status = entity.CampaignStatus(*m.Status)
	}

	return &entity.Campaign{
		ID:             m.ID,
		Name:           m.Name,
		CampaignDesc:   m.CampaignDesc,
		Status:         status,
		TotalTargets:   m.TotalTargets,
		EmailsSent:     m.EmailsSent,
		EmailsOpened:   m.EmailsOpened,
		LinksClicked:   m.LinksClicked,
		DataSubmitted:  m.DataSubmitted,
		EmailsReported: m.EmailsReported,
		CompletionTime: m.CompletionTime,
		CreateTime:     m.CreateTime,
		UpdateTime:     m.UpdateTime,
	}
}
