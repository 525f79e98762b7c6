package handler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"phishtrack/entity"
	"phishtrack/pkg/errutil"
	"phishtrack/pkg/goutil"
	"phishtrack/pkg/validator"
	"phishtrack/repo"
)

type CampaignHandler interface {
	CreateCampaign(ctx context.Context, req *CreateCampaignRequest, res *CreateCampaignResponse) error
	GetCampaign(ctx context.Context, req *GetCampaignRequest, res *GetCampaignResponse) error
	GetCampaigns(ctx context.Context, req *GetCampaignsRequest, res *GetCampaignsResponse) error
}

type campaignHandler struct {
	campaignRepo repo.CampaignRepo
	auditRepo    repo.AuditRepo
}

func NewCampaignHandler(campaignRepo repo.CampaignRepo, auditRepo repo.AuditRepo) CampaignHandler {
	return &campaignHandler{
		campaignRepo: campaignRepo,
		auditRepo:    auditRepo,
	}
}

type CreateCampaignRequest struct {
	ContextInfo

	Name         *string `json:"name,omitempty"`
	CampaignDesc *string `json:"campaign_desc,omitempty"`
}

func (r *CreateCampaignRequest) GetName() string {
	if r != nil && r.Name != nil {
		return *r.Name
	}
	return ""
}

func (r *CreateCampaignRequest) GetCampaignDesc() string {
	if r != nil && r.CampaignDesc != nil {
		return *r.CampaignDesc
	}
	return ""
}

type CreateCampaignResponse struct {
	Campaign *entity.Campaign `json:"campaign,omitempty"`
}

var CreateCampaignValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo":   ContextInfoValidator,
	"name":          CampaignNameValidator(false),
	"campaign_desc": CampaignDescValidator(true),
})

func (h *campaignHandler) CreateCampaign(ctx context.Context, req *CreateCampaignRequest, res *CreateCampaignResponse) error {
	if err := CreateCampaignValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	_, err := h.campaignRepo.Get(ctx, &repo.CampaignFilter{
		Name: req.Name,
	})
	if err == nil {
		return errutil.ConflictError(errors.New("campaign already exists"))
	}

	if !errors.Is(err, repo.ErrCampaignNotFound) {
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	campaign := entity.NewCampaign(req.GetName(), req.GetCampaignDesc())

	id, err := h.campaignRepo.Create(ctx, campaign)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("create campaign err: %v", err)
		return err
	}

	campaign.ID = goutil.Uint64(id)
	res.Campaign = campaign

	// audit trail is best effort
	if err := h.auditRepo.Record(ctx, &entity.AuditEntry{
		Action:     "create_campaign",
		ActorID:    req.GetUserID(),
		Resource:   "campaign",
		ResourceID: campaign.GetID(),
		Time:       uint64(time.Now().Unix()),
	}); err != nil {
		log.Ctx(ctx).Error().Msgf("record audit entry err: %v", err)
	}

	return nil
}

type GetCampaignRequest struct {
	ContextInfo

	CampaignID *uint64 `schema:"campaign_id,omitempty"`
}

type GetCampaignResponse struct {
	Campaign *entity.Campaign `json:"campaign,omitempty"`
}

var GetCampaignValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"campaign_id": &validator.UInt64{},
})

func (h *campaignHandler) GetCampaign(ctx context.Context, req *GetCampaignRequest, res *GetCampaignResponse) error {
	if err := GetCampaignValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	campaign, err := h.campaignRepo.Get(ctx, &repo.CampaignFilter{
		ID: req.CampaignID,
	})
	if err != nil {
		if errors.Is(err, repo.ErrCampaignNotFound) {
			return errutil.NotFoundError(err)
		}
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	res.Campaign = campaign

	return nil
}

type GetCampaignsRequest struct {
	ContextInfo

	Name       *string            `json:"name,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

type GetCampaignsResponse struct {
	Campaigns  []*entity.Campaign `json:"campaigns,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

var GetCampaignsValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"name":        CampaignNameValidator(true),
	"pagination":  PaginationValidator(true),
})

func (h *campaignHandler) GetCampaigns(ctx context.Context, req *GetCampaignsRequest, res *GetCampaignsResponse) error {
	if err := GetCampaignsValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	campaigns, pagination, err := h.campaignRepo.GetMany(ctx, &repo.CampaignFilter{
		Name: req.Name,
	}, req.Pagination)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaigns err: %v", err)
		return err
	}

	res.Campaigns = campaigns
	res.Pagination = pagination

	return nil
}
