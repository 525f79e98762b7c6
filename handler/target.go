package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"phishtrack/entity"
	"phishtrack/pkg/errutil"
	"phishtrack/pkg/validator"
	"phishtrack/repo"
)

type TargetHandler interface {
	GetCampaignTargets(ctx context.Context, req *GetCampaignTargetsRequest, res *GetCampaignTargetsResponse) error
}

type targetHandler struct {
	campaignRepo repo.CampaignRepo
	targetRepo   repo.TargetRepo
}

func NewTargetHandler(campaignRepo repo.CampaignRepo, targetRepo repo.TargetRepo) TargetHandler {
	return &targetHandler{
		campaignRepo: campaignRepo,
		targetRepo:   targetRepo,
	}
}

type GetCampaignTargetsRequest struct {
	ContextInfo

	CampaignID *uint64            `json:"campaign_id,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

type GetCampaignTargetsResponse struct {
	Targets    []*entity.Target   `json:"targets,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

var GetCampaignTargetsValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"campaign_id": &validator.UInt64{},
	"pagination":  PaginationValidator(true),
})

func (h *targetHandler) GetCampaignTargets(ctx context.Context, req *GetCampaignTargetsRequest, res *GetCampaignTargetsResponse) error {
	if err := GetCampaignTargetsValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	if _, err := h.campaignRepo.Get(ctx, &repo.CampaignFilter{
		ID: req.CampaignID,
	}); err != nil {
		if errors.Is(err, repo.ErrCampaignNotFound) {
			return errutil.NotFoundError(err)
		}
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	targets, pagination, err := h.targetRepo.GetMany(ctx, &repo.TargetFilter{
		CampaignID: req.CampaignID,
	}, req.Pagination)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get targets err: %v", err)
		return err
	}

	res.Targets = targets
	res.Pagination = pagination

	return nil
}
