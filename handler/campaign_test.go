package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishtrack/entity"
	"phishtrack/pkg/goutil"
)

func newCampaignFixture(t *testing.T) (CampaignHandler, *fakeCampaignRepo, *fakeAuditRepo, *entity.User) {
	t.Helper()

	campaignRepo := &fakeCampaignRepo{campaigns: make(map[uint64]*entity.Campaign)}
	auditRepo := new(fakeAuditRepo)

	user, err := entity.NewUser("sec.ops@example.com", "correct-horse", "Sec Ops")
	require.NoError(t, err)
	user.ID = goutil.Uint64(1)

	return NewCampaignHandler(campaignRepo, auditRepo), campaignRepo, auditRepo, user
}

func TestCreateCampaign(t *testing.T) {
	h, campaignRepo, auditRepo, user := newCampaignFixture(t)

	req := &CreateCampaignRequest{
		Name:         goutil.String("q3-awareness"),
		CampaignDesc: goutil.String("Q3 awareness run"),
	}
	req.SetUser(user)
	res := new(CreateCampaignResponse)

	require.NoError(t, h.CreateCampaign(context.Background(), req, res))
	require.NotNil(t, res.Campaign)
	assert.Equal(t, entity.CampaignStatusDraft, res.Campaign.GetStatus())
	assert.Len(t, campaignRepo.campaigns, 1)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, "create_campaign", auditRepo.entries[0].Action)
	assert.Equal(t, user.GetID(), auditRepo.entries[0].ActorID)

	// duplicate name rejected
	err := h.CreateCampaign(context.Background(), req, new(CreateCampaignResponse))
	require.Error(t, err)
	assert.Len(t, campaignRepo.campaigns, 1)
}

func TestCreateCampaign_InvalidName(t *testing.T) {
	h, campaignRepo, _, user := newCampaignFixture(t)

	req := &CreateCampaignRequest{
		Name: goutil.String("bad name !!"),
	}
	req.SetUser(user)

	require.Error(t, h.CreateCampaign(context.Background(), req, new(CreateCampaignResponse)))
	assert.Empty(t, campaignRepo.campaigns)
}

func TestGetCampaign(t *testing.T) {
	h, campaignRepo, _, user := newCampaignFixture(t)

	campaign := entity.NewCampaign("q3-awareness", "")
	_, err := campaignRepo.Create(context.Background(), campaign)
	require.NoError(t, err)

	req := &GetCampaignRequest{
		CampaignID: campaign.ID,
	}
	req.SetUser(user)
	res := new(GetCampaignResponse)

	require.NoError(t, h.GetCampaign(context.Background(), req, res))
	assert.Equal(t, campaign.GetID(), res.Campaign.GetID())

	// unknown campaign
	missing := &GetCampaignRequest{
		CampaignID: goutil.Uint64(999),
	}
	missing.SetUser(user)
	require.Error(t, h.GetCampaign(context.Background(), missing, new(GetCampaignResponse)))
}
