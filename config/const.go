package config

import "time"

const (
	PathHealthCheck = "/"

	PathCreateUser = "/create_user"
	PathLogIn      = "/log_in"
	PathLogOut     = "/log_out"

	PathCreateCampaign = "/create_campaign"
	PathGetCampaigns   = "/get_campaigns"
	PathGetCampaign    = "/get_campaign"

	PathGetCampaignTargets = "/get_campaign_targets"

	PathCreateResultImportTask = "/create_result_import_task"
	PathGetResultImportTasks   = "/get_result_import_tasks"
)

const (
	DefaultPort   = 9090
	LogLevelDebug = "DEBUG"
)

const (
	SessionExpiry = 30 * 24 * time.Hour
)

var (
	EmptyJson = []byte("{}")
)
