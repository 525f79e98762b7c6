package handler

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"phishtrack/dep"
	"phishtrack/entity"
	"phishtrack/pkg/errutil"
	"phishtrack/pkg/goutil"
	"phishtrack/pkg/mq"
	"phishtrack/pkg/router"
	"phishtrack/pkg/validator"
	"phishtrack/repo"
	"phishtrack/report"
)

const maxReportFileSize = 5 << 24

var reportContentTypes = []string{"text/plain", "text/csv", "text/tab-separated-values"}

// Producer dispatches import notifications to the worker.
type Producer interface {
	SendMessage(msg *mq.Message) error
}

type TaskHandler interface {
	CreateResultImportTask(ctx context.Context, req *CreateResultImportTaskRequest, res *CreateResultImportTaskResponse) error
	GetResultImportTasks(ctx context.Context, req *GetResultImportTasksRequest, res *GetResultImportTasksResponse) error
	ProcessTask(ctx context.Context, taskID uint64) error
}

type taskHandler struct {
	campaignRepo repo.CampaignRepo
	targetRepo   repo.TargetRepo
	taskRepo     repo.TaskRepo
	userRepo     repo.UserRepo
	fileRepo     repo.FileRepo
	eventRepo    repo.EventRepo
	auditRepo    repo.AuditRepo
	emailService dep.EmailService
	producer     Producer
	sender       string
}

func NewTaskHandler(
	campaignRepo repo.CampaignRepo,
	targetRepo repo.TargetRepo,
	taskRepo repo.TaskRepo,
	userRepo repo.UserRepo,
	fileRepo repo.FileRepo,
	eventRepo repo.EventRepo,
	auditRepo repo.AuditRepo,
	emailService dep.EmailService,
	producer Producer,
	sender string,
) TaskHandler {
	return &taskHandler{
		campaignRepo: campaignRepo,
		targetRepo:   targetRepo,
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		fileRepo:     fileRepo,
		eventRepo:    eventRepo,
		auditRepo:    auditRepo,
		emailService: emailService,
		producer:     producer,
		sender:       sender,
	}
}

type CreateResultImportTaskRequest struct {
	ContextInfo

	CampaignID *uint64 `schema:"campaign_id,omitempty"`

	*router.FileMeta `json:"file_meta,omitempty"`
}

func (r *CreateResultImportTaskRequest) GetCampaignID() uint64 {
	if r != nil && r.CampaignID != nil {
		return *r.CampaignID
	}
	return 0
}

type CreateResultImportTaskResponse struct {
	Task *entity.Task `json:"task,omitempty"`
}

var CreateResultImportTaskValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"campaign_id": &validator.UInt64{},
	"file_meta":   FileInfoValidator(false, maxReportFileSize, reportContentTypes),
})

func (h *taskHandler) CreateResultImportTask(ctx context.Context, req *CreateResultImportTaskRequest, res *CreateResultImportTaskResponse) error {
	if err := CreateResultImportTaskValidator.Validate(req); err != nil {
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

	fileName := req.FileHeader.Filename
	fileID, err := h.fileRepo.Upload(ctx, h.generateFileKey(fileName), req.File)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("upload file %s err: %v", fileName, err)
		return err
	}

	now := uint64(time.Now().Unix())
	task := &entity.Task{
		CampaignID: campaign.ID,
		Status:     entity.TaskStatusPending,
		TaskType:   entity.TaskTypeResultImport,
		ExtInfo: &entity.TaskExtInfo{
			FileID:      goutil.String(fileID),
			OriFileName: goutil.String(fileName),
			Size:        goutil.Uint64(uint64(req.FileHeader.Size)),
		},
		CreatorID:  goutil.Uint64(req.GetUserID()),
		CreateTime: goutil.Uint64(now),
		UpdateTime: goutil.Uint64(now),
	}

	id, err := h.taskRepo.Create(ctx, task)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("create task err: %v", err)
		return err
	}
	task.ID = goutil.Uint64(id)

	// the pending-imports sweeper re-dispatches tasks that never made
	// it onto the queue
	if err := h.producer.SendMessage(&mq.Message{
		Payload: mq.PayloadNotifyImportTask,
		Key:     strconv.FormatUint(id, 10),
		Body: &mq.NotifyImportTask{
			TaskID: task.ID,
		},
	}); err != nil {
		log.Ctx(ctx).Error().Msgf("send import task notification err: %v, task_id: %v", err, id)
	}

	res.Task = task

	return nil
}

type GetResultImportTasksRequest struct {
	ContextInfo

	CampaignID *uint64            `json:"campaign_id,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

type GetResultImportTasksResponse struct {
	Tasks      []*entity.Task     `json:"tasks,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

var GetResultImportTasksValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"campaign_id": &validator.UInt64{
		Optional: true,
	},
	"pagination": PaginationValidator(true),
})

func (h *taskHandler) GetResultImportTasks(ctx context.Context, req *GetResultImportTasksRequest, res *GetResultImportTasksResponse) error {
	if err := GetResultImportTasksValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	tasks, pagination, err := h.taskRepo.GetMany(ctx, &repo.TaskFilter{
		CampaignID: req.CampaignID,
	}, req.Pagination)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get tasks err: %v", err)
		return err
	}

	res.Tasks = tasks
	res.Pagination = pagination

	return nil
}

// ProcessTask runs one result import end to end: download, parse,
// reconcile targets, snapshot campaign counters. A parse failure fails
// the task before any target or campaign write. Target reconciliation
// is row by row, in file order, without a wrapping transaction.
func (h *taskHandler) ProcessTask(ctx context.Context, taskID uint64) error {
	taskFilter := &repo.TaskFilter{
		ID: goutil.Uint64(taskID),
	}

	task, err := h.taskRepo.Get(ctx, taskFilter)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get task err: %v, task_id: %v", err, taskID)
		return err
	}

	if !task.IsPending() {
		log.Ctx(ctx).Info().Msgf("task is not pending, task_id: %v, status: %v", taskID, task.GetStatus())
		return nil
	}

	log.Ctx(ctx).Info().Msgf("processing task: %v", taskID)

	var parsedRows uint64
	defer func() {
		taskStatus := entity.TaskStatusSuccess
		if err != nil {
			taskStatus = entity.TaskStatusFailed
		}

		log.Ctx(ctx).Info().Msgf("task done, task_id: %v, status: %v", taskID, taskStatus)

		task.Update(&entity.Task{
			Status: taskStatus,
			ExtInfo: &entity.TaskExtInfo{
				ParsedRows: goutil.Uint64(parsedRows),
			},
		})
		if err := h.taskRepo.Update(ctx, taskFilter, task); err != nil {
			log.Ctx(ctx).Error().Msgf("update task status err: %v, status: %v", err, taskStatus)
		}
	}()

	campaign, err := h.campaignRepo.Get(ctx, &repo.CampaignFilter{
		ID: task.CampaignID,
	})
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	var b []byte
	b, err = h.fileRepo.Download(ctx, task.GetFileID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("download file %s err: %v", task.GetFileID(), err)
		return err
	}

	task.Update(&entity.Task{
		Status: entity.TaskStatusProcessing,
	})
	if err = h.taskRepo.Update(ctx, taskFilter, task); err != nil {
		log.Ctx(ctx).Error().Msgf("update task to processing err: %v", err)
		return err
	}

	var rep *report.Report
	rep, err = report.Parse(string(b))
	if err != nil {
		log.Ctx(ctx).Error().Msgf("parse report err: %v", err)
		return err
	}
	parsedRows = uint64(len(rep.Records))

	// snapshot first, then per-row reconciliation
	stats := report.Aggregate(rep.Records)
	campaign.Complete(stats)

	if err = h.campaignRepo.Update(ctx, &repo.CampaignFilter{
		ID: campaign.ID,
	}, campaign); err != nil {
		log.Ctx(ctx).Error().Msgf("update campaign err: %v", err)
		return err
	}

	statuses := make([]report.Status, len(rep.Records))
	for i, rec := range rep.Records {
		statuses[i] = report.Classify(rec)

		if err = h.reconcileTarget(ctx, campaign.GetID(), rec, statuses[i]); err != nil {
			log.Ctx(ctx).Error().Msgf("reconcile target err: %v, email: %v", err, rec.Email)
			return err
		}
	}

	h.pushEvents(ctx, campaign.GetID(), rep.Records, statuses)
	h.recordAudit(ctx, task, campaign, parsedRows)
	h.sendSummaryEmail(ctx, task, campaign, rep.Summary)

	return nil
}

// reconcileTarget upserts one report row keyed by (campaign_id, email).
func (h *taskHandler) reconcileTarget(ctx context.Context, campaignID uint64, rec report.Record, status report.Status) error {
	target, err := h.targetRepo.Get(ctx, &repo.TargetFilter{
		CampaignID: goutil.Uint64(campaignID),
		Email:      goutil.String(rec.Email),
	})
	if err != nil {
		if errors.Is(err, repo.ErrTargetNotFound) {
			_, err = h.targetRepo.Create(ctx, entity.NewTargetFromRecord(campaignID, rec, status))
			return err
		}
		return err
	}

	target.ApplyOutcome(rec, status)

	return h.targetRepo.Update(ctx, &repo.TargetFilter{
		ID: target.ID,
	}, target)
}

// pushEvents forwards classified outcomes to the analytics store,
// best effort.
func (h *taskHandler) pushEvents(ctx context.Context, campaignID uint64, records []report.Record, statuses []report.Status) {
	importTime := uint64(time.Now().Unix())

	events := make([]*entity.TargetEvent, 0, len(records))
	for i, rec := range records {
		events = append(events, &entity.TargetEvent{
			CampaignID: campaignID,
			Email:      rec.Email,
			Status:     statuses[i].String(),
			IP:         rec.IP,
			SentAt:     rec.SendDate,
			OccurredAt: rec.ModifiedDate,
			ImportTime: importTime,
		})
	}

	if err := h.eventRepo.Insert(ctx, events); err != nil {
		log.Ctx(ctx).Error().Msgf("insert target events err: %v", err)
	}
}

func (h *taskHandler) recordAudit(ctx context.Context, task *entity.Task, campaign *entity.Campaign, parsedRows uint64) {
	if err := h.auditRepo.Record(ctx, &entity.AuditEntry{
		Action:     "import_results",
		ActorID:    task.GetCreatorID(),
		Resource:   "campaign",
		ResourceID: campaign.GetID(),
		Detail:     fmt.Sprintf("task_id: %v, parsed_rows: %v", task.GetID(), parsedRows),
		Time:       uint64(time.Now().Unix()),
	}); err != nil {
		log.Ctx(ctx).Error().Msgf("record audit entry err: %v", err)
	}
}

func (h *taskHandler) sendSummaryEmail(ctx context.Context, task *entity.Task, campaign *entity.Campaign, summary report.Summary) {
	if h.sender == "" {
		return
	}

	creator, err := h.userRepo.GetByID(ctx, task.GetCreatorID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get task creator err: %v", err)
		return
	}

	html := fmt.Sprintf(
		"<p>Results import for campaign <b>%s</b> is done.</p>"+
			"<ul><li>Targets: %d</li><li>Emails sent: %d</li><li>Emails opened: %d</li>"+
			"<li>Links clicked: %d</li><li>Data submitted: %d</li><li>Emails reported: %d</li></ul>",
		campaign.GetName(), summary.Total, summary.EmailsSent, summary.EmailsOpened,
		summary.LinksClicked, summary.DataSubmitted, summary.EmailsReported,
	)

	if err := h.emailService.SendEmail(ctx, &dep.SendSmtpEmail{
		From: &dep.Sender{
			Email: h.sender,
			Name:  "PhishTrack",
		},
		To: []*dep.Receiver{
			{
				Email: creator.GetEmail(),
				Name:  creator.GetDisplayName(),
			},
		},
		Subject:     fmt.Sprintf("Import complete: %s", campaign.GetName()),
		HtmlContent: html,
	}); err != nil {
		log.Ctx(ctx).Error().Msgf("send summary email err: %v", err)
	}
}

func (h *taskHandler) generateFileKey(fileName string) string {
	hashKey := fmt.Sprintf("%s-%d", fileName, time.Now().Unix())

	hFn := md5.New()
	hFn.Write([]byte(hashKey))

	return fmt.Sprintf("f-%s", hex.EncodeToString(hFn.Sum(nil)))
}
