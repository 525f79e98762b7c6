package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishtrack/dep"
	"phishtrack/entity"
	"phishtrack/pkg/goutil"
	"phishtrack/pkg/mq"
	"phishtrack/pkg/router"
	"phishtrack/repo"
)

const testHeader = "id\tstatus\tip\tlatitude\tlongitude\tsend_date\treported\tmodified_date\temail\tfirst_name\tlast_name\tposition"

func testRow(id, status, reported, modDate, email string) string {
	return strings.Join([]string{
		id, status, "10.0.0.1", "1.30", "103.85", "2026-08-01 09:00:00", reported, modDate, email, "Jo", "Tan", "Engineer",
	}, "\t")
}

type fakeCampaignRepo struct {
	campaigns map[uint64]*entity.Campaign
	updated   []*entity.Campaign
}

func (f *fakeCampaignRepo) Create(_ context.Context, campaign *entity.Campaign) (uint64, error) {
	id := uint64(len(f.campaigns) + 1)
	campaign.ID = goutil.Uint64(id)
	f.campaigns[id] = campaign
	return id, nil
}

func (f *fakeCampaignRepo) Get(_ context.Context, filter *repo.CampaignFilter) (*entity.Campaign, error) {
	if filter.ID != nil {
		if c, ok := f.campaigns[*filter.ID]; ok {
			return c, nil
		}
		return nil, repo.ErrCampaignNotFound
	}
	for _, c := range f.campaigns {
		if filter.Name != nil && c.GetName() == *filter.Name {
			return c, nil
		}
	}
	return nil, repo.ErrCampaignNotFound
}

func (f *fakeCampaignRepo) GetMany(_ context.Context, _ *repo.CampaignFilter, p *repo.Pagination) ([]*entity.Campaign, *repo.Pagination, error) {
	campaigns := make([]*entity.Campaign, 0, len(f.campaigns))
	for _, c := range f.campaigns {
		campaigns = append(campaigns, c)
	}
	return campaigns, p, nil
}

func (f *fakeCampaignRepo) Update(_ context.Context, _ *repo.CampaignFilter, campaign *entity.Campaign) error {
	f.updated = append(f.updated, campaign)
	return nil
}

type fakeTargetRepo struct {
	byEmail map[string]*entity.Target
	creates []*entity.Target
	updates []*entity.Target
}

func (f *fakeTargetRepo) Create(_ context.Context, target *entity.Target) (uint64, error) {
	id := uint64(len(f.byEmail) + 1)
	target.ID = goutil.Uint64(id)
	f.byEmail[target.GetEmail()] = target
	f.creates = append(f.creates, target)
	return id, nil
}

func (f *fakeTargetRepo) Get(_ context.Context, filter *repo.TargetFilter) (*entity.Target, error) {
	if filter.Email != nil {
		if t, ok := f.byEmail[*filter.Email]; ok {
			return t, nil
		}
	}
	return nil, repo.ErrTargetNotFound
}

func (f *fakeTargetRepo) GetMany(_ context.Context, _ *repo.TargetFilter, p *repo.Pagination) ([]*entity.Target, *repo.Pagination, error) {
	targets := make([]*entity.Target, 0, len(f.byEmail))
	for _, t := range f.byEmail {
		targets = append(targets, t)
	}
	return targets, p, nil
}

func (f *fakeTargetRepo) Update(_ context.Context, _ *repo.TargetFilter, target *entity.Target) error {
	f.byEmail[target.GetEmail()] = target
	f.updates = append(f.updates, target)
	return nil
}

func (f *fakeTargetRepo) CountByCampaign(_ context.Context, _ uint64) (uint64, error) {
	return uint64(len(f.byEmail)), nil
}

type fakeTaskRepo struct {
	tasks    map[uint64]*entity.Task
	statuses []entity.TaskStatus
}

func (f *fakeTaskRepo) Create(_ context.Context, task *entity.Task) (uint64, error) {
	id := uint64(len(f.tasks) + 1)
	task.ID = goutil.Uint64(id)
	f.tasks[id] = task
	return id, nil
}

func (f *fakeTaskRepo) Get(_ context.Context, filter *repo.TaskFilter) (*entity.Task, error) {
	if filter.ID != nil {
		if t, ok := f.tasks[*filter.ID]; ok {
			return t, nil
		}
	}
	return nil, repo.ErrTaskNotFound
}

func (f *fakeTaskRepo) GetMany(_ context.Context, _ *repo.TaskFilter, p *repo.Pagination) ([]*entity.Task, *repo.Pagination, error) {
	tasks := make([]*entity.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		tasks = append(tasks, t)
	}
	return tasks, p, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, _ *repo.TaskFilter, task *entity.Task) error {
	f.statuses = append(f.statuses, task.GetStatus())
	return nil
}

func (f *fakeTaskRepo) GetPendingResultImportTasks(_ context.Context) ([]*entity.Task, error) {
	tasks := make([]*entity.Task, 0)
	for _, t := range f.tasks {
		if t.IsPending() {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

type fakeUserRepo struct {
	users map[uint64]*entity.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) (uint64, error) {
	id := uint64(len(f.users) + 1)
	user.ID = goutil.Uint64(id)
	f.users[id] = user
	return id, nil
}

func (f *fakeUserRepo) Get(_ context.Context, filter *repo.UserFilter) (*entity.User, error) {
	if filter.ID != nil {
		if u, ok := f.users[*filter.ID]; ok {
			return u, nil
		}
	}
	for _, u := range f.users {
		if filter.Email != nil && u.GetEmail() == *filter.Email {
			return u, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	return f.Get(ctx, &repo.UserFilter{ID: goutil.Uint64(id)})
}

type fakeFileRepo struct {
	files    map[string][]byte
	uploaded []string
}

func (f *fakeFileRepo) Upload(_ context.Context, fileName string, data io.Reader) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.files[fileName] = b
	f.uploaded = append(f.uploaded, fileName)
	return fileName, nil
}

func (f *fakeFileRepo) Download(_ context.Context, fileID string) ([]byte, error) {
	b, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	return b, nil
}

func (f *fakeFileRepo) Close(_ context.Context) error {
	return nil
}

type fakeEventRepo struct {
	events []*entity.TargetEvent
}

func (f *fakeEventRepo) Insert(_ context.Context, events []*entity.TargetEvent) error {
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeEventRepo) Close(_ context.Context) error {
	return nil
}

type fakeAuditRepo struct {
	entries []*entity.AuditEntry
}

func (f *fakeAuditRepo) Record(_ context.Context, entry *entity.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) Close(_ context.Context) error {
	return nil
}

type fakeEmailService struct {
	sent []*dep.SendSmtpEmail
}

func (f *fakeEmailService) SendEmail(_ context.Context, email *dep.SendSmtpEmail) error {
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeEmailService) Close(_ context.Context) error {
	return nil
}

type fakeProducer struct {
	msgs []*mq.Message
}

func (f *fakeProducer) SendMessage(msg *mq.Message) error {
	f.msgs = append(f.msgs, msg)
	return nil
}

type importFixture struct {
	campaignRepo *fakeCampaignRepo
	targetRepo   *fakeTargetRepo
	taskRepo     *fakeTaskRepo
	userRepo     *fakeUserRepo
	fileRepo     *fakeFileRepo
	eventRepo    *fakeEventRepo
	auditRepo    *fakeAuditRepo
	emailService *fakeEmailService
	producer     *fakeProducer

	handler TaskHandler
}

func newImportFixture() *importFixture {
	f := &importFixture{
		campaignRepo: &fakeCampaignRepo{campaigns: make(map[uint64]*entity.Campaign)},
		targetRepo:   &fakeTargetRepo{byEmail: make(map[string]*entity.Target)},
		taskRepo:     &fakeTaskRepo{tasks: make(map[uint64]*entity.Task)},
		userRepo:     &fakeUserRepo{users: make(map[uint64]*entity.User)},
		fileRepo:     &fakeFileRepo{files: make(map[string][]byte)},
		eventRepo:    new(fakeEventRepo),
		auditRepo:    new(fakeAuditRepo),
		emailService: new(fakeEmailService),
		producer:     new(fakeProducer),
	}

	f.handler = NewTaskHandler(
		f.campaignRepo, f.targetRepo, f.taskRepo, f.userRepo, f.fileRepo,
		f.eventRepo, f.auditRepo, f.emailService, f.producer, "ops@example.com",
	)

	return f
}

func (f *importFixture) seedCampaign(t *testing.T) *entity.Campaign {
	t.Helper()

	campaign := entity.NewCampaign("q3-awareness", "Q3 awareness run")
	_, err := f.campaignRepo.Create(context.Background(), campaign)
	require.NoError(t, err)

	return campaign
}

func (f *importFixture) seedUser(t *testing.T) *entity.User {
	t.Helper()

	user, err := entity.NewUser("sec.ops@example.com", "correct-horse", "Sec Ops")
	require.NoError(t, err)
	_, err = f.userRepo.Create(context.Background(), user)
	require.NoError(t, err)

	return user
}

func (f *importFixture) seedTask(t *testing.T, campaignID, creatorID uint64, content string) *entity.Task {
	t.Helper()

	fileID := "f-test"
	f.fileRepo.files[fileID] = []byte(content)

	task := &entity.Task{
		CampaignID: goutil.Uint64(campaignID),
		Status:     entity.TaskStatusPending,
		TaskType:   entity.TaskTypeResultImport,
		ExtInfo: &entity.TaskExtInfo{
			FileID: goutil.String(fileID),
		},
		CreatorID: goutil.Uint64(creatorID),
	}
	_, err := f.taskRepo.Create(context.Background(), task)
	require.NoError(t, err)

	return task
}

func TestProcessTask(t *testing.T) {
	f := newImportFixture()
	campaign := f.seedCampaign(t)
	user := f.seedUser(t)

	content := strings.Join([]string{
		testHeader,
		testRow("r1", "Email Sent", "", "", "a@example.com"),
		testRow("r2", "Clicked Link", "", "2026-08-02 10:00:00", "b@example.com"),
		testRow("r3", "Submitted Data", "true", "2026-08-02 11:00:00", "c@example.com"),
	}, "\n")
	task := f.seedTask(t, campaign.GetID(), user.GetID(), content)

	err := f.handler.ProcessTask(context.Background(), task.GetID())
	require.NoError(t, err)

	// one target per row, in file order
	require.Len(t, f.targetRepo.creates, 3)
	assert.Equal(t, "a@example.com", f.targetRepo.creates[0].GetEmail())
	assert.Equal(t, "sent", f.targetRepo.creates[0].GetStatus())
	assert.Equal(t, "clicked", f.targetRepo.creates[1].GetStatus())
	assert.Equal(t, "2026-08-02 10:00:00", f.targetRepo.creates[1].GetClickedAt())

	// reported flag wins over submitted status
	assert.Equal(t, "reported", f.targetRepo.creates[2].GetStatus())
	assert.Equal(t, "2026-08-02 11:00:00", f.targetRepo.creates[2].GetReportedAt())

	// placeholder employee reference on fresh targets
	assert.Equal(t, entity.PlaceholderEmployeeID, f.targetRepo.creates[0].GetEmployeeID())

	// campaign snapshot overwritten and completed
	require.Len(t, f.campaignRepo.updated, 1)
	updated := f.campaignRepo.updated[0]
	assert.True(t, updated.IsCompleted())
	assert.Equal(t, uint64(3), updated.GetTotalTargets())
	assert.Equal(t, uint64(1), updated.GetEmailsReported())

	// task goes processing then success
	require.Len(t, f.taskRepo.statuses, 2)
	assert.Equal(t, entity.TaskStatusProcessing, f.taskRepo.statuses[0])
	assert.Equal(t, entity.TaskStatusSuccess, f.taskRepo.statuses[1])
	assert.Equal(t, uint64(3), task.GetExtInfo().GetParsedRows())

	// best-effort side effects all fired
	assert.Len(t, f.eventRepo.events, 3)
	require.Len(t, f.auditRepo.entries, 1)
	assert.Equal(t, "import_results", f.auditRepo.entries[0].Action)
	require.Len(t, f.emailService.sent, 1)
	assert.Equal(t, "sec.ops@example.com", f.emailService.sent[0].To[0].Email)
}

func TestProcessTask_ReImportUpdatesExistingTargets(t *testing.T) {
	f := newImportFixture()
	campaign := f.seedCampaign(t)
	user := f.seedUser(t)

	first := strings.Join([]string{
		testHeader,
		testRow("r1", "Email Sent", "", "", "a@example.com"),
	}, "\n")
	task := f.seedTask(t, campaign.GetID(), user.GetID(), first)
	require.NoError(t, f.handler.ProcessTask(context.Background(), task.GetID()))

	second := strings.Join([]string{
		testHeader,
		testRow("r1", "Opened", "", "2026-08-03 08:00:00", "a@example.com"),
	}, "\n")
	task2 := f.seedTask(t, campaign.GetID(), user.GetID(), second)
	require.NoError(t, f.handler.ProcessTask(context.Background(), task2.GetID()))

	// same (campaign, email) key updates in place
	require.Len(t, f.targetRepo.creates, 1)
	require.Len(t, f.targetRepo.updates, 1)
	assert.Equal(t, "opened", f.targetRepo.updates[0].GetStatus())
	assert.Equal(t, "2026-08-03 08:00:00", f.targetRepo.updates[0].GetOpenedAt())

	// snapshot overwritten, not accumulated
	last := f.campaignRepo.updated[len(f.campaignRepo.updated)-1]
	assert.Equal(t, uint64(1), last.GetTotalTargets())
}

func TestProcessTask_MalformedReportFailsBeforeWrites(t *testing.T) {
	f := newImportFixture()
	campaign := f.seedCampaign(t)
	user := f.seedUser(t)

	// header only, no data line
	task := f.seedTask(t, campaign.GetID(), user.GetID(), testHeader)

	err := f.handler.ProcessTask(context.Background(), task.GetID())
	require.Error(t, err)

	assert.Empty(t, f.targetRepo.creates)
	assert.Empty(t, f.campaignRepo.updated)
	assert.Empty(t, f.eventRepo.events)
	assert.Empty(t, f.emailService.sent)

	// processing, then failed
	require.Len(t, f.taskRepo.statuses, 2)
	assert.Equal(t, entity.TaskStatusFailed, f.taskRepo.statuses[1])
}

func TestProcessTask_NonPendingIsNoOp(t *testing.T) {
	f := newImportFixture()
	campaign := f.seedCampaign(t)
	user := f.seedUser(t)

	task := f.seedTask(t, campaign.GetID(), user.GetID(), testHeader)
	task.Status = entity.TaskStatusSuccess

	require.NoError(t, f.handler.ProcessTask(context.Background(), task.GetID()))
	assert.Empty(t, f.taskRepo.statuses)
	assert.Empty(t, f.targetRepo.creates)
}

func newMultipartImportRequest(t *testing.T, campaignID uint64, content string) *CreateResultImportTaskRequest {
	t.Helper()

	var (
		buf = new(bytes.Buffer)
		mw  = multipart.NewWriter(buf)
	)

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="results.csv"`)
	partHeader.Set("Content-Type", "text/plain")

	part, err := mw.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	file, fileHeader, err := r.FormFile("file")
	require.NoError(t, err)

	req := &CreateResultImportTaskRequest{
		CampaignID: goutil.Uint64(campaignID),
	}
	req.FileMeta = &router.FileMeta{
		File:       file,
		FileHeader: fileHeader,
	}

	return req
}

func TestCreateResultImportTask(t *testing.T) {
	f := newImportFixture()
	campaign := f.seedCampaign(t)
	user := f.seedUser(t)

	content := strings.Join([]string{
		testHeader,
		testRow("r1", "Email Sent", "", "", "a@example.com"),
	}, "\n")

	req := newMultipartImportRequest(t, campaign.GetID(), content)
	req.SetUser(user)

	res := new(CreateResultImportTaskResponse)
	require.NoError(t, f.handler.CreateResultImportTask(context.Background(), req, res))

	require.NotNil(t, res.Task)
	assert.True(t, res.Task.IsPending())
	assert.Equal(t, entity.TaskTypeResultImport, res.Task.GetTaskType())
	assert.Equal(t, "results.csv", res.Task.GetExtInfo().GetOriFileName())
	assert.Equal(t, user.GetID(), res.Task.GetCreatorID())

	// file landed in the store under the generated key
	require.Len(t, f.fileRepo.uploaded, 1)
	assert.Equal(t, f.fileRepo.uploaded[0], res.Task.GetFileID())

	// worker notification queued
	require.Len(t, f.producer.msgs, 1)
	assert.Equal(t, mq.PayloadNotifyImportTask, f.producer.msgs[0].Payload)
}

func TestCreateResultImportTask_MissingFile(t *testing.T) {
	f := newImportFixture()
	campaign := f.seedCampaign(t)
	user := f.seedUser(t)

	req := &CreateResultImportTaskRequest{
		CampaignID: goutil.Uint64(campaign.GetID()),
	}
	req.SetUser(user)

	err := f.handler.CreateResultImportTask(context.Background(), req, new(CreateResultImportTaskResponse))
	require.Error(t, err)
	assert.Empty(t, f.taskRepo.tasks)
	assert.Empty(t, f.producer.msgs)
}

func TestCreateResultImportTask_UnknownCampaign(t *testing.T) {
	f := newImportFixture()
	user := f.seedUser(t)

	content := testHeader + "\n" + testRow("r1", "Email Sent", "", "", "a@example.com")
	req := newMultipartImportRequest(t, 999, content)
	req.SetUser(user)

	err := f.handler.CreateResultImportTask(context.Background(), req, new(CreateResultImportTaskResponse))
	require.Error(t, err)
	assert.Empty(t, f.fileRepo.uploaded)
}
