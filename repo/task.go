package repo

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"phishtrack/entity"
	"phishtrack/pkg/goutil"
)

var ErrTaskNotFound = errors.New("task not found")

type Task struct {
	ID         *uint64
	CampaignID *uint64
	Status     *uint32
	TaskType   *uint32
	ExtInfo    *string
	CreatorID  *uint64
	CreateTime *uint64
	UpdateTime *uint64
}

func (m *Task) TableName() string {
	return "task_tab"
}

func (m *Task) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *Task) GetStatus() uint32 {
	if m != nil && m.Status != nil {
		return *m.Status
	}
	return 0
}

func (m *Task) GetTaskType() uint32 {
	if m != nil && m.TaskType != nil {
		return *m.TaskType
	}
	return 0
}

type TaskFilter struct {
	ID         *uint64
	CampaignID *uint64
}

type TaskRepo interface {
	Create(ctx context.Context, task *entity.Task) (uint64, error)
	Get(ctx context.Context, f *TaskFilter) (*entity.Task, error)
	GetMany(ctx context.Context, f *TaskFilter, p *Pagination) ([]*entity.Task, *Pagination, error)
	Update(ctx context.Context, f *TaskFilter, task *entity.Task) error
	GetPendingResultImportTasks(ctx context.Context) ([]*entity.Task, error)
}

type taskRepo struct {
	baseRepo BaseRepo
}

func NewTaskRepo(_ context.Context, baseRepo BaseRepo) TaskRepo {
	return &taskRepo{
		baseRepo: baseRepo,
	}
}

func (r *taskRepo) Create(ctx context.Context, task *entity.Task) (uint64, error) {
	taskModel, err := ToTaskModel(task)
	if err != nil {
		return 0, err
	}

	if err := r.baseRepo.Create(ctx, taskModel); err != nil {
		return 0, err
	}
	task.ID = taskModel.ID

	return taskModel.GetID(), nil
}

func (r *taskRepo) Get(ctx context.Context, f *TaskFilter) (*entity.Task, error) {
	taskModel := new(Task)
	if err := r.baseRepo.Get(ctx, taskModel, &Filter{
		Conditions: r.toConditions(f),
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return ToTask(taskModel)
}

func (r *taskRepo) GetMany(ctx context.Context, f *TaskFilter, p *Pagination) ([]*entity.Task, *Pagination, error) {
	return r.getMany(ctx, r.toConditions(f), p)
}

func (r *taskRepo) Update(ctx context.Context, f *TaskFilter, task *entity.Task) error {
	taskModel, err := ToTaskModel(task)
	if err != nil {
		return err
	}
	taskModel.ID = f.ID

	return r.baseRepo.Update(ctx, taskModel)
}

func (r *taskRepo) GetPendingResultImportTasks(ctx context.Context) ([]*entity.Task, error) {
	tasks, _, err := r.getMany(ctx, []*Condition{
		{
			Field:         "task_type",
			Value:         goutil.Uint32(uint32(entity.TaskTypeResultImport)),
			Op:            OpEq,
			NextLogicalOp: LogicalOpAnd,
		},
		{
			Field: "status",
			Value: goutil.Uint32(uint32(entity.TaskStatusPending)),
			Op:    OpEq,
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) getMany(ctx context.Context, conditions []*Condition, p *Pagination) ([]*entity.Task, *Pagination, error) {
	res, pNew, err := r.baseRepo.GetMany(ctx, new(Task), &Filter{
		Conditions: conditions,
		Pagination: p,
	})
	if err != nil {
		return nil, nil, err
	}

	tasks := make([]*entity.Task, 0, len(res))
	for _, m := range res {
		task, err := ToTask(m.(*Task))
		if err != nil {
			return nil, nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, pNew, nil
}

func (r *taskRepo) toConditions(f *TaskFilter) []*Condition {
	return []*Condition{
		{
			Field:         "id",
			Value:         f.ID,
			Op:            OpEq,
			NextLogicalOp: LogicalOpAnd,
		},
		{
			Field: "campaign_id",
			Value: f.CampaignID,
			Op:    OpEq,
		},
	}
}

func ToTaskModel(task *entity.Task) (*Task, error) {
	extInfo, err := task.GetExtInfo().ToString()
	if err != nil {
		return nil, err
	}

	return &Task{
		ID:         task.ID,
		CampaignID: task.CampaignID,
		Status:     goutil.Uint32(uint32(task.GetStatus())),
		TaskType:   goutil.Uint32(uint32(task.GetTaskType())),
		ExtInfo:    goutil.String(extInfo),
		CreatorID:  task.CreatorID,
		CreateTime: task.CreateTime,
		UpdateTime: task.UpdateTime,
	}, nil
}

func ToTask(m *Task) (*entity.Task, error) {
	extInfo := new(entity.TaskExtInfo)
	if m.ExtInfo != nil {
		if err := json.Unmarshal([]byte(*m.ExtInfo), extInfo); err != nil {
			return nil, err
		}
	}

	return &entity.Task{
		ID:         m.ID,
		CampaignID: m.CampaignID,
		Status:     entity.TaskStatus(m.GetStatus()),
		TaskType:   entity.TaskType(m.GetTaskType()),
		ExtInfo:    extInfo,
		CreatorID:  m.CreatorID,
		CreateTime: m.CreateTime,
		UpdateTime: m.UpdateTime,
	}, nil
}
