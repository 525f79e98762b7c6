package run_pending_imports

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"phishtrack/handler"
	"phishtrack/pkg/mq"
	"phishtrack/pkg/service"
	"phishtrack/repo"
)

// RunPendingImports sweeps result-import tasks that are still pending
// and puts them back on the queue. It covers tasks whose original
// notification was lost.
type RunPendingImports struct {
	taskRepo repo.TaskRepo
	producer handler.Producer
}

func New(taskRepo repo.TaskRepo, producer handler.Producer) service.Job {
	return &RunPendingImports{
		taskRepo: taskRepo,
		producer: producer,
	}
}

func (j *RunPendingImports) Init(_ context.Context) error {
	return nil
}

func (j *RunPendingImports) Run(ctx context.Context) error {
	tasks, err := j.taskRepo.GetPendingResultImportTasks(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get pending tasks err: %v", err)
		return err
	}

	log.Ctx(ctx).Info().Msgf("number of pending import tasks: %d", len(tasks))

	for _, task := range tasks {
		if err := j.producer.SendMessage(&mq.Message{
			Payload: mq.PayloadNotifyImportTask,
			Key:     strconv.FormatUint(task.GetID(), 10),
			Body: &mq.NotifyImportTask{
				TaskID: task.ID,
			},
		}); err != nil {
			log.Ctx(ctx).Error().Msgf("send import task notification err: %v, task_id: %v", err, task.GetID())
			return err
		}
	}

	return nil
}

func (j *RunPendingImports) CleanUp(_ context.Context) error {
	return nil
}
