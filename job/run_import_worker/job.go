package run_import_worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"phishtrack/config"
	"phishtrack/handler"
	"phishtrack/pkg/mq"
	"phishtrack/pkg/service"
)

// RunImportWorker consumes import notifications and runs each
// result-import task to completion.
type RunImportWorker struct {
	cfg         *config.Config
	taskHandler handler.TaskHandler

	consumer *mq.Consumer
}

func New(cfg *config.Config, taskHandler handler.TaskHandler) service.Job {
	return &RunImportWorker{
		cfg:         cfg,
		taskHandler: taskHandler,
	}
}

func (j *RunImportWorker) Init(_ context.Context) error {
	mq.RegisterHandler(mq.PayloadNotifyImportTask, func(ctx context.Context, msg *mq.Message) error {
		notify := new(mq.NotifyImportTask)
		if err := msg.ParseBody(notify); err != nil {
			log.Ctx(ctx).Error().Msgf("parse notify import task err: %v", err)
			return err
		}

		return j.taskHandler.ProcessTask(ctx, notify.GetTaskID())
	})

	return nil
}

func (j *RunImportWorker) Run(ctx context.Context) error {
	consumer, err := mq.NewConsumer(ctx, j.cfg.MQConsumer)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init consumer err: %v", err)
		return err
	}
	j.consumer = consumer

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return nil
}

func (j *RunImportWorker) CleanUp(_ context.Context) error {
	if j.consumer != nil {
		return j.consumer.Close()
	}
	return nil
}
