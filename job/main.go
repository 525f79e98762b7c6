package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"phishtrack/config"
	"phishtrack/dep"
	"phishtrack/handler"
	"phishtrack/job/run_import_worker"
	"phishtrack/job/run_pending_imports"
	"phishtrack/pkg/logutil"
	"phishtrack/pkg/mq"
	"phishtrack/pkg/service"
	"phishtrack/repo"
)

func main() {
	var (
		opt = config.NewOptions()
		ctx = logutil.InitZeroLog(context.Background(), opt.LogLevel)
	)

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		opt.ConfigPath = configPath
	}

	cfg := config.NewConfig()
	if err := cfg.Load(ctx, opt.ConfigPath); err != nil {
		log.Ctx(ctx).Error().Msgf("load config failed: %v", err)
		os.Exit(1)
	}

	// base repo
	baseRepo, err := repo.NewBaseRepo(ctx, cfg.MetadataDB)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init base repo failed, err: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := baseRepo.Close(ctx); err != nil {
			log.Ctx(ctx).Error().Msgf("close base repo failed, err: %v", err)
		}
	}()

	baseCache := repo.NewBaseCache(ctx)

	// file repo
	fileRepo, err := repo.NewFileRepo(ctx, cfg.FileStore)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init file repo failed, err: %v", err)
		os.Exit(1)
	}

	// event repo
	eventRepo, err := repo.NewEventRepo(ctx, cfg.EventDB)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init event repo failed, err: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := eventRepo.Close(ctx); err != nil {
			log.Ctx(ctx).Error().Msgf("close event repo failed, err: %v", err)
		}
	}()

	// audit repo
	auditRepo, err := repo.NewAuditRepo(ctx, cfg.AuditStore)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init audit repo failed, err: %v", err)
		os.Exit(1)
	}

	// email service
	emailService, err := dep.NewEmailService(ctx, cfg.Brevo)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init email service failed, err: %v", err)
		os.Exit(1)
	}

	// mq producer
	producer, err := mq.NewProducer(ctx, cfg.MQProducer)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init mq producer failed, err: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Ctx(ctx).Error().Msgf("close mq producer failed, err: %v", err)
		}
	}()

	var (
		campaignRepo = repo.NewCampaignRepo(ctx, baseRepo, baseCache)
		targetRepo   = repo.NewTargetRepo(ctx, baseRepo)
		taskRepo     = repo.NewTaskRepo(ctx, baseRepo)
		userRepo     = repo.NewUserRepo(ctx, baseRepo)
	)

	taskHandler := handler.NewTaskHandler(
		campaignRepo, targetRepo, taskRepo, userRepo, fileRepo,
		eventRepo, auditRepo, emailService, producer, cfg.InternalSender,
	)

	jobs := map[string]service.Job{
		"run-import-worker":   run_import_worker.New(cfg, taskHandler),
		"run-pending-imports": run_pending_imports.New(taskRepo, producer),
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go <job_name>")
		os.Exit(1)
	}

	jobName := os.Args[1]
	job, exists := jobs[jobName]
	if !exists {
		log.Ctx(ctx).Error().Msgf("job %s not found", jobName)
		os.Exit(1)
	}

	if err := job.Init(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("init job err: %v", err)
		os.Exit(1)
	}

	if err := job.Run(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("run job err: %v", err)
		os.Exit(1)
	}

	if err := job.CleanUp(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("cleanup job err: %v", err)
		os.Exit(1)
	}

	log.Ctx(ctx).Info().Msg("job executed successfully")
	os.Exit(0)
}
