package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"phishtrack/config"
	"phishtrack/dep"
	"phishtrack/handler"
	"phishtrack/middleware"
	"phishtrack/pkg/logutil"
	"phishtrack/pkg/mq"
	"phishtrack/pkg/router"
	"phishtrack/pkg/service"
	"phishtrack/repo"
)

type server struct {
	ctx context.Context
	opt *config.Option
	cfg *config.Config

	baseRepo     repo.BaseRepo
	baseCache    repo.BaseCache
	campaignRepo repo.CampaignRepo
	targetRepo   repo.TargetRepo
	taskRepo     repo.TaskRepo
	userRepo     repo.UserRepo
	sessionRepo  repo.SessionRepo
	fileRepo     repo.FileRepo
	eventRepo    repo.EventRepo
	auditRepo    repo.AuditRepo

	emailService dep.EmailService
	producer     *mq.Producer

	// api handlers
	userHandler     handler.UserHandler
	campaignHandler handler.CampaignHandler
	targetHandler   handler.TargetHandler
	taskHandler     handler.TaskHandler
}

func main() {
	s := new(server)
	if err := service.Run(s); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

func (s *server) Init() error {
	opt := config.NewOptions()

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		opt.LogLevel = logLevel
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		opt.ConfigPath = configPath
	}

	if serverPort := os.Getenv("PORT"); serverPort != "" {
		if port, err := strconv.Atoi(serverPort); err == nil {
			opt.Port = port
		}
	}

	s.opt = opt

	return nil
}

func (s *server) Start() error {
	var err error

	// ====== init logger ===== //

	s.ctx = logutil.InitZeroLog(context.Background(), s.opt.LogLevel)

	// ===== init config ===== //

	s.cfg = config.NewConfig()
	if err = s.cfg.Load(s.ctx, s.opt.ConfigPath); err != nil {
		log.Ctx(s.ctx).Error().Msgf("load config failed, err: %v", err)
		return err
	}

	// ===== init repos ===== //

	s.baseRepo, err = repo.NewBaseRepo(s.ctx, s.cfg.MetadataDB)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init base repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.baseRepo != nil {
			if err := s.baseRepo.Close(s.ctx); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close base repo failed, err: %v", err)
				return
			}
		}
	}()

	s.baseCache = repo.NewBaseCache(s.ctx)

	s.campaignRepo = repo.NewCampaignRepo(s.ctx, s.baseRepo, s.baseCache)
	s.targetRepo = repo.NewTargetRepo(s.ctx, s.baseRepo)
	s.taskRepo = repo.NewTaskRepo(s.ctx, s.baseRepo)
	s.userRepo = repo.NewUserRepo(s.ctx, s.baseRepo)
	s.sessionRepo = repo.NewSessionRepo(s.ctx, s.baseCache)

	// file repo
	s.fileRepo, err = repo.NewFileRepo(s.ctx, s.cfg.FileStore)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init file repo failed, err: %v", err)
		return err
	}

	// event repo
	s.eventRepo, err = repo.NewEventRepo(s.ctx, s.cfg.EventDB)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init event repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.eventRepo != nil {
			if err := s.eventRepo.Close(s.ctx); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close event repo failed, err: %v", err)
				return
			}
		}
	}()

	// audit repo
	s.auditRepo, err = repo.NewAuditRepo(s.ctx, s.cfg.AuditStore)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init audit repo failed, err: %v", err)
		return err
	}

	// ===== init deps ===== //

	s.emailService, err = dep.NewEmailService(s.ctx, s.cfg.Brevo)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init email service failed, err: %v", err)
		return err
	}

	s.producer, err = mq.NewProducer(s.ctx, s.cfg.MQProducer)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init mq producer failed, err: %v", err)
		return err
	}

	// ===== init handlers ===== //

	s.userHandler = handler.NewUserHandler(s.userRepo, s.sessionRepo)
	s.campaignHandler = handler.NewCampaignHandler(s.campaignRepo, s.auditRepo)
	s.targetHandler = handler.NewTargetHandler(s.campaignRepo, s.targetRepo)
	s.taskHandler = handler.NewTaskHandler(
		s.campaignRepo, s.targetRepo, s.taskRepo, s.userRepo, s.fileRepo,
		s.eventRepo, s.auditRepo, s.emailService, s.producer, s.cfg.InternalSender,
	)

	// ===== start server ===== //

	go func() {
		addr := fmt.Sprintf(":%d", s.opt.Port)

		log.Info().Msgf("starting HTTP server at %s", addr)

		httpServer := &http.Server{
			BaseContext: func(_ net.Listener) context.Context {
				return s.ctx
			},
			Addr:    addr,
			Handler: middleware.Log(middleware.CORS(s.cfg.AllowedOrigins, s.registerRoutes())),
		}
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fail to start HTTP server, err: %v", err)
		}
	}()

	return nil
}

func (s *server) Stop() error {
	if s.baseRepo != nil {
		if err := s.baseRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close base repo failed, err: %v", err)
			return err
		}
	}

	if s.fileRepo != nil {
		if err := s.fileRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close file repo failed, err: %v", err)
			return err
		}
	}

	if s.eventRepo != nil {
		if err := s.eventRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close event repo failed, err: %v", err)
			return err
		}
	}

	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close mq producer failed, err: %v", err)
			return err
		}
	}

	return nil
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct{}

func (s *server) registerRoutes() http.Handler {
	r := &router.HttpRouter{
		Router: mux.NewRouter(),
	}

	authMiddlewares := []router.Middleware{
		middleware.NewAuth(s.sessionRepo, s.userRepo),
	}

	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathHealthCheck,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(HealthCheckRequest),
			Res: new(HealthCheckResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return nil
			},
		},
	})

	// create_user
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:    config.PathCreateUser,
		Method:  http.MethodPost,
		IsAdmin: true,
		Handler: router.Handler{
			Req: new(handler.CreateUserRequest),
			Res: new(handler.CreateUserResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.userHandler.CreateUser(ctx, req.(*handler.CreateUserRequest), res.(*handler.CreateUserResponse))
			},
		},
	})

	// log_in
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathLogIn,
		Method: http.MethodPost,
		Handler: router.Handler{
			Req: new(handler.LogInRequest),
			Res: new(handler.LogInResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.userHandler.LogIn(ctx, req.(*handler.LogInRequest), res.(*handler.LogInResponse))
			},
		},
	})

	// log_out
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathLogOut,
		Method:      http.MethodPost,
		Middlewares: authMiddlewares,
		Handler: router.Handler{
			Req: new(handler.LogOutRequest),
			Res: new(handler.LogOutResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.userHandler.LogOut(ctx, req.(*handler.LogOutRequest), res.(*handler.LogOutResponse))
			},
		},
	})

	// create_campaign
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathCreateCampaign,
		Method:      http.MethodPost,
		Middlewares: authMiddlewares,
		Handler: router.Handler{
			Req: new(handler.CreateCampaignRequest),
			Res: new(handler.CreateCampaignResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.CreateCampaign(ctx, req.(*handler.CreateCampaignRequest), res.(*handler.CreateCampaignResponse))
			},
		},
	})

	// get_campaign
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathGetCampaign,
		Method:      http.MethodGet,
		Middlewares: authMiddlewares,
		Handler: router.Handler{
			Req: new(handler.GetCampaignRequest),
			Res: new(handler.GetCampaignResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.GetCampaign(ctx, req.(*handler.GetCampaignRequest), res.(*handler.GetCampaignResponse))
			},
		},
	})

	// get_campaigns
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathGetCampaigns,
		Method:      http.MethodPost,
		Middlewares: authMiddlewares,
		Handler: router.Handler{
			Req: new(handler.GetCampaignsRequest),
			Res: new(handler.GetCampaignsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.GetCampaigns(ctx, req.(*handler.GetCampaignsRequest), res.(*handler.GetCampaignsResponse))
			},
		},
	})

	// get_campaign_targets
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathGetCampaignTargets,
		Method:      http.MethodPost,
		Middlewares: authMiddlewares,
		Handler: router.Handler{
			Req: new(handler.GetCampaignTargetsRequest),
			Res: new(handler.GetCampaignTargetsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.targetHandler.GetCampaignTargets(ctx, req.(*handler.GetCampaignTargetsRequest), res.(*handler.GetCampaignTargetsResponse))
			},
		},
	})

	// create_result_import_task
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathCreateResultImportTask,
		Method:      http.MethodPost,
		Middlewares: authMiddlewares,
		Handler: router.Handler{
			Req: new(handler.CreateResultImportTaskRequest),
			Res: new(handler.CreateResultImportTaskResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.taskHandler.CreateResultImportTask(ctx, req.(*handler.CreateResultImportTaskRequest), res.(*handler.CreateResultImportTaskResponse))
			},
		},
	})

	// get_result_import_tasks
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathGetResultImportTasks,
		Method:      http.MethodPost,
		Middlewares: authMiddlewares,
		Handler: router.Handler{
			Req: new(handler.GetResultImportTasksRequest),
			Res: new(handler.GetResultImportTasksResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.taskHandler.GetResultImportTasks(ctx, req.(*handler.GetResultImportTasksRequest), res.(*handler.GetResultImportTasksResponse))
			},
		},
	})

	return r
}
