package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rushbot/internal/ai"
	"rushbot/internal/bot"
	"rushbot/internal/command"
	"rushbot/internal/config"
	"rushbot/internal/handler"
	"rushbot/internal/pkg/cache"
	"rushbot/internal/pkg/docker"
	"rushbot/internal/pkg/execx"
	"rushbot/internal/pkg/jwt"
	"rushbot/internal/pkg/mongodb"
	"rushbot/internal/pkg/storagefactory"
	"rushbot/internal/pkg/sysinfo"
	"rushbot/internal/repository"
	"rushbot/internal/server/middleware"
	"rushbot/internal/service"
)

// Server HTTP 网关服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例
// 可选依赖（Mongo/Redis/AI）缺失时相关指令不注册，其余照常工作；
// 指令注册表冲突是配置错误，直接启动失败。
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 初始化 MongoDB (可选)
	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	dispatcher, err := srv.buildDispatcher()
	if err != nil {
		return nil, err
	}

	srv.setupRoutes(dispatcher)

	return srv, nil
}

// buildDispatcher 装配全部指令并构建分发器
func (s *Server) buildDispatcher() (*bot.Dispatcher, error) {
	cfg := s.cfg

	runner := execx.NewRunner(cfg.Exec.Timeout, cfg.Exec.MaxOutput)
	collector := sysinfo.NewCollector(runner)
	monitorSvc := service.NewMonitorService(collector)
	dockerClient := docker.NewClient(runner)

	var registry *bot.Registry

	cmds := []bot.Command{
		command.Ping(),
		command.Menu(cfg.Bot.Prefix, func() []bot.Command { return registry.List() }, cfg.Bot.IsAdmin),
		command.Status(collector),
		command.Monitor(monitorSvc),
		command.Container(dockerClient),
		command.CLI(runner),
		command.Speedtest(runner),
		command.Subfinder(runner),
		command.Msg(),
	}

	// AI 对话指令需要模型与持久化历史同时可用
	chatCmds, err := s.buildChatCommands()
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, chatCmds...)

	registry, err = bot.NewRegistry(cmds...)
	if err != nil {
		return nil, fmt.Errorf("command registry: %w", err)
	}
	log.Info().Int("commands", registry.Len()).Str("prefix", cfg.Bot.Prefix).Msg("command registry built")

	return bot.NewDispatcher(registry, cfg.Bot.Prefix, cfg.Bot.IsAdmin), nil
}

func (s *Server) buildChatCommands() ([]bot.Command, error) {
	cfg := s.cfg

	if s.mongo == nil {
		log.Warn().Msg("MongoDB not configured, chat commands disabled")
		return nil, nil
	}
	store := repository.NewTurnRepo(s.mongo.Database())

	if cfg.AI.APIKey == "" {
		log.Warn().Msg("AI not configured, chat commands disabled")
		// 历史还在，清空指令依然有意义
		chatSvc := service.NewChatService(store, nil, nil, cfg.Bot.HistoryWindow, cfg.Bot.ReplyLimit)
		return []bot.Command{command.Clear(chatSvc)}, nil
	}

	// 图片客户端 (可选)
	var imageGen *ai.ImageClient
	if cfg.Image.APIKey != "" {
		ig, err := ai.NewImageClient(&cfg.Image)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize image client, continuing without it")
		} else {
			imageGen = ig
			log.Info().Str("model", cfg.Image.Model).Msg("initialized image client")
		}
	}

	client, err := ai.NewClient(context.Background(), &cfg.AI, imageGen)
	if err != nil {
		return nil, fmt.Errorf("ai client: %w", err)
	}
	log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("initialized AI client")

	archive, err := storagefactory.NewStorage(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("attachment storage: %w", err)
	}
	if archive != nil {
		log.Info().Str("type", archive.GetStorageType()).Msg("attachment archive enabled")
	}

	chatSvc := service.NewChatService(store, client, archive, cfg.Bot.HistoryWindow, cfg.Bot.ReplyLimit)

	cmds := []bot.Command{
		command.Chat(chatSvc, client.DefaultModalities(), s.redis, cfg.Bot.ChatCooldown),
		command.Clear(chatSvc),
	}
	if imageGen != nil {
		cmds = append(cmds, command.Image(chatSvc))
	}
	return cmds, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(dispatcher *bot.Dispatcher) {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	messageHandler := handler.NewMessageHandler(dispatcher)

	v1 := s.engine.Group("/api/v1")
	if s.cfg.Auth.JWTSecret != "" {
		jwtUtil := jwt.New(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenExpiry)
		v1.Use(middleware.Auth(jwtUtil))
	} else {
		log.Warn().Msg("JWT secret not configured, message endpoint is unauthenticated")
	}
	v1.POST("/messages", messageHandler.Handle)
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
