// Package web provides the HTTP server of the acquisitions API: router
// assembly, middleware ordering, and lifecycle management.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/acquisitions/api/config"
	"github.com/acquisitions/api/database"
	"github.com/acquisitions/api/logger"
	"github.com/acquisitions/api/security"
	"github.com/acquisitions/api/util/common"
	"github.com/acquisitions/api/web/controller"
	"github.com/acquisitions/api/web/entity"
	"github.com/acquisitions/api/web/job"
	"github.com/acquisitions/api/web/middleware"
	"github.com/acquisitions/api/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// Server is the acquisitions API web server.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	cfg *config.Config

	protector *security.Protector
	memStore  *security.MemoryWindowStore
	redis     *redis.Client

	index *controller.IndexController
	auth  *controller.AuthController
	users *controller.UserController

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a web server with a cancellable lifecycle context.
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{cfg: cfg, ctx: ctx, cancel: cancel}
}

// initProtector builds the admission-control engine. The sliding window
// rides redis when an address is configured and an in-process store
// otherwise.
func (s *Server) initProtector() error {
	var store security.WindowStore
	if s.cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPassword,
			DB:       s.cfg.RedisDB,
		})
		store = security.NewRedisWindowStore(s.redis)
		logger.Info("admission control windows backed by redis at", s.cfg.RedisAddr)
	} else {
		s.memStore = security.NewMemoryWindowStore()
		store = s.memStore
		logger.Info("admission control windows backed by in-process store")
	}

	protector, err := security.New(security.Config{
		Key:        s.cfg.SecurityKey,
		Production: s.cfg.IsProduction(),
		RulesJSON:  s.cfg.RulesJSON,
		Store:      store,
	})
	if err != nil {
		return err
	}
	s.protector = protector
	return nil
}

// initRouter assembles the gin engine. Middleware order matters: the
// admission check runs before any route-level authentication, so quota
// resolution normally sees guests (the principal lookup inside the security
// middleware serves chains that authenticate earlier).
func (s *Server) initRouter() (*gin.Engine, error) {
	if s.cfg.IsProduction() {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SecureHeaders())
	engine.Use(middleware.CORS())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(middleware.RequestLogger())

	secCfg := middleware.DefaultSecurityConfig()
	secCfg.Bypass = !s.cfg.IsProduction()
	engine.Use(middleware.Security(secCfg, s.protector))

	db := database.GetDB()
	tokens := service.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	userService := service.NewUserService(db)
	authService := service.NewAuthService(db, tokens)
	serverService := service.NewServerService(s.protector)

	root := engine.Group("/")
	s.index = controller.NewIndexController(root, serverService)

	api := engine.Group("/api")
	s.auth = controller.NewAuthController(api, authService)
	s.users = controller.NewUserController(api, tokens, userService)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Route not found"})
	})

	return engine, nil
}

// startTask schedules background maintenance.
func (s *Server) startTask() {
	if s.memStore != nil {
		s.cron.AddJob("@every 1m", job.NewPruneWindowJob(s.memStore))
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err = s.initProtector(); err != nil {
		return err
	}

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("web server running on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	return nil
}

// Stop gracefully shuts down the web server and its dependencies.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2, err3 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	if s.redis != nil {
		err3 = s.redis.Close()
	}
	return common.Combine(err1, err2, err3)
}

// GetCtx returns the server's lifecycle context.
func (s *Server) GetCtx() context.Context { return s.ctx }
