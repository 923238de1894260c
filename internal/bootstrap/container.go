package bootstrap

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"queridoc-web/internal/config"
	"queridoc-web/internal/controller"
	"queridoc-web/internal/handler"
	"queridoc-web/internal/pkg/logger"
	"queridoc-web/internal/repository/contract"
	"queridoc-web/internal/repository/memory"
	"queridoc-web/internal/repository/redisstore"
	"queridoc-web/internal/service"
	"queridoc-web/internal/view"
	"queridoc-web/pkg/identity"
	pktNats "queridoc-web/pkg/nats"
	"queridoc-web/pkg/qnaclient"

	"github.com/redis/go-redis/v9"
)

type Container struct {
	Logger   logger.ILogger
	Sessions contract.SessionRepository

	// Controllers
	PageController   controller.IPageController
	OAuthController  controller.IOAuthController
	AuthController   controller.IAuthController
	ChatController   controller.IChatController
	UploadController controller.IUploadController

	AuthEventHandler *handler.AuthEventHandler
	Renderer         *view.Renderer

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatalf("[FATAL] Failed to parse templates: %v", err)
	}

	c := &Container{Logger: sysLogger, Renderer: renderer}

	// 2. Session storage
	retention := time.Duration(cfg.Session.RetentionHours) * time.Hour
	if cfg.Session.Backend == "redis" {
		rdb := newRedisClient(cfg.App.RedisURL)
		c.Sessions = redisstore.NewSessionRepository(rdb, retention, sysLogger)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		log.Printf("[INFO] Using Session Backend: REDIS")
	} else {
		c.Sessions = memory.NewSessionRepository(retention, sysLogger)
		log.Printf("[INFO] Using Session Backend: MEMORY")
	}
	chatStates := memory.NewChatStateRepository()

	// 3. Infrastructure
	broadcaster := identity.NewBroadcaster(sysLogger)
	c.closers = append(c.closers, func() { _ = broadcaster.Close() })

	provider := identity.NewGoogleProvider(identity.GoogleConfig{
		ClientID:       cfg.OAuth.GoogleClientID,
		ClientSecret:   cfg.OAuth.GoogleClientSecret,
		RedirectURL:    cfg.OAuth.GoogleRedirectURL,
		FirebaseAPIKey: cfg.OAuth.FirebaseAPIKey,
		GrantTTL:       retention,
	}, broadcaster)

	api := qnaclient.NewClient(cfg.Backend.BaseURL)

	// The auth service treats a nil interface as "no audit events".
	var publisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 4. Services
	chatService := service.NewChatService(api, chatStates, sysLogger)
	uploadService := service.NewUploadService(api, sysLogger)
	authService := service.NewAuthService(provider, c.Sessions, chatService, publisher, sysLogger)

	// 5. Controllers
	c.PageController = controller.NewPageController(renderer)
	c.OAuthController = controller.NewOAuthController(authService, cfg.Session.CookieSecure, sysLogger)
	c.AuthController = controller.NewAuthController(authService)
	c.ChatController = controller.NewChatController(chatService, renderer)
	c.UploadController = controller.NewUploadController(uploadService, renderer)

	// Socket churn goes to its own file instead of the main log.
	wsLogger := logger.NewFileLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "auth-events.log"))
	c.AuthEventHandler = handler.NewAuthEventHandler(provider, authService, wsLogger)

	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}
