package service

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/marminbh/indexpush-svc/internal/classifier"
	"github.com/marminbh/indexpush-svc/internal/config"
	"github.com/marminbh/indexpush-svc/internal/contentstore"
	"github.com/marminbh/indexpush-svc/internal/links"
	"github.com/marminbh/indexpush-svc/internal/metrics"
	"github.com/marminbh/indexpush-svc/internal/models"
	"github.com/marminbh/indexpush-svc/internal/publish"
	"github.com/marminbh/indexpush-svc/internal/pusher"
	"github.com/marminbh/indexpush-svc/internal/rabbitmq"
	"github.com/marminbh/indexpush-svc/internal/sites"
)

// Service holds all application dependencies
// This eliminates global state and enables proper dependency injection
type Service struct {
	DB      *gorm.DB
	Logger  *zap.Logger
	RMQ     *rabbitmq.Connection
	Metrics *metrics.Metrics
	PushLog *contentstore.PushLog
	Sites   *sites.Registry
	Handler *publish.Handler
}

// NewService builds the publish pipeline on top of the open connections.
// A nil tenant disables processing; the service still starts so health and
// metrics stay available.
func NewService(cfg *config.Config, tenant *config.TenantConfig, db *gorm.DB, logger *zap.Logger, rmq *rabbitmq.Connection) (*Service, error) {
	infos, err := sites.LoadFile(cfg.Sites.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	registry := sites.NewRegistry(infos)
	if registry.Len() == 0 {
		logger.Warn("No usable sites configured, every notification will be skipped",
			zap.String("file", cfg.Sites.File),
		)
	}

	m := metrics.New()
	pushLog := contentstore.NewPushLog(db)

	var handler *publish.Handler
	if tenant == nil {
		handler = publish.NewHandler(false, nil, nil, m, logger)
	} else {
		resolver := links.NewResolver(links.NewProvider(models.LanguageEmbeddingNever, true), nil, logger)
		dispatcher := pusher.NewDispatcher(
			tenant,
			registry,
			resolver,
			pusher.NewClient(tenant, logger),
			pushLog,
			m,
			logger,
		)
		handler = publish.NewHandler(true, classifier.New(contentstore.NewStore(db)), dispatcher, m, logger)
	}

	logger.Info("Publish pipeline ready",
		zap.Int("sites", registry.Len()),
		zap.Bool("processing_enabled", handler.Enabled()),
	)

	return &Service{
		DB:      db,
		Logger:  logger,
		RMQ:     rmq,
		Metrics: m,
		PushLog: pushLog,
		Sites:   registry,
		Handler: handler,
	}, nil
}
