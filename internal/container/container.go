package container

import (
	"context"
	"fmt"
	"net/http"

	"placementdash/adapters/excel"
	"placementdash/adapters/postgres"
	"placementdash/adapters/published"
	"placementdash/adapters/sheets"
	"placementdash/adapters/source"
	"placementdash/app"
	"placementdash/internal"
	"placementdash/internal/config"
	"placementdash/internal/credentials"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Credentials *credentials.Handle
	DB          *sqlx.DB

	// Data sources
	Selector *source.Selector

	// Services
	DashboardService *app.DashboardService
}

// Option customizes container construction
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *internal.Logger
}

// WithHTTPClient overrides the client used for published CSV fetches
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithLogger overrides the logger built from cfg.Log
func WithLogger(logger *internal.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New wires every component from cfg. Credentials are resolved here, once.
func New(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	}

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		Credentials: credentials.Resolve(cfg.Credentials),
	}

	if c.Credentials.Configured() {
		if c.Credentials.Err != nil {
			logger.Warn("[Container] Credentials from %s are unusable: %v", c.Credentials.Source, c.Credentials.Err)
		} else {
			logger.Info("[Container] Using service account %s", c.Credentials.ClientEmail)
		}
	}

	selectorOpts := source.Options{
		Credentials: c.Credentials,
		Sheets:      sheets.NewReader(c.Credentials, logger),
		Published:   published.NewCSVReader(o.httpClient, cfg.Server.FetchTimeout, logger),
		Files:       excel.NewDataReader(logger),
		Logger:      logger,
	}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		c.DB = db
		selectorOpts.Database = postgres.NewTableSource(db, logger)
	}

	c.Selector = source.NewSelector(selectorOpts)
	c.DashboardService = app.NewDashboardService(c.Selector, cfg.Sheets, cfg.Server.FetchTimeout, logger)

	for _, choice := range c.Selector.Describe(c.DashboardService.Datasets()...) {
		logger.Info("[Container] Dataset %q served by %s", choice.Dataset, choice.Strategy)
	}

	return c, nil
}

// Shutdown releases held resources
func (c *Container) Shutdown(ctx context.Context) error {
	_ = c.Logger.Sync()
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
