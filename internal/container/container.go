package container

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lemonbi/storefront/internal/catalog"
	"lemonbi/storefront/internal/config"
	"lemonbi/storefront/internal/erp"
	"lemonbi/storefront/internal/events"
	"lemonbi/storefront/internal/repository"
	"lemonbi/storefront/internal/server"
	"lemonbi/storefront/internal/service"
	"lemonbi/storefront/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     erp.Client
	Repository repository.TenantRepository
	Status     state.StatusStore
	Events     events.Publisher

	Service *service.Service
	Server  *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	db, err := pgxpool.New(context.Background(),
		fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
		))
	if err != nil {
		return nil, err
	}
	container.db = db

	tenantRepo := repository.NewTenantRepository(db)
	container.Repository = tenantRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	// Test connection
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("Connected to Redis successfully")

	container.redis = rdb
	container.Status = state.NewRedisStatusStore(rdb)
	container.Events = events.NewRedisPublisher(rdb)

	transport := erp.NewTransport(cfg.Erp)
	erpClient := erp.NewClient(transport, cfg.Erp.SearchLimit)
	container.Client = erpClient

	categories := catalog.NewCategoryResolver(erpClient)
	resolver := catalog.NewResolver(erpClient, categories, cfg.Erp.ProductLimit, cfg.Erp.FallbackLimit)

	svc := service.NewService(
		tenantRepo,
		erpClient,
		resolver,
		container.Status,
		container.Events,
	)
	container.Service = svc

	container.Server = server.New(cfg.Server, cfg.Admin.Token, svc)

	return container, nil
}

// Run serves the HTTP API until the context is cancelled
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	c.db.Close()
	if err := c.redis.Close(); err != nil {
		return err
	}

	log.Info("Container shut down successfully")
	return nil
}
