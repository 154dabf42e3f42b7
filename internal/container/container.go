package container

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/config"
	"github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/domain/event"
	repo "github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/eventbus"
	fsinfra "github.com/oksasatya/go-user-registration/internal/infrastructure/firestore"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/idgen"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-user-registration/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/search"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/security"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
	mailtpl "github.com/oksasatya/go-user-registration/pkg/mailer/templates"
)

// Probe reports whether a backing service is reachable.
type Probe func(ctx context.Context) error

// Container holds the constructed components of one process. Optional
// integrations (Redis, RabbitMQ, Elasticsearch) are nil when disabled or
// unreachable at start-up.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Store     repo.UserRepository
	Bus       *eventbus.Bus
	Passwords *security.PasswordService
	Users     *application.UserService

	Redis     *redis.Client
	RabbitPub *helpers.RabbitPublisher
	ES        *elasticsearch.Client

	Probes map[string]Probe

	closers []func()
}

// New builds the store selected by cfg.StoreDriver, the event bus, the
// registration service and every user.created subscriber.
// Close must be called to release what New acquired.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Probes: map[string]Probe{}}

	if err := c.initStore(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.Passwords = security.NewPasswordService(cfg.BcryptCost)
	c.Bus = eventbus.New(logger, cfg.EventBufferSize)
	c.onClose(func() { _ = c.Bus.Close() })

	c.initRedis(ctx)
	c.initRabbit()
	c.initSearch(ctx)

	c.Users = application.NewUserService(c.Store, c.Passwords, idgen.NewUUIDGenerator(), c.Bus, logger)
	if err := c.subscribe(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close releases resources in reverse order of acquisition. The bus is
// drained before the store goes away.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Container) onClose(fn func()) { c.closers = append(c.closers, fn) }

func (c *Container) initStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.onClose(pool.Close)
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, c.Logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		c.Store = pginfra.NewUserRepository(pool)
		c.Probes["postgres"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	case config.StoreFirestore:
		client, err := helpers.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsPath)
		if err != nil {
			return fmt.Errorf("connect firestore: %w", err)
		}
		c.onClose(func() { _ = client.Close() })
		c.Store = fsinfra.NewUserRepository(client, cfg.FirestoreCollection)
	case config.StoreMemory:
		c.Logger.Warn("using in-memory user store; data is lost on restart")
		c.Store = memory.NewUserRepository()
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	c.Logger.WithField("driver", cfg.StoreDriver).Info("user store ready")
	return nil
}

func (c *Container) initRedis(ctx context.Context) {
	cfg := c.Config
	if cfg.RedisAddr == "" || cfg.RegisterRateLimit <= 0 {
		return
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	c.onClose(func() { _ = rdb.Close() })
	if err := helpers.PingRedis(ctx, rdb, 2*time.Second); err != nil {
		// the limiter fails open, keep the client so it recovers with Redis
		c.Logger.WithError(err).Warn("redis unreachable at start-up")
	}
	c.Redis = rdb
	c.Probes["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

func (c *Container) initRabbit() {
	cfg := c.Config
	if !cfg.MailSendEnabled {
		return
	}
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.AppName)
	if err != nil {
		c.Logger.WithError(err).Warn("rabbitmq unavailable, welcome emails disabled")
		return
	}
	c.onClose(pub.Close)
	c.RabbitPub = pub
}

func (c *Container) initSearch(ctx context.Context) {
	cfg := c.Config
	if !cfg.SearchIndexEnabled {
		return
	}
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		c.Logger.WithError(err).Warn("elasticsearch client init failed, search projection disabled")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := helpers.EnsureUsersIndex(ctx, es, cfg.ESUsersIndex); err != nil {
		c.Logger.WithError(err).Warn("ensure users index failed, search projection disabled")
		return
	}
	c.ES = es
}

func (c *Container) subscribe() error {
	deferred := application.NewDeferredPasswordHandler(c.Store, c.Passwords, c.Config.GeneratedPasswordLength, c.Logger)
	if err := c.Bus.Subscribe(event.TopicUserCreated, "deferred-password", eventbus.Handle(deferred.HandleUserCreated)); err != nil {
		return fmt.Errorf("subscribe deferred password handler: %w", err)
	}

	if c.RabbitPub != nil {
		welcome := application.NewWelcomeEmailHandler(c.RabbitPub,
			mailtpl.WithAppName(c.Config.AppName),
			mailtpl.WithCompanyName(c.Config.CompanyName),
			mailtpl.WithSupportURL(c.Config.SupportURL),
		)
		if err := c.Bus.Subscribe(event.TopicUserCreated, "welcome-email", eventbus.Handle(welcome.HandleUserCreated)); err != nil {
			return fmt.Errorf("subscribe welcome email handler: %w", err)
		}
	}

	if c.ES != nil {
		indexer := search.NewUserIndexer(c.ES, c.Config.ESUsersIndex)
		if err := c.Bus.Subscribe(event.TopicUserCreated, "search-index", eventbus.Handle(indexer.HandleUserCreated)); err != nil {
			return fmt.Errorf("subscribe user indexer: %w", err)
		}
	}
	return nil
}
