package routes

import (
	"context"
	"database/sql"
	"fmt"

	"contacto_profesionales/internal/adapter/persistence/repository"
	"contacto_profesionales/internal/config"
	"contacto_profesionales/internal/infrastructure/cache"
	"contacto_profesionales/internal/infrastructure/database"
	"contacto_profesionales/internal/infrastructure/notification"
	"contacto_profesionales/internal/platform/logger"
	"contacto_profesionales/internal/platform/metrics"
	"contacto_profesionales/internal/usecase/interfaces"

	"go.uber.org/zap"
)

// dependencies are the long-lived collaborators built from the configuration.
type dependencies struct {
	Repository interfaces.IServiceRequestRepository
	Notifier   *notification.Dispatcher
	closers    []func()
}

// Close releases connections in reverse order of creation.
func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config, appLog *logger.Logger, m *metrics.MetricsManager) (*dependencies, error) {
	deps := &dependencies{}

	repo, err := deps.buildRepository(ctx, cfg, appLog)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Repository = repo

	notifier, err := deps.buildNotifier(cfg, appLog, m)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Notifier = notifier

	return deps, nil
}

func (d *dependencies) buildRepository(ctx context.Context, cfg *config.Config, appLog *logger.Logger) (interfaces.IServiceRequestRepository, error) {
	var repo interfaces.IServiceRequestRepository

	switch cfg.StorageDriver {
	case config.DriverDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, database.DynamoDBSettings{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return nil, err
		}
		repo = repository.NewServiceRequestDynamoRepository(ddb, cfg.ServiceRequestsTable)

	case config.DriverPostgres, config.DriverSQLite:
		var (
			db      *sql.DB
			dialect repository.SQLDialect
			err     error
		)
		if cfg.StorageDriver == config.DriverPostgres {
			db, err = database.OpenPostgres(ctx, cfg.DatabaseDSN)
			dialect = repository.DialectPostgres
		} else {
			db, err = database.OpenSQLite(ctx, cfg.SQLitePath)
			dialect = repository.DialectSQLite
		}
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = db.Close() })

		sqlRepo := repository.NewServiceRequestSQLRepository(db, dialect)
		if err := sqlRepo.Migrate(ctx, cfg.StrictPendingUniqueness); err != nil {
			return nil, fmt.Errorf("migrate %s store: %w", cfg.StorageDriver, err)
		}
		repo = sqlRepo

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.RedisAddr == "" {
		return repo, nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		// counts are still served from the store
		appLog.Warn("Redis unavailable, pending counts will not be cached", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return repo, nil
	}
	d.closers = append(d.closers, func() { _ = rdb.Close() })
	return repository.NewPendingCountCache(repo, rdb, cfg.PendingCountTTL, appLog), nil
}

func (d *dependencies) buildNotifier(cfg *config.Config, appLog *logger.Logger, m *metrics.MetricsManager) (*notification.Dispatcher, error) {
	dispatcher := notification.NewDispatcher(appLog, m, cfg.NotifyTimeout, notification.NewLogChannel(appLog))

	if cfg.NATSURL != "" {
		pub, err := notification.NewPublisher(cfg.NATSURL, appLog, cfg.ServiceName)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, pub.Close)
		dispatcher.Register(notification.NewNATSChannel(pub, cfg.NATSSubjectPrefix))
	}

	if cfg.EmailEnabled() {
		sender, err := notification.NewSMTPSender(notification.SMTPSettings{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			Sender:     cfg.SMTPSender,
			Encryption: cfg.SMTPEncryption,
		}, appLog)
		if err != nil {
			return nil, err
		}
		dispatcher.Register(notification.NewEmailChannel(sender, notification.StaticRecipients(cfg.NotifyEmailTo)))
	}

	return dispatcher, nil
}
