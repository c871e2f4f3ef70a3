package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/notifier"
	postgres_adapter "github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/postgres"
	rabbitmq_adapter "github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/rabbitmq"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/rentger_client"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/rest"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/runlock"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/static_catalog"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/configs"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/constants"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contracts"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/usecase"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/postgres"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_common"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_consumer"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App - структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	redisClient  *redis.Client
	apiServer    *rest.Server
	notifier     *notifier.SSENotifier
	catalogView  *usecase.CatalogViewUseCase
	fluentClient *fluent.Fluent
	logger       port.LoggerPort
	baseLogger   port.LoggerPort

	connManager    *rabbitmq_common.ConnectionManager
	eventsProducer *rabbitmq_producer.Publisher
	listeners      map[string]port.EventListenerPort
}

// NewApp - точка сборки всех зависимостей сервиса
func NewApp(envPath ...string) (*App, error) {
	appConfig, err := configs.LoadConfig(envPath...)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	baseLogger, fluentClient, err := NewLogger(appConfig)
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})

	application := &App{
		config:       appConfig,
		fluentClient: fluentClient,
		logger:       appLogger,
		baseLogger:   baseLogger,
		listeners:    make(map[string]port.EventListenerPort),
	}

	if err := application.build(); err != nil {
		application.closeResources()
		return nil, err
	}
	return application, nil
}

func (a *App) build() error {
	cfg := a.config
	ctx := contextkeys.ContextWithLogger(context.Background(), a.baseLogger)

	if err := contracts.Load(); err != nil {
		a.logger.Error("Failed to compile event schemas", err, nil)
		return fmt.Errorf("failed to compile event schemas: %w", err)
	}
	a.logger.Info("Event schemas compiled", port.Fields{"schemas": contracts.Registered()})

	// 1. Хранилище
	dbPool, err := postgres.NewClient(ctx, postgres.Config{
		DatabaseURL: cfg.Database.URL,
		MaxConns:    int32(cfg.Database.MaxConns),
	})
	if err != nil {
		a.logger.Error("Failed to connect to PostgreSQL", err, nil)
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

	if err := postgres_adapter.EnsureSchema(ctx, dbPool); err != nil {
		a.logger.Error("Failed to apply database schema", err, nil)
		return err
	}

	contractRepo, err := postgres_adapter.NewPostgresContractRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create contract repository: %w", err)
	}
	catalogRepo, err := postgres_adapter.NewPostgresCatalogRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create catalog repository: %w", err)
	}

	staticCatalog, err := static_catalog.NewEmbedded()
	if err != nil {
		a.logger.Error("Failed to load static catalog", err, nil)
		return fmt.Errorf("failed to load static catalog: %w", err)
	}
	a.logger.Info("Postgres repositories and static catalog initialized.", port.Fields{
		"static_records": len(staticCatalog.Records()),
	})

	// 2. Внешняя система
	remoteClient, err := rentger_client.NewClient(rentger_client.Config{
		BaseURL:    cfg.Rentger.BaseURL,
		APIToken:   cfg.Rentger.APIToken,
		Timeout:    cfg.Rentger.Timeout,
		RetryCount: cfg.Rentger.RetryCount,
	})
	if err != nil {
		a.logger.Error("Failed to create remote system client", err, nil)
		return fmt.Errorf("failed to create remote system client: %w", err)
	}

	// 3. Блокировка запуска сверки
	runLock, err := a.buildRunLock(ctx)
	if err != nil {
		return err
	}

	// 4. RabbitMQ: продюсер отчетов
	var reportPublisher port.ReconcileReportPublisherPort
	if cfg.RabbitMQ.Enabled {
		connManagerLogger := a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		connManager, err := rabbitmq_common.NewConnectionManager(
			rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
			rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger),
		)
		if err != nil {
			a.logger.Error("Failed to create connection manager", err, nil)
			return fmt.Errorf("failed to create connection manager: %w", err)
		}
		a.connManager = connManager
		a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

		producerLogger := a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
		eventsProducer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
			ExchangeName:             constants.ServiceExchange,
			ExchangeType:             constants.ServiceExchangeType,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
		}, connManager)
		if err != nil {
			a.logger.Error("Failed to create event producer", err, nil)
			return fmt.Errorf("failed to create event producer: %w", err)
		}
		a.eventsProducer = eventsProducer

		reportAdapter, err := rabbitmq_adapter.NewReconcileReportPublisherAdapter(eventsProducer, constants.RoutingKeyContractsReconciled)
		if err != nil {
			return err
		}
		reportPublisher = reportAdapter
		a.logger.Info("RabbitMQ Event Producer initialized.", nil)
	} else {
		a.logger.Warn("RabbitMQ is disabled: no change notifications, no scheduled reconciliation, no report events.", nil)
	}

	// 5. Use cases
	a.notifier = notifier.NewSSENotifier(a.baseLogger)
	a.catalogView = usecase.NewCatalogViewUseCase(catalogRepo, staticCatalog, a.notifier)
	resolveAssetUC := usecase.NewResolveAssetUseCase(remoteClient)
	listContractsUC := usecase.NewListContractsUseCase(contractRepo)
	createContractUC := usecase.NewCreateContractUseCase(remoteClient, contractRepo, cfg.DefaultPhoneRegion)
	reconcileUC := usecase.NewReconcileContractsUseCase(remoteClient, contractRepo, runLock, reportPublisher, cfg.Reconcile.Workers)
	a.logger.Info("All use cases initialized.", nil)

	// 6. Входящие адаптеры
	if cfg.RabbitMQ.Enabled {
		catalogListener, err := rabbitmq_adapter.NewCatalogChangesConsumerAdapter(
			consumerConfig(cfg.RabbitMQ.URL, constants.QueueCatalogChanges, constants.RoutingKeyCatalogChanged, "catalog-changes-adapter"),
			a.catalogView, a.baseLogger, a.connManager,
		)
		if err != nil {
			a.logger.Error("Failed to create catalog changes listener", err, nil)
			return err
		}
		a.listeners["Catalog Changes Listener"] = catalogListener

		reconcileListener, err := rabbitmq_adapter.NewReconcileTasksConsumerAdapter(
			consumerConfig(cfg.RabbitMQ.URL, constants.QueueReconcileTasks, constants.RoutingKeyReconcileRequested, "reconcile-tasks-adapter"),
			reconcileUC, a.baseLogger, a.connManager,
		)
		if err != nil {
			a.logger.Error("Failed to create reconcile tasks listener", err, nil)
			return err
		}
		a.listeners["Reconcile Tasks Listener"] = reconcileListener
		a.logger.Info("RabbitMQ listeners initialized.", port.Fields{"count": len(a.listeners)})
	}

	router := rest.NewRouter(
		rest.NewCatalogHandler(a.catalogView, a.notifier),
		rest.NewContractHandler(resolveAssetUC, listContractsUC, createContractUC, reconcileUC),
		cfg.Rest.CORSAllowedOrigins,
		a.baseLogger,
	)
	a.apiServer = rest.NewServer(cfg.Rest.Port, router, a.baseLogger)
	a.logger.Info("REST API server configured.", nil)

	return nil
}

func (a *App) buildRunLock(ctx context.Context) (port.RunLockPort, error) {
	if !a.config.Redis.Enabled {
		a.logger.Info("Redis is disabled, using in-process run lock.", nil)
		return runlock.NewMemoryRunLock(), nil
	}

	redisClient, err := runlock.NewRedisClient(ctx, runlock.RedisConfig{
		Address:  a.config.Redis.Address,
		Password: a.config.Redis.Password,
		DB:       a.config.Redis.DB,
	})
	if err != nil {
		a.logger.Error("Failed to connect to Redis", err, nil)
		return nil, err
	}
	a.redisClient = redisClient

	lock, err := runlock.NewRedisRunLock(redisClient, a.config.Reconcile.LockTTL)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Redis run lock initialized.", port.Fields{"ttl": a.config.Reconcile.LockTTL.String()})
	return lock, nil
}

func consumerConfig(url, queue, routingKey, tag string) rabbitmq_consumer.ConsumerConfig {
	return rabbitmq_consumer.ConsumerConfig{
		Config:                 rabbitmq_common.Config{URL: url},
		QueueName:              queue,
		DurableQueue:           true,
		DeclareQueue:           true,
		ExchangeNameForBind:    constants.ServiceExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    constants.ServiceExchangeType,
		RoutingKeyForBind:      routingKey,
		PrefetchCount:          1,
		ConsumerTag:            tag,

		EnableRetryMechanism: true,
		RetryExchange:        queue + "_retry_ex",
		RetryQueue:           queue + "_retry_wait_10s",
		RetryTTL:             10000,

		FinalDLXExchange:   constants.FinalDLXExchange,
		FinalDLQ:           constants.FinalDLQ,
		FinalDLQRoutingKey: constants.FinalDLQRoutingKey,
		MaxRetries:         3,
	}
}

// Run запускает компоненты и ждет сигнала завершения
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)

	// первичная сборка каталога; при недоступном хранилище читатели получат статический каталог
	startCtx := contextkeys.ContextWithLogger(appCtx, a.baseLogger)
	if records, err := a.catalogView.Refresh(startCtx); err != nil {
		a.logger.Warn("Initial catalog load failed, will retry on next change notification", port.Fields{"error": err.Error()})
	} else {
		a.logger.Info("Initial catalog loaded", port.Fields{"records": len(records)})
	}

	errorsCh := make(chan error, len(a.listeners)+1)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	for name, listener := range a.listeners {
		wg.Add(1)
		go startListener(name, listener)
	}

	go func() {
		if err := a.apiServer.Start(appCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	cancelApp()
	return runErr
}

// closeResources закрывает все, что успело открыться; безопасен при частичной сборке
func (a *App) closeResources() {
	for name, listener := range a.listeners {
		if err := listener.Close(); err != nil {
			a.logger.Error("Error closing listener", err, port.Fields{"listener_name": name})
		}
	}

	if a.eventsProducer != nil {
		if err := a.eventsProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}

	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}

	if a.notifier != nil {
		_ = a.notifier.Close()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing redis client", err, nil)
		}
	}

	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent уже может быть недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
