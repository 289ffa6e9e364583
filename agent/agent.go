package agent

import (
	"sync"
	"time"

	"github.com/paperlex/paperlex/config"
	"github.com/paperlex/paperlex/connector"
	"github.com/paperlex/paperlex/contacts"
	"github.com/paperlex/paperlex/engine"
	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/metadata"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	redisStorage "github.com/paperlex/paperlex/persistence/redis"
	"github.com/paperlex/paperlex/rest"
	"github.com/paperlex/paperlex/scheduler"
	"github.com/paperlex/paperlex/service"
)

// Agent wires every component together and owns their lifecycle.
type Agent struct {
	Config config.Config

	storage         persistence.Storage
	metadataService metadata.MetadataService
	connectors      map[model.Target]connector.Connector
	dispatchService *service.EventDispatchService
	scheduler       *scheduler.Scheduler
	reconciler      *contacts.Reconciler
	syncJob         *contacts.SyncJob
	httpServer      *rest.Server

	shutdown     bool
	shutdownLock sync.Mutex
	wg           sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{Config: conf}
	setup := []func() error{
		a.setupStorage,
		a.setupConnectors,
		a.setupDispatch,
		a.setupScheduler,
		a.setupReconciler,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		a.storage = redisStorage.NewStorage(redisStorage.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		})
	default:
		a.storage = persistence.NewInMemStorage()
	}
	a.metadataService = metadata.NewMetadataService(a.storage.Workflows())
	return nil
}

func (a *Agent) setupConnectors() error {
	retry := connector.DefaultRetryPolicy()
	if a.Config.RetryMaxTries > 0 {
		retry.MaxTries = a.Config.RetryMaxTries
	}
	a.connectors = make(map[model.Target]connector.Connector)
	if a.Config.Paperless.Active {
		limiter := connector.NewRateLimiter(a.Config.Paperless.Rate, a.Config.Paperless.Burst)
		pl := connector.NewPaperless(a.Config.Paperless.BaseUrl, a.Config.Paperless.Credential)
		a.connectors[model.TARGET_PAPERLESS] = connector.NewDispatcher(pl, limiter, retry)
	}
	if a.Config.Lexoffice.Active {
		limiter := connector.NewRateLimiter(a.Config.Lexoffice.Rate, a.Config.Lexoffice.Burst)
		lx := connector.NewLexoffice(a.Config.Lexoffice.BaseUrl, a.Config.Lexoffice.Credential)
		a.connectors[model.TARGET_LEXOFFICE] = connector.NewDispatcher(lx, limiter, retry)
	}
	return nil
}

func (a *Agent) setupDispatch() error {
	matcher := engine.NewTriggerMatcher(a.metadataService)
	executor := engine.NewActionExecutor(a.connectors)
	recorder := engine.NewExecutionRecorder(a.storage.Logs())
	locks := engine.NewLockArena()

	timeout := time.Duration(a.Config.ExecTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	a.dispatchService = service.NewEventDispatchService(
		matcher, executor, recorder, locks, timeout, &a.wg, a.Config.QueueCapacity)

	a.reconciler = contacts.NewReconciler(
		a.connectors[model.TARGET_PAPERLESS],
		a.connectors[model.TARGET_LEXOFFICE],
		a.storage.Mappings(),
		a.storage.Logs(),
		locks,
	)
	return nil
}

func (a *Agent) setupScheduler() error {
	a.scheduler = scheduler.NewScheduler(a.metadataService, a.dispatchService, &a.wg)
	return nil
}

func (a *Agent) setupReconciler() error {
	cadence := a.Config.SyncCron
	if cadence == "" {
		cadence = "*/15 * * * *"
	}
	job, err := contacts.NewSyncJob(a.reconciler, cadence, &a.wg)
	if err != nil {
		return err
	}
	a.syncJob = job
	return nil
}

func (a *Agent) setupHttpServer() error {
	server, err := rest.NewServer(
		a.Config.HttpPort,
		a.metadataService,
		a.dispatchService,
		a.storage,
		a.reconciler,
		a.connectors,
	)
	if err != nil {
		return err
	}
	a.httpServer = server
	return nil
}

func (a *Agent) Start() error {
	a.dispatchService.Start()
	a.scheduler.Start()
	a.syncJob.Start()
	go func() {
		if err := a.httpServer.Start(); err != nil {
			logger.Error("http server stopped")
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	a.syncJob.Stop()
	a.scheduler.Stop()
	a.dispatchService.Stop()
	if err := a.httpServer.Stop(); err != nil {
		return err
	}
	a.wg.Wait()
	return nil
}
