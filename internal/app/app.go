package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fsdevblog/splitledger/internal/config"
	"github.com/fsdevblog/splitledger/internal/logger"
	"github.com/fsdevblog/splitledger/internal/repository/pgrepo"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/internal/service"
	"github.com/fsdevblog/splitledger/internal/transport/api"
	"github.com/fsdevblog/splitledger/internal/transport/events"
	"github.com/fsdevblog/splitledger/pkg/uow"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

// Run поднимает соединение с БД, HTTP сервер и диспетчер событий и ждет сигнала остановки.
// После сигнала сервер дорабатывает текущие запросы, а диспетчер публикует накопленные события.
func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithFields(logrus.Fields{
		"address":      a.Config.RunAddress,
		"amqp":         a.Config.AMQPURL != "",
		"eventWorkers": a.Config.EventWorkers,
	}).Info("Starting app")

	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %w", connErr)
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %w", uowErr)
	}

	broker, brokerErr := a.initBroker()
	if brokerErr != nil {
		return fmt.Errorf("app run: %w", brokerErr)
	}
	defer func() {
		if closeErr := broker.Close(); closeErr != nil {
			a.Logger.WithError(closeErr).Error("close event broker")
		}
	}()

	dispatcher := events.New(broker, a.Logger).SetWorkers(a.Config.EventWorkers)

	services, sErr := service.Factory(unitOfWork, dispatcher)
	if sErr != nil {
		return fmt.Errorf("app run: %w", sErr)
	}

	router, routerErr := api.New(api.RouterArgs{
		Logger:         a.Logger,
		UserService:    services.UserService,
		GroupService:   services.GroupService,
		ExpenseService: services.ExpenseService,
		BalanceService: services.BalanceService,
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %w", routerErr)
	}

	server := &http.Server{ //nolint:gosec
		Addr:    a.Config.RunAddress,
		Handler: router,
	}

	// диспетчер останавливается после HTTP сервера: запросы, завершенные во время Shutdown, успевают
	// поставить события в очередь до ее слива.
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()

	g, gCtx := errgroup.WithContext(notifyCtx)

	g.Go(func() error {
		return dispatcher.Run(dispatcherCtx)
	})

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer stopDispatcher()

		<-gCtx.Done()
		logger.Component(a.Logger, "http").Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}
	return notifyCtx.Err() //nolint:wrapcheck
}

func (a *App) initBroker() (events.Broker, error) {
	if a.Config.AMQPURL == "" {
		logger.Component(a.Logger, "events").Warn("AMQP URL is not set, events will only be logged")
		return events.NewLogBroker(a.Logger), nil
	}

	broker, err := events.NewAMQPBroker(a.Config.AMQPURL, a.Config.AMQPExchange)
	if err != nil {
		return nil, fmt.Errorf("init AMQP broker: %w", err)
	}
	return broker, nil
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.GroupRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewGroupRepository(dbtx)
		},
		repoargs.ExpenseRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewExpenseRepository(dbtx)
		},
	}

	for name, factory := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %w", regErr)
		}
	}
	return unitOfWork, nil
}
