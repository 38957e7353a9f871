package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/azorastack/market/internal/config"
	"github.com/azorastack/market/internal/metrics"
	"github.com/azorastack/market/internal/notify"
	"github.com/azorastack/market/internal/repository/pgrepo"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/internal/service"
	"github.com/azorastack/market/internal/service/settings"
	"github.com/azorastack/market/internal/transport/api"
	"github.com/azorastack/market/pkg/uow"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
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

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	metrics.Init()

	notifier, notifierCloser, notifierErr := a.initNotifier()
	if notifierErr != nil {
		return fmt.Errorf("app run: %s", notifierErr.Error())
	}
	defer notifierCloser()

	settingsRepo, settingsRepoErr :=
		uow.GetRepositoryAs[settings.Repository](unitOfWork, uow.RepositoryName(repoargs.SettingsRepoName))
	if settingsRepoErr != nil {
		return fmt.Errorf("app run: %s", settingsRepoErr.Error())
	}
	settingsCache := settings.New(settingsRepo)

	services, sErr := service.Factory(unitOfWork, settingsCache, notifier, a.Logger)
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:            a.Logger,
		UserService:       services.UserService,
		ProjectService:    services.ProjectService,
		OrderService:      services.OrderService,
		PaymentService:    services.PaymentService,
		WalletService:     services.WalletService,
		WithdrawalService: services.WithdrawalService,
		Settings:          settingsCache,
		JWTSecretKey:      []byte(a.Config.JWTUserSecret),
		WebhookSecretKey:  []byte(a.Config.WebhookSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// initNotifier picks Kafka when brokers are configured, the log notifier
// otherwise. The returned closer is a no-op for the log notifier.
func (a *App) initNotifier() (notify.Notifier, func(), error) {
	brokers := a.Config.KafkaBrokerList()
	if len(brokers) == 0 {
		return notify.NewLogNotifier(a.Logger), func() {}, nil
	}

	kafkaNotifier, err := notify.NewKafkaNotifier(brokers, a.Config.KafkaTopic, a.Logger)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if closeErr := kafkaNotifier.Close(); closeErr != nil {
			a.Logger.WithError(closeErr).Error("closing kafka notifier")
		}
	}
	return kafkaNotifier, closer, nil
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.ProjectRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewProjectRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.WalletTransactionRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWalletTransactionRepository(dbtx)
		},
		repoargs.WithdrawalRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWithdrawalRepository(dbtx)
		},
		repoargs.SettingsRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewSettingsRepository(dbtx)
		},
		repoargs.AuditLogRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewAuditLogRepository(dbtx)
		},
	}

	for name, factory := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
