package routes

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/internal/activity"
	"loan-broker/internal/authz"
	"loan-broker/internal/listeners"
	"loan-broker/internal/repositories"
	"loan-broker/internal/services"
	"loan-broker/pkg/config"
	"loan-broker/pkg/eventbus"
	"loan-broker/pkg/metrics"
	"loan-broker/pkg/middleware"
	"loan-broker/pkg/service"
)

type Loggers struct {
	Main          *zap.Logger
	Auth          *zap.Logger
	Matching      *zap.Logger
	CreditRequest *zap.Logger
}

// InitRouter собирает репозитории, сервисы и контроллеры и вешает маршруты на e.
// В режиме inline подбор подписывается на bus; в режиме redis задания уходят в очередь.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	appMetrics *metrics.Metrics,
	loggers *Loggers,
	cfg *config.Config,
) error {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	gatekeeper := authz.NewGatekeeper(nil).OnDeny(func(entity authz.Entity, op authz.Operation, policy string) {
		appMetrics.IncrAccessDenied(string(entity), string(op), policy)
	})
	base := services.NewBaseService(gatekeeper, activity.SystemClock, loggers.Main)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, loggers.Auth)
	companyRepo := repositories.NewCompanyRepository(dbConn, loggers.Main)
	borrowerRepo := repositories.NewBorrowerRepository(dbConn, loggers.Main)
	offerRepo := repositories.NewOfferRepository(dbConn, loggers.Main)
	creditRequestRepo := repositories.NewCreditRequestRepository(dbConn, loggers.CreditRequest)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	matchQueue := repositories.NewRedisMatchQueue(redisClient, cfg.Matching.QueueKey)

	// --- 2. ПОДБОР ---
	dispatcher, err := services.NewMatchDispatcher(cfg.Matching.Dispatch, bus, matchQueue, activity.SystemClock, loggers.Matching)
	if err != nil {
		return err
	}
	if cfg.Matching.Dispatch == "" || cfg.Matching.Dispatch == services.DispatchInline {
		matchListener, err := listeners.NewMatchListenerFromConfig(dbConn, cfg.Matching, appMetrics, loggers.Matching)
		if err != nil {
			return err
		}
		matchListener.Register(bus)
	}

	statusPolicy, err := services.NewStatusPolicy(cfg.CreditRequest.StatusPolicy)
	if err != nil {
		return fmt.Errorf("CREDIT_REQUEST_STATUS_POLICY: %w", err)
	}

	// --- 3. СЕРВИСЫ ---
	actorService := services.NewActorService(userRepo, companyRepo, cacheRepo, appMetrics, loggers.Auth, cfg.Auth.ActorCacheTTL)
	authService := services.NewAuthService(userRepo, actorService, jwtSvc, loggers.Auth)
	companyService := services.NewCompanyService(base, companyRepo, loggers.Main)
	borrowerService := services.NewBorrowerService(base, borrowerRepo, loggers.Main)
	offerService := services.NewOfferService(base, offerRepo, companyRepo, loggers.Main)
	creditRequestService := services.NewCreditRequestService(
		base, creditRequestRepo, borrowerRepo, offerRepo,
		services.NewCreditRequestLifecycle(statusPolicy), dispatcher, loggers.CreditRequest,
	)

	// --- 4. РОУТЕРЫ ---
	authMW := middleware.NewAuthMiddleware(jwtSvc, actorService.Attach, loggers.Auth)
	e.GET("/metrics", echo.WrapHandler(appMetrics.Handler()))

	api := e.Group("/api")
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authService, loggers.Auth, authMW)
	runCompanyRouter(secureGroup, companyService, loggers.Main)
	runBorrowerRouter(secureGroup, borrowerService, loggers.Main)
	runOfferRouter(secureGroup, offerService, loggers.Main)
	runCreditRequestRouter(secureGroup, creditRequestService, loggers.CreditRequest)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено",
		zap.String("matching_dispatch", cfg.Matching.Dispatch),
		zap.String("status_policy", cfg.CreditRequest.StatusPolicy),
	)
	return nil
}
