package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"loan-broker/internal/listeners"
	"loan-broker/internal/repositories"
	"loan-broker/internal/routes"
	"loan-broker/internal/services"
	"loan-broker/pkg/config"
	"loan-broker/pkg/database/postgresql"
	"loan-broker/pkg/database/redisdb"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/eventbus"
	applogger "loan-broker/pkg/logger"
	"loan-broker/pkg/metrics"
	appmiddleware "loan-broker/pkg/middleware"
	"loan-broker/pkg/service"
	"loan-broker/pkg/utils"
	"loan-broker/pkg/validation"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	appMetrics := metrics.NewMetrics()

	// 2. Echo и middleware
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(appmiddleware.RequestLogger(logger.Named("http"), appMetrics))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition, "X-Match-Job-ID", "X-Request-ID"},
	}))
	e.Validator = validation.New()

	// 3. Базы данных
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к БД", zap.Error(err))
	}
	defer dbConn.Close()

	redisClient, err := redisdb.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 4. Сервисы и роуты
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger.Named("jwt"))
	bus := eventbus.NewWithTimeout(logger.Named("eventbus"), cfg.Matching.JobTimeout)

	loggers := &routes.Loggers{
		Main:          logger,
		Auth:          logger.Named("auth"),
		Matching:      logger.Named("matching"),
		CreditRequest: logger.Named("credit_request"),
	}
	if err := routes.InitRouter(e, dbConn, redisClient, jwtSvc, bus, appMetrics, loggers, cfg); err != nil {
		logger.Fatal("Ошибка инициализации маршрутов", zap.Error(err))
	}

	// 5. Разбор очереди подбора в этом же процессе
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan error, 1)
	if cfg.Matching.Dispatch == services.DispatchRedis && cfg.Matching.InProcess {
		listener, err := listeners.NewMatchListenerFromConfig(dbConn, cfg.Matching, appMetrics, loggers.Matching)
		if err != nil {
			logger.Fatal("Ошибка настройки подбора", zap.Error(err))
		}
		queue := repositories.NewRedisMatchQueue(redisClient, cfg.Matching.QueueKey)
		consumer := listeners.NewQueueConsumer(queue, listener, cfg.Matching.Workers, cfg.Matching.JobTimeout, loggers.Matching)
		go func() { consumerDone <- consumer.Run(consumerCtx) }()
	} else {
		close(consumerDone)
	}

	// 6. Запуск сервера
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	if err := bus.Drain(shutdownCtx); err != nil {
		logger.Warn("Не все задания подбора успели завершиться", zap.Error(err))
	}
	stopConsumer()
	select {
	case err := <-consumerDone:
		if err != nil {
			logger.Error("Воркеры очереди завершились с ошибкой", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Warn("Воркеры очереди не успели остановиться")
	}
	logger.Info("Сервер остановлен")
}
