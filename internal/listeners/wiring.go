package listeners

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"loan-broker/internal/activity"
	"loan-broker/internal/repositories"
	"loan-broker/internal/services"
	"loan-broker/pkg/config"
	"loan-broker/pkg/metrics"
)

// NewMatchListenerFromConfig собирает движок подбора поверх базы.
// Используется и API-сервером, и отдельным воркером.
func NewMatchListenerFromConfig(
	dbConn *pgxpool.Pool,
	cfg config.MatchingConfig,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) (*MatchListener, error) {
	borrowerRepo := repositories.NewBorrowerRepository(dbConn, logger)
	offerRepo := repositories.NewOfferRepository(dbConn, logger)
	creditRequestRepo := repositories.NewCreditRequestRepository(dbConn, logger)

	duplicates, err := services.NewDuplicatePolicy(cfg.Dedupe, creditRequestRepo)
	if err != nil {
		return nil, err
	}

	matching := services.NewMatchingService(borrowerRepo, offerRepo, creditRequestRepo, duplicates, appMetrics, logger)
	return NewMatchListener(matching, activity.SystemClock, logger), nil
}
