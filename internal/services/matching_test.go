package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-broker/internal/entities"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/utils"
)

func newMatching(t *testing.T, store *fakeStore, duplicates DuplicatePolicy) MatchingServiceInterface {
	t.Helper()
	return NewMatchingService(store, store, store, duplicates, newMetrics(t), zap.NewNop())
}

func TestMatchAndCreate_ScoreAndRotationScenario(t *testing.T) {
	store := newFakeStore()
	// только Offer A и Offer B, как в сценарии
	delete(store.offers, offerC)
	svc := newMatching(t, store, nil)

	created, err := svc.MatchAndCreate(context.Background(), borrowerX, nil, now)
	require.NoError(t, err)
	require.Len(t, created, 1)

	cr := created[0]
	assert.Equal(t, uint64(offerA), cr.OfferID)
	assert.Equal(t, uint64(borrowerX), cr.BorrowerID)
	assert.Equal(t, entities.StatusNew, cr.Status)
	assert.Nil(t, cr.SentDate)
}

func TestMatchAndCreate_ExplicitOfferBypassesEligibility(t *testing.T) {
	store := newFakeStore()
	svc := newMatching(t, store, nil)

	// Offer B давно не активно, Offer C не подходит по баллу
	for _, offerID := range []uint64{offerB, offerC} {
		before := len(store.requestsFor(borrowerX))
		created, err := svc.MatchAndCreate(context.Background(), borrowerX, utils.ToPtr(offerID), now)
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, offerID, created[0].OfferID)
		assert.Len(t, store.requestsFor(borrowerX), before+1)
	}
}

func TestMatchAndCreate_NoCandidates(t *testing.T) {
	store := newFakeStore()
	svc := newMatching(t, store, nil)

	b := store.borrowers[borrowerX]
	b.Score = 5000
	store.borrowers[borrowerX] = b

	created, err := svc.MatchAndCreate(context.Background(), borrowerX, nil, now)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestMatchAndCreate_ResourceAbsent(t *testing.T) {
	store := newFakeStore()
	m := newMetrics(t)
	svc := NewMatchingService(store, store, store, nil, m, zap.NewNop())
	before := len(store.creditRequests)

	_, err := svc.MatchAndCreate(context.Background(), 999, nil, now)
	require.ErrorIs(t, err, apperrors.ErrResourceAbsent)

	_, err = svc.MatchAndCreate(context.Background(), borrowerX, utils.ToPtr(uint64(999)), now)
	require.ErrorIs(t, err, apperrors.ErrResourceAbsent)

	assert.Len(t, store.creditRequests, before)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MatchJobs().WithLabelValues("absent")))
}

func TestMatchAndCreate_RepeatedRunsDuplicateByDefault(t *testing.T) {
	store := newFakeStore()
	svc := newMatching(t, store, AllowDuplicates{})

	for i := 0; i < 2; i++ {
		_, err := svc.MatchAndCreate(context.Background(), borrowerX, nil, now)
		require.NoError(t, err)
	}

	var toA int
	for _, cr := range store.requestsFor(borrowerX) {
		if cr.OfferID == offerA {
			toA++
		}
	}
	// одна из фикстуры и две от подбора
	assert.Equal(t, 3, toA)
}

func TestMatchAndCreate_SkipExistingPairs(t *testing.T) {
	store := newFakeStore()
	svc := newMatching(t, store, NewSkipExistingPairs(store))

	created, err := svc.MatchAndCreate(context.Background(), borrowerX, nil, now)
	require.NoError(t, err)
	assert.Empty(t, created, "пара borrowerX/offerA уже есть в фикстуре")

	created, err = svc.MatchAndCreate(context.Background(), borrowerX, utils.ToPtr(uint64(offerB)), now)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestMatchAndCreate_PartialFailureKeepsCreated(t *testing.T) {
	store := newFakeStore()
	// borrowerY (балл 20) подходит под Offer C и новое Offer D
	store.offers[50] = entities.Offer{ID: 50, Name: "Offer D", CompanyID: bankCompany,
		RotationStart: date(2010, 1, 1), RotationEnd: date(2100, 1, 1), MinScore: 0, MaxScore: 100}
	store.failCreateAfter = 1
	m := newMetrics(t)
	svc := NewMatchingService(store, store, store, nil, m, zap.NewNop())

	created, err := svc.MatchAndCreate(context.Background(), borrowerY, nil, now)
	require.ErrorIs(t, err, errInsertFailed)
	assert.Len(t, created, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MatchJobs().WithLabelValues("error")))
}

func TestNewDuplicatePolicy(t *testing.T) {
	store := newFakeStore()

	p, err := NewDuplicatePolicy("", store)
	require.NoError(t, err)
	assert.IsType(t, AllowDuplicates{}, p)

	p, err = NewDuplicatePolicy(DedupePair, store)
	require.NoError(t, err)
	assert.IsType(t, SkipExistingPairs{}, p)

	_, err = NewDuplicatePolicy("unique", store)
	assert.Error(t, err)
}
