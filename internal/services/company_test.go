package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-broker/internal/repositories"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/eventbus"
	"loan-broker/pkg/types"
	"loan-broker/pkg/utils"
)

func TestCompanies_OwnCompanyOnly(t *testing.T) {
	store := newFakeStore()
	svc := NewCompanyService(newBase(t), store, zap.NewNop())

	list, total, err := svc.GetCompanies(store.ctxFor(bankID), types.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, "credit_organization", list[0].Kind)

	_, err = svc.FindCompany(store.ctxFor(bankID), partnerCompany)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	all, _, err := svc.GetCompanies(store.ctxFor(superuserID), types.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, _, err = svc.GetCompanies(store.ctxFor(lonerID), types.Filter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

type fakeQueue struct {
	jobs []repositories.MatchJob
}

func (q *fakeQueue) Push(_ context.Context, job repositories.MatchJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Pop(_ context.Context, _ time.Duration) (*repositories.MatchJob, error) {
	if len(q.jobs) == 0 {
		return nil, repositories.ErrQueueEmpty
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return &job, nil
}

func TestQueueMatchDispatcher_PushesJob(t *testing.T) {
	queue := &fakeQueue{}
	d, err := NewMatchDispatcher(DispatchRedis, nil, queue, fixedClock, zap.NewNop())
	require.NoError(t, err)

	jobID, err := d.Dispatch(context.Background(), borrowerX, utils.ToPtr(uint64(offerA)))
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)

	job := queue.jobs[0]
	assert.Equal(t, jobID, job.JobID)
	assert.Equal(t, uint64(borrowerX), job.BorrowerID)
	require.NotNil(t, job.OfferID)
	assert.Equal(t, uint64(offerA), *job.OfferID)
	assert.True(t, job.EnqueuedAt.Equal(now))
}

func TestNewMatchDispatcher_Modes(t *testing.T) {
	bus := eventbus.New(zap.NewNop())

	d, err := NewMatchDispatcher("", bus, nil, fixedClock, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &BusMatchDispatcher{}, d)

	jobID, err := d.Dispatch(context.Background(), borrowerX, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	_, err = NewMatchDispatcher("kafka", bus, nil, fixedClock, zap.NewNop())
	assert.Error(t, err)
}
