package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-broker/internal/activity"
	"loan-broker/internal/authz"
	"loan-broker/internal/entities"
	"loan-broker/internal/repositories"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/metrics"
	"loan-broker/pkg/types"
)

var now = time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeStore - хранилище в памяти, реализует интерфейсы всех репозиториев сущностей.
// Область видимости не разбирается как SQL: для не-nil scope применяется то же
// правило, что и в authz.InScope, для актора из контекста.
type fakeStore struct {
	mu             sync.Mutex
	users          map[uint64]entities.User
	companies      map[uint64]entities.Company
	borrowers      map[uint64]entities.Borrower
	offers         map[uint64]entities.Offer
	creditRequests map[uint64]entities.CreditRequest
	nextID         uint64

	// failCreateAfter > 0: CreateCreditRequest падает после стольких успешных вставок.
	failCreateAfter int
	creates         int
	userLookups     int
}

var (
	_ repositories.UserRepositoryInterface          = (*fakeStore)(nil)
	_ repositories.CompanyRepositoryInterface       = (*fakeStore)(nil)
	_ repositories.BorrowerRepositoryInterface      = (*fakeStore)(nil)
	_ repositories.OfferRepositoryInterface         = (*fakeStore)(nil)
	_ repositories.CreditRequestRepositoryInterface = (*fakeStore)(nil)
)

const (
	superuserID = 10
	partnerID   = 11
	bankID      = 12
	partner2ID  = 13
	bank2ID     = 14
	lonerID     = 15
	disabledID  = 16

	partnerCompany  = 1
	bankCompany     = 2
	partner2Company = 3
	bank2Company    = 4

	offerA      = 1
	offerB      = 2
	offerC      = 3
	borrowerX   = 1
	borrowerY   = 2
	requestXA   = 1
	requestYC   = 2
	passwordAll = "secret123"
)

func newFakeStore() *fakeStore {
	f := &fakeStore{
		users:          make(map[uint64]entities.User),
		companies:      make(map[uint64]entities.Company),
		borrowers:      make(map[uint64]entities.Borrower),
		offers:         make(map[uint64]entities.Offer),
		creditRequests: make(map[uint64]entities.CreditRequest),
		nextID:         100,
	}

	for _, u := range []entities.User{
		{ID: superuserID, Username: "admin", IsSuperuser: true, IsActive: true},
		{ID: partnerID, Username: "partner", IsActive: true},
		{ID: bankID, Username: "bank", IsActive: true},
		{ID: partner2ID, Username: "partner2", IsActive: true},
		{ID: bank2ID, Username: "bank2", IsActive: true},
		{ID: lonerID, Username: "loner", IsActive: true},
		{ID: disabledID, Username: "disabled", IsActive: false},
	} {
		f.users[u.ID] = u
	}

	for _, c := range []entities.Company{
		{ID: partnerCompany, Name: "Партнёр", Kind: entities.CompanyKindPartner, UserID: partnerID},
		{ID: bankCompany, Name: "Банк", Kind: entities.CompanyKindCreditOrganization, UserID: bankID},
		{ID: partner2Company, Name: "Партнёр 2", Kind: entities.CompanyKindPartner, UserID: partner2ID},
		{ID: bank2Company, Name: "Банк 2", Kind: entities.CompanyKindCreditOrganization, UserID: bank2ID},
	} {
		f.companies[c.ID] = c
	}

	for _, o := range []entities.Offer{
		{ID: offerA, Name: "Offer A", CompanyID: bankCompany, Kind: entities.OfferKindConsumerCredit,
			RotationStart: date(2010, 1, 1), RotationEnd: date(2100, 1, 1), MinScore: 100, MaxScore: 200},
		{ID: offerB, Name: "Offer B", CompanyID: bankCompany, Kind: entities.OfferKindMortgage,
			RotationStart: date(2000, 1, 1), RotationEnd: date(2001, 1, 1), MinScore: 0, MaxScore: 1000},
		{ID: offerC, Name: "Offer C", CompanyID: bank2Company, Kind: entities.OfferKindCarLoan,
			RotationStart: date(2010, 1, 1), RotationEnd: date(2100, 1, 1), MinScore: 0, MaxScore: 50},
	} {
		f.offers[o.ID] = o
	}

	for _, b := range []entities.Borrower{
		{ID: borrowerX, LastName: "Иванов", FirstName: "Иван", BirthDate: date(1980, 1, 1),
			PhoneNumber: "+79990000001", PassportNumber: "1234567890", Score: 150, CompanyID: partnerCompany},
		{ID: borrowerY, LastName: "Петров", FirstName: "Пётр", BirthDate: date(1990, 1, 1),
			PhoneNumber: "+79990000002", PassportNumber: "0987654321", Score: 20, CompanyID: partner2Company},
	} {
		f.borrowers[b.ID] = b
	}

	f.creditRequests[requestXA] = entities.CreditRequest{ID: requestXA, Status: entities.StatusNew, BorrowerID: borrowerX, OfferID: offerA, CreatedAt: now}
	f.creditRequests[requestYC] = entities.CreditRequest{ID: requestYC, Status: entities.StatusSent, BorrowerID: borrowerY, OfferID: offerC, CreatedAt: now}
	return f
}

// actor собирает актора так же, как ActorService.
func (f *fakeStore) actor(userID uint64) *authz.Actor {
	u := f.users[userID]
	a := &authz.Actor{UserID: u.ID, Username: u.Username, IsSuperuser: u.IsSuperuser}
	for _, c := range f.companies {
		if c.UserID == userID {
			company := c
			a.Company = &company
		}
	}
	return a
}

func (f *fakeStore) ctxFor(userID uint64) context.Context {
	return authz.WithActor(context.Background(), f.actor(userID))
}

func (f *fakeStore) visible(ctx context.Context, scope sq.Sqlizer, target interface{}) bool {
	if scope == nil {
		return true
	}
	sql, _, _ := scope.ToSql()
	switch sql {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	if o, ok := target.(*entities.Offer); ok {
		return activity.IsActive(o, now)
	}
	actor, err := authz.ActorFromContext(ctx)
	if err != nil {
		return false
	}
	return authz.InScope(actor, target, now)
}

func (f *fakeStore) id() uint64 {
	f.nextID++
	return f.nextID
}

func sortedKeys[T any](m map[uint64]T) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// users

func (f *fakeStore) FindUserByID(_ context.Context, id uint64) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userLookups++
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (f *fakeStore) FindUserByUsername(_ context.Context, username string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrInvalidCredentials
}

// companies

func (f *fakeStore) GetCompanies(ctx context.Context, scope sq.Sqlizer, _ types.Filter) ([]entities.Company, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []entities.Company
	for _, id := range sortedKeys(f.companies) {
		c := f.companies[id]
		if f.visible(ctx, scope, &c) {
			res = append(res, c)
		}
	}
	return res, uint64(len(res)), nil
}

func (f *fakeStore) FindCompany(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok || !f.visible(ctx, scope, &c) {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) FindByUserID(_ context.Context, userID uint64) (*entities.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.companies {
		if c.UserID == userID {
			company := c
			return &company, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// borrowers

func (f *fakeStore) GetBorrowers(ctx context.Context, scope sq.Sqlizer, _ types.Filter) ([]entities.Borrower, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []entities.Borrower
	for _, id := range sortedKeys(f.borrowers) {
		b := f.borrowers[id]
		if f.visible(ctx, scope, &b) {
			res = append(res, b)
		}
	}
	return res, uint64(len(res)), nil
}

func (f *fakeStore) FindBorrower(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Borrower, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.borrowers[id]
	if !ok || !f.visible(ctx, scope, &b) {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func (f *fakeStore) CreateBorrower(_ context.Context, b *entities.Borrower) (*entities.Borrower, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.companies[b.CompanyID]; !ok {
		return nil, apperrors.NewFieldError("borrowers_company_id_fkey", "ссылка на несуществующую запись")
	}
	created := *b
	created.ID = f.id()
	created.CreatedAt, created.ModifiedAt = now, now
	f.borrowers[created.ID] = created
	return &created, nil
}

func (f *fakeStore) UpdateBorrower(_ context.Context, b *entities.Borrower) (*entities.Borrower, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.borrowers[b.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	updated := *b
	updated.ModifiedAt = now
	f.borrowers[b.ID] = updated
	return &updated, nil
}

func (f *fakeStore) DeleteBorrower(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.borrowers[id]; !ok {
		return apperrors.ErrNotFound
	}
	for _, cr := range f.creditRequests {
		if cr.BorrowerID == id {
			return apperrors.ErrConflict
		}
	}
	delete(f.borrowers, id)
	return nil
}

// offers

func (f *fakeStore) GetOffers(ctx context.Context, scope sq.Sqlizer, _ types.Filter) ([]entities.Offer, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []entities.Offer
	for _, id := range sortedKeys(f.offers) {
		o := f.offers[id]
		if f.visible(ctx, scope, &o) {
			res = append(res, o)
		}
	}
	return res, uint64(len(res)), nil
}

func (f *fakeStore) FindOffer(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok || !f.visible(ctx, scope, &o) {
		return nil, apperrors.ErrNotFound
	}
	return &o, nil
}

func (f *fakeStore) FindEligible(_ context.Context, score int, at time.Time) ([]entities.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []entities.Offer
	for _, id := range sortedKeys(f.offers) {
		o := f.offers[id]
		if activity.IsActive(&o, at) && o.AcceptsScore(score) {
			res = append(res, o)
		}
	}
	return res, nil
}

func (f *fakeStore) CreateOffer(_ context.Context, o *entities.Offer) (*entities.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *o
	created.ID = f.id()
	f.offers[created.ID] = created
	return &created, nil
}

func (f *fakeStore) UpdateOffer(_ context.Context, o *entities.Offer) (*entities.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.offers[o.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	f.offers[o.ID] = *o
	updated := *o
	return &updated, nil
}

func (f *fakeStore) DeleteOffer(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.offers[id]; !ok {
		return apperrors.ErrNotFound
	}
	for _, cr := range f.creditRequests {
		if cr.OfferID == id {
			return apperrors.ErrConflict
		}
	}
	delete(f.offers, id)
	return nil
}

// credit requests

// hydrate заполняет то, что в БД приходит join'ом.
func (f *fakeStore) hydrate(cr entities.CreditRequest) entities.CreditRequest {
	if b, ok := f.borrowers[cr.BorrowerID]; ok {
		cr.BorrowerCompanyID = b.CompanyID
		cr.Borrower = &b
	}
	if o, ok := f.offers[cr.OfferID]; ok {
		cr.OfferCompanyID = o.CompanyID
	}
	return cr
}

func (f *fakeStore) GetCreditRequests(ctx context.Context, scope sq.Sqlizer, _ types.Filter) ([]entities.CreditRequest, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []entities.CreditRequest
	for _, id := range sortedKeys(f.creditRequests) {
		cr := f.hydrate(f.creditRequests[id])
		if f.visible(ctx, scope, &cr) {
			res = append(res, cr)
		}
	}
	return res, uint64(len(res)), nil
}

func (f *fakeStore) FindCreditRequest(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.CreditRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.creditRequests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cr := f.hydrate(stored)
	if !f.visible(ctx, scope, &cr) {
		return nil, apperrors.ErrNotFound
	}
	return &cr, nil
}

var errInsertFailed = errors.New("insert failed")

func (f *fakeStore) CreateCreditRequest(_ context.Context, _ repositories.Querier, cr *entities.CreditRequest) (*entities.CreditRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateAfter > 0 && f.creates >= f.failCreateAfter {
		return nil, errInsertFailed
	}
	f.creates++

	created := *cr
	created.ID = f.id()
	created.CreatedAt = now
	if created.Status == "" {
		created.Status = entities.StatusNew
	}
	f.creditRequests[created.ID] = created
	hydrated := f.hydrate(created)
	return &hydrated, nil
}

func (f *fakeStore) UpdateCreditRequest(_ context.Context, cr *entities.CreditRequest) (*entities.CreditRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.creditRequests[cr.ID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	stored.Status = cr.Status
	stored.SentDate = cr.SentDate
	stored.BorrowerID = cr.BorrowerID
	stored.OfferID = cr.OfferID
	f.creditRequests[cr.ID] = stored
	hydrated := f.hydrate(stored)
	return &hydrated, nil
}

func (f *fakeStore) DeleteCreditRequest(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creditRequests[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.creditRequests, id)
	return nil
}

func (f *fakeStore) ExistingOfferIDs(_ context.Context, borrowerID uint64, offerIDs []uint64) (map[uint64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[uint64]bool, len(offerIDs))
	for _, id := range offerIDs {
		wanted[id] = true
	}
	existing := make(map[uint64]bool)
	for _, cr := range f.creditRequests {
		if cr.BorrowerID == borrowerID && wanted[cr.OfferID] {
			existing[cr.OfferID] = true
		}
	}
	return existing, nil
}

func (f *fakeStore) requestsFor(borrowerID uint64) []entities.CreditRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []entities.CreditRequest
	for _, id := range sortedKeys(f.creditRequests) {
		if cr := f.creditRequests[id]; cr.BorrowerID == borrowerID {
			res = append(res, cr)
		}
	}
	return res
}

// fakeCache - CacheRepositoryInterface в памяти.
type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return repositories.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

// recordingDispatcher запоминает задания вместо запуска подбора.
type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []dispatchedJob
	err  error
}

type dispatchedJob struct {
	BorrowerID uint64
	OfferID    *uint64
}

func (d *recordingDispatcher) Dispatch(_ context.Context, borrowerID uint64, offerID *uint64) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, dispatchedJob{BorrowerID: borrowerID, OfferID: offerID})
	return "job-1", nil
}

func newBase(t *testing.T) *BaseService {
	t.Helper()
	return NewBaseService(authz.NewGatekeeper(nil), fixedClock, zap.NewNop())
}

func newMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	m := metrics.NewMetrics()
	require.NotNil(t, m)
	return m
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Contains(t, httpErr.Details, field)
}
