package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/stretchr/testify/mock"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func ptr[T any](v T) *T {
	return &v
}

// memContractStore - хранилище договоров в памяти
type memContractStore struct {
	mu        sync.Mutex
	contracts []domain.LocalContract
	seq       int
	failFor   map[string]error // по имени арендатора (create) или id (update)
	creates   int
	updates   int

	afterCreate func()
}

// как UNIQUE на remote_id
var errDuplicateRemoteID = errors.New("duplicate remote_id")

func newMemContractStore(initial ...domain.LocalContract) *memContractStore {
	return &memContractStore{contracts: initial, failFor: map[string]error{}}
}

func (s *memContractStore) ListAll(_ context.Context) ([]domain.LocalContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LocalContract, len(s.contracts))
	copy(out, s.contracts)
	return out, nil
}

func (s *memContractStore) Create(_ context.Context, c *domain.LocalContract) error {
	if err := s.create(c); err != nil {
		return err
	}
	if s.afterCreate != nil {
		s.afterCreate()
	}
	return nil
}

func (s *memContractStore) create(c *domain.LocalContract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[c.TenantName]; ok {
		return err
	}
	if c.RemoteID != nil {
		for _, existing := range s.contracts {
			if existing.HasRemoteID(*c.RemoteID) {
				return errDuplicateRemoteID
			}
		}
	}
	s.seq++
	if c.ID == "" {
		c.ID = fmt.Sprintf("lc-%d", s.seq)
	}
	s.creates++
	s.contracts = append(s.contracts, *c)
	return nil
}

func (s *memContractStore) Update(_ context.Context, id string, u domain.LocalContractUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[id]; ok {
		return err
	}
	for i := range s.contracts {
		if s.contracts[i].ID != id {
			continue
		}
		if u.EndDate != nil {
			s.contracts[i].EndDate = u.EndDate
		}
		if u.RemoteID != nil {
			s.contracts[i].RemoteID = u.RemoteID
		}
		if u.LastRemoteSync != nil {
			s.contracts[i].LastRemoteSync = u.LastRemoteSync
		}
		s.updates++
		return nil
	}
	return domain.ErrContractNotFound
}

func (s *memContractStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates + s.updates
}

// stubContractSource отдает фиксированный список договоров
type stubContractSource struct {
	contracts []domain.RemoteContract
	err       error
}

func (s *stubContractSource) ListActiveContracts(context.Context) ([]domain.RemoteContract, error) {
	return s.contracts, s.err
}

// stubLock - блокировка в памяти; lose имитирует потерю блокировки
type stubLock struct {
	mu     sync.Mutex
	held   bool
	cancel context.CancelCauseFunc
}

func (l *stubLock) Acquire(ctx context.Context, _ string) (context.Context, port.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, nil, domain.ErrReconcileInProgress
	}
	l.held = true
	lockCtx, cancel := context.WithCancelCause(ctx)
	l.cancel = cancel
	return lockCtx, func(context.Context) {
		cancel(nil)
		l.mu.Lock()
		l.held = false
		l.mu.Unlock()
	}, nil
}

func (l *stubLock) lose() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel(domain.ErrRunLockLost)
	}
}

type recordingPublisher struct {
	reports []*domain.ReconcileReport
	err     error
}

func (p *recordingPublisher) PublishReport(_ context.Context, r *domain.ReconcileReport) error {
	p.reports = append(p.reports, r)
	return p.err
}

// mockRemoteSystem - мок внешней системы на testify
type mockRemoteSystem struct {
	mock.Mock
}

func (m *mockRemoteSystem) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	args := m.Called(ctx)
	assets, _ := args.Get(0).([]domain.Asset)
	return assets, args.Error(1)
}

func (m *mockRemoteSystem) ListActiveContracts(ctx context.Context) ([]domain.RemoteContract, error) {
	args := m.Called(ctx)
	contracts, _ := args.Get(0).([]domain.RemoteContract)
	return contracts, args.Error(1)
}

func (m *mockRemoteSystem) CreateTenant(ctx context.Context, t domain.NewTenant) (string, error) {
	args := m.Called(ctx, t)
	return args.String(0), args.Error(1)
}

func (m *mockRemoteSystem) CreateContract(ctx context.Context, c domain.NewRemoteContract) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

// stubLiveStore - живое хранилище каталога в памяти
type stubLiveStore struct {
	records []domain.CatalogRecord
	err     error
}

func (s *stubLiveStore) Snapshot(context.Context) ([]domain.CatalogRecord, error) {
	return s.records, s.err
}

type stubStatic []domain.CatalogRecord

func (s stubStatic) Records() []domain.CatalogRecord {
	return s
}

type recordingNotifier struct {
	mu        sync.Mutex
	snapshots [][]domain.CatalogRecord
}

func (n *recordingNotifier) Publish(_ context.Context, records []domain.CatalogRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, records)
}

var errStoreDown = errors.New("store is down")
