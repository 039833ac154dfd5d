package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-bom-graph/internal/model"
	"go-bom-graph/internal/repository"
	"go-bom-graph/internal/testdb"
	"go-bom-graph/internal/ws"
	"go-bom-graph/pkg/apperror"
	"go-bom-graph/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []ws.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ws.Event(nil), p.events...)
}

type fixture struct {
	store   repository.Store
	audit   *AuditTrail
	events  *recordingPublisher
	metrics *metrics.BomMetrics
	reg     *prometheus.Registry
	parts   PartService
	bom     BomService
	tree    TreeService
	dash    DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, repository.NewStore(testdb.New(t)))
}

func newFixtureWithStore(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	ctx := context.Background()

	audit := NewAuditTrail()
	require.NoError(t, audit.Load(ctx, store))
	events := &recordingPublisher{}
	reg := prometheus.NewRegistry()
	m := metrics.NewBomMetrics(reg)

	parts, err := NewPartService(ctx, store, audit, events, m, nil)
	require.NoError(t, err)

	return &fixture{
		store:   store,
		audit:   audit,
		events:  events,
		metrics: m,
		reg:     reg,
		parts:   parts,
		bom:     NewBomService(store, audit, events, m, nil),
		tree:    NewTreeService(store, m),
		dash:    NewDashboardService(store),
	}
}

func (f *fixture) part(t *testing.T, name string) *model.Part {
	t.Helper()
	part, err := f.parts.CreatePart(context.Background(), CreatePartInput{Name: name})
	require.NoError(t, err)
	return part
}

func (f *fixture) link(t *testing.T, parent, child *model.Part, qty int) {
	t.Helper()
	_, err := f.bom.CreateLink(context.Background(), parent.ID, child.ID, qty)
	require.NoError(t, err)
}

func (f *fixture) auditActions(t *testing.T, partID string) []model.AuditAction {
	t.Helper()
	entries, err := f.parts.ListAudit(context.Background(), partID, 0)
	require.NoError(t, err)
	actions := make([]model.AuditAction, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func requireKind(t *testing.T, err error, kind apperror.Kind, message string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperror.KindOf(err), err.Error())
	if message != "" {
		require.Equal(t, message, err.Error())
	}
}

func strPtr(s string) *string { return &s }

// failingAuditStore fails every audit append, inside or outside transactions.
type failingAuditStore struct {
	repository.Store
}

func (s failingAuditStore) Audits() repository.AuditRepository {
	return failingAudits{s.Store.Audits()}
}

func (s failingAuditStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(failingAuditStore{tx})
	})
}

type failingAudits struct {
	repository.AuditRepository
}

func (failingAudits) Append(context.Context, *model.AuditLog) error {
	return errors.New("audit sink unavailable")
}

func (f *fixture) histogramCount(t *testing.T, name string) uint64 {
	t.Helper()
	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	return 0
}
