package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/repository/memory"
	"github.com/secmon-lab/argus/pkg/usecase"
)

var (
	admin        = model.Actor{ID: "alice", Role: types.RoleAdmin}
	compliance   = model.Actor{ID: "carol", Role: types.RoleCompliance}
	investigator = model.Actor{ID: "ivan", Role: types.RoleInvestigator}
	colleague    = model.Actor{ID: "ida", Role: types.RoleInvestigator}
	auditor      = model.Actor{ID: "audrey", Role: types.RoleAuditor}
)

type published struct {
	event  *model.Event
	target policy.Target
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(_ context.Context, event *model.Event, target policy.Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{event: event, target: target})
	return nil
}

func (r *recorder) ofType(eventType model.EventType) []published {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []published
	for _, p := range r.events {
		if p.event.Type == eventType {
			out = append(out, p)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fixture struct {
	repo *memory.Memory
	rec  *recorder
	uc   *usecase.UseCases
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	repo := memory.New()
	seedUsers(t, repo)
	return newFixtureWithRepo(t, repo, repo, opts...)
}

func newFixtureWithRepo(t *testing.T, mem *memory.Memory, repo interfaces.Repository, opts ...usecase.Option) *fixture {
	t.Helper()
	rec := &recorder{}
	opts = append([]usecase.Option{usecase.WithPublisher(rec), usecase.WithClock(tickingClock())}, opts...)
	return &fixture{
		repo: mem,
		rec:  rec,
		uc:   usecase.New(repo, opts...),
	}
}

func seedUsers(t *testing.T, repo interfaces.Repository) {
	t.Helper()
	ctx := context.Background()
	for _, a := range []model.Actor{admin, compliance, investigator, colleague, auditor} {
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: a.ID, Name: a.ID.String(), Role: a.Role})).Required()
	}
}

func (f *fixture) seedTransaction(t *testing.T, score int) *model.Transaction {
	t.Helper()
	txn, err := f.repo.Transaction().Create(context.Background(), &model.Transaction{
		ID:        types.NewTransactionID(),
		AccountID: "acct-1",
		Amount:    12000,
		Currency:  "USD",
		Country:   "US",
		RiskScore: score,
		CreatedAt: time.Now().UTC(),
	})
	gt.NoError(t, err).Required()
	return txn
}

func (f *fixture) seedAlert(t *testing.T, score int) *model.Alert {
	t.Helper()
	txn := f.seedTransaction(t, score)
	alert, err := f.repo.Alert().Create(context.Background(), &model.Alert{
		ID:            types.NewAlertID(),
		TransactionID: txn.ID,
		Reason:        "Amount exceeds threshold",
		RiskScore:     score,
		CreatedAt:     time.Now().UTC(),
	})
	gt.NoError(t, err).Required()
	return alert
}

func (f *fixture) newCase(t *testing.T, title string) *model.Case {
	t.Helper()
	txn := f.seedTransaction(t, 85)
	c, err := f.uc.Case.CreateFromTransaction(context.Background(), compliance, txn.ID, usecase.CreateCaseInput{Title: title})
	gt.NoError(t, err).Required()
	return c
}

// tickingClock advances one second per call so creation order is stable
func tickingClock() func() time.Time {
	var (
		mu  sync.Mutex
		now = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

var errBackend = errors.New("backend is down")

// flakyRepo wraps a repository and fails selected case and alert writes
type flakyRepo struct {
	interfaces.Repository
	cases  *flakyCaseRepo
	alerts *flakyAlertRepo
}

func (r *flakyRepo) Case() interfaces.CaseRepository { return r.cases }
func (r *flakyRepo) Alert() interfaces.AlertRepository { return r.alerts }

type flakyCaseRepo struct {
	interfaces.CaseRepository
	failCreate bool
	failUpdate bool
}

func (r *flakyCaseRepo) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	if r.failCreate {
		return nil, errBackend
	}
	return r.CaseRepository.Create(ctx, c)
}

func (r *flakyCaseRepo) Update(ctx context.Context, c *model.Case) (*model.Case, error) {
	if r.failUpdate {
		return nil, errBackend
	}
	return r.CaseRepository.Update(ctx, c)
}

type flakyAlertRepo struct {
	interfaces.AlertRepository
	failResolve bool
}

func (r *flakyAlertRepo) Resolve(ctx context.Context, id types.AlertID, at time.Time) (*model.Alert, error) {
	if r.failResolve {
		return nil, errBackend
	}
	return r.AlertRepository.Resolve(ctx, id, at)
}

func newFlakyRepo(mem *memory.Memory) *flakyRepo {
	return &flakyRepo{
		Repository: mem,
		cases:      &flakyCaseRepo{CaseRepository: mem.Case()},
		alerts:     &flakyAlertRepo{AlertRepository: mem.Alert()},
	}
}
