package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
)

// FakeClock is a manually advanced clock for deterministic tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

func (c *FakeClock) Sleep(d time.Duration) {}

// fakeActionRepo is an in-memory ActionRepo with real version-check
// semantics. Individual methods can be overridden per test via the
// Func fields to force conflicts or failures.
type fakeActionRepo struct {
	mu    sync.Mutex
	store map[primitive.ObjectID]domain.ProxyAction

	FindByIDFunc          func(ctx context.Context, id primitive.ObjectID) (*domain.ProxyAction, error)
	ConditionalSaveFunc   func(ctx context.Context, a *domain.ProxyAction, expectedVersion int64) (bool, error)
	RecordTemplateUseFunc func(ctx context.Context, templateID, childID primitive.ObjectID) error
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{store: make(map[primitive.ObjectID]domain.ProxyAction)}
}

func cloneAction(a domain.ProxyAction) domain.ProxyAction {
	a.Approvals = append([]domain.Approval{}, a.Approvals...)
	a.AuditTrail = append([]domain.AuditEntry{}, a.AuditTrail...)
	a.Dependencies = append([]domain.Dependency{}, a.Dependencies...)
	a.ChildActions = append([]primitive.ObjectID{}, a.ChildActions...)
	return a
}

// put seeds the store directly, bypassing the engine.
func (r *fakeActionRepo) put(a domain.ProxyAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[a.ID] = cloneAction(a)
}

// get reads the persisted state directly for assertions.
func (r *fakeActionRepo) get(id primitive.ObjectID) domain.ProxyAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAction(r.store[id])
}

func (r *fakeActionRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.ProxyAction, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.store[id]
	if !ok {
		return nil, fmt.Errorf("%w: action %s", domain.ErrNotFound, id.Hex())
	}
	out := cloneAction(a)
	return &out, nil
}

func (r *fakeActionRepo) Insert(ctx context.Context, a *domain.ProxyAction) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[a.ID] = cloneAction(*a)
	return a.ID, nil
}

func (r *fakeActionRepo) ConditionalSave(ctx context.Context, a *domain.ProxyAction, expectedVersion int64) (bool, error) {
	if r.ConditionalSaveFunc != nil {
		return r.ConditionalSaveFunc(ctx, a, expectedVersion)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.store[a.ID]
	if !ok || cur.Version != expectedVersion {
		return false, nil
	}
	doc := cloneAction(*a)
	doc.Version = expectedVersion + 1
	r.store[a.ID] = doc
	a.Version = doc.Version
	return true, nil
}

func (r *fakeActionRepo) FindPendingExpired(ctx context.Context, now time.Time, limit int) ([]domain.ProxyAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProxyAction
	for _, a := range r.store {
		if a.Status == domain.StatusPending && a.IsExpired(now) {
			out = append(out, cloneAction(a))
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeActionRepo) Search(ctx context.Context, req models.SearchActionsRequest) ([]domain.ProxyAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProxyAction
	for _, a := range r.store {
		if req.Status != "" && string(a.Status) != req.Status {
			continue
		}
		if req.ActionType != "" && string(a.ActionType) != req.ActionType {
			continue
		}
		if req.IsTemplate != nil && a.IsTemplate != *req.IsTemplate {
			continue
		}
		out = append(out, cloneAction(a))
	}
	return out, nil
}

func (r *fakeActionRepo) RecordTemplateUse(ctx context.Context, templateID, childID primitive.ObjectID) error {
	if r.RecordTemplateUseFunc != nil {
		return r.RecordTemplateUseFunc(ctx, templateID, childID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.store[templateID]
	if !ok {
		return fmt.Errorf("%w: template %s", domain.ErrNotFound, templateID.Hex())
	}
	if tpl.TemplateData != nil {
		data := *tpl.TemplateData
		data.UsageCount++
		tpl.TemplateData = &data
	}
	tpl.ChildActions = append(tpl.ChildActions, childID)
	r.store[templateID] = tpl
	return nil
}

// recordingPublisher collects transitions for assertions.
type recordingPublisher struct {
	mu          sync.Mutex
	transitions []string
}

func (p *recordingPublisher) PublishTransition(a *domain.ProxyAction, transition string, actor *primitive.ObjectID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitions = append(p.transitions, transition)
}

func (p *recordingPublisher) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.transitions...)
}
