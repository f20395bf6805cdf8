package controllers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time                         { return c.now }
func (c fixedClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (c fixedClock) Sleep(d time.Duration)                  {}

type mockActionRepo struct {
	FindByIDFunc           func(ctx context.Context, id primitive.ObjectID) (*domain.ProxyAction, error)
	InsertFunc             func(ctx context.Context, a *domain.ProxyAction) (primitive.ObjectID, error)
	ConditionalSaveFunc    func(ctx context.Context, a *domain.ProxyAction, expectedVersion int64) (bool, error)
	FindPendingExpiredFunc func(ctx context.Context, now time.Time, limit int) ([]domain.ProxyAction, error)
	SearchFunc             func(ctx context.Context, req models.SearchActionsRequest) ([]domain.ProxyAction, error)
	RecordTemplateUseFunc  func(ctx context.Context, templateID, childID primitive.ObjectID) error
}

func (m *mockActionRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.ProxyAction, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: action %s", domain.ErrNotFound, id.Hex())
}

func (m *mockActionRepo) Insert(ctx context.Context, a *domain.ProxyAction) (primitive.ObjectID, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, a)
	}
	return a.ID, nil
}

func (m *mockActionRepo) ConditionalSave(ctx context.Context, a *domain.ProxyAction, expectedVersion int64) (bool, error) {
	if m.ConditionalSaveFunc != nil {
		return m.ConditionalSaveFunc(ctx, a, expectedVersion)
	}
	a.Version = expectedVersion + 1
	return true, nil
}

func (m *mockActionRepo) FindPendingExpired(ctx context.Context, now time.Time, limit int) ([]domain.ProxyAction, error) {
	if m.FindPendingExpiredFunc != nil {
		return m.FindPendingExpiredFunc(ctx, now, limit)
	}
	return nil, nil
}

func (m *mockActionRepo) Search(ctx context.Context, req models.SearchActionsRequest) ([]domain.ProxyAction, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockActionRepo) RecordTemplateUse(ctx context.Context, templateID, childID primitive.ObjectID) error {
	if m.RecordTemplateUseFunc != nil {
		return m.RecordTemplateUseFunc(ctx, templateID, childID)
	}
	return nil
}

type mockLoanRepo struct {
	SaveFunc         func(ctx context.Context, l *domain.Loan) (primitive.ObjectID, error)
	FindByMemberFunc func(ctx context.Context, memberID primitive.ObjectID) ([]domain.Loan, error)
	UpdateStatusFunc func(ctx context.Context, id primitive.ObjectID, status domain.LoanStatus, now time.Time) error
}

func (m *mockLoanRepo) Save(ctx context.Context, l *domain.Loan) (primitive.ObjectID, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, l)
	}
	l.ID = primitive.NewObjectID()
	return l.ID, nil
}

func (m *mockLoanRepo) FindByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Loan, error) {
	if m.FindByMemberFunc != nil {
		return m.FindByMemberFunc(ctx, memberID)
	}
	return nil, nil
}

func (m *mockLoanRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.LoanStatus, now time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, now)
	}
	return nil
}

type mockMemberRepo struct {
	FindByIDFunc        func(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	FindByUsernameFunc  func(ctx context.Context, username string) (*domain.Member, error)
	FindBySessionIDFunc func(ctx context.Context, sessionID string, now time.Time) (*domain.Member, error)
	FindByApiKeyFunc    func(ctx context.Context, apiKey string) (*domain.Member, error)
	FindAllFunc         func(ctx context.Context) ([]domain.Member, error)
	SaveFunc            func(ctx context.Context, m *domain.Member) (primitive.ObjectID, error)
	UpdateSessionFunc   func(ctx context.Context, memberID primitive.ObjectID, sessionID string, expiry time.Time) error
}

func (m *mockMemberRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: member %s", domain.ErrNotFound, id.Hex())
}

func (m *mockMemberRepo) FindByUsername(ctx context.Context, username string) (*domain.Member, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, fmt.Errorf("%w: member %s", domain.ErrNotFound, username)
}

func (m *mockMemberRepo) FindBySessionID(ctx context.Context, sessionID string, now time.Time) (*domain.Member, error) {
	if m.FindBySessionIDFunc != nil {
		return m.FindBySessionIDFunc(ctx, sessionID, now)
	}
	return nil, fmt.Errorf("%w: session", domain.ErrNotFound)
}

func (m *mockMemberRepo) FindByApiKey(ctx context.Context, apiKey string) (*domain.Member, error) {
	if m.FindByApiKeyFunc != nil {
		return m.FindByApiKeyFunc(ctx, apiKey)
	}
	return nil, fmt.Errorf("%w: api key", domain.ErrNotFound)
}

func (m *mockMemberRepo) FindAll(ctx context.Context) ([]domain.Member, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockMemberRepo) Save(ctx context.Context, member *domain.Member) (primitive.ObjectID, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, member)
	}
	member.ID = primitive.NewObjectID()
	return member.ID, nil
}

func (m *mockMemberRepo) UpdateSession(ctx context.Context, memberID primitive.ObjectID, sessionID string, expiry time.Time) error {
	if m.UpdateSessionFunc != nil {
		return m.UpdateSessionFunc(ctx, memberID, sessionID, expiry)
	}
	return nil
}
