package engine

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
)

// ActionRepo defines the interface for proxy action persistence,
// matching repository.ProxyActionRepository.
type ActionRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.ProxyAction, error)
	Insert(ctx context.Context, a *domain.ProxyAction) (primitive.ObjectID, error)
	// ConditionalSave writes back a loaded record only if its persisted
	// version still equals expectedVersion. A false return with a nil
	// error means another writer got there first.
	ConditionalSave(ctx context.Context, a *domain.ProxyAction, expectedVersion int64) (bool, error)
	FindPendingExpired(ctx context.Context, now time.Time, limit int) ([]domain.ProxyAction, error)
	Search(ctx context.Context, req models.SearchActionsRequest) ([]domain.ProxyAction, error)
	// RecordTemplateUse bumps the template usage counter and links the
	// spawned child. Best-effort relative to the child's creation.
	RecordTemplateUse(ctx context.Context, templateID, childID primitive.ObjectID) error
}

// MemberRepo defines the interface for member persistence.
type MemberRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	FindByUsername(ctx context.Context, username string) (*domain.Member, error)
	FindBySessionID(ctx context.Context, sessionID string, now time.Time) (*domain.Member, error)
	FindByApiKey(ctx context.Context, apiKey string) (*domain.Member, error)
	FindAll(ctx context.Context) ([]domain.Member, error)
	Save(ctx context.Context, m *domain.Member) (primitive.ObjectID, error)
	UpdateSession(ctx context.Context, memberID primitive.ObjectID, sessionID string, expiry time.Time) error
}

// ContributionRepo defines the interface for contribution persistence.
type ContributionRepo interface {
	Save(ctx context.Context, c *domain.Contribution) (primitive.ObjectID, error)
	FindByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Contribution, error)
	MemberBalances(ctx context.Context) ([]domain.MemberBalance, error)
}

// LoanRepo defines the interface for loan persistence.
type LoanRepo interface {
	Save(ctx context.Context, l *domain.Loan) (primitive.ObjectID, error)
	FindByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Loan, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.LoanStatus, now time.Time) error
}

// TransitionPublisher receives a notification after every successful
// state-changing write. Implementations must not block the transition.
type TransitionPublisher interface {
	PublishTransition(a *domain.ProxyAction, transition string, actor *primitive.ObjectID)
}
