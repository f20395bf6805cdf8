package controllers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/engine"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/core"
)

type AuthController struct {
	MemberRepo engine.MemberRepo
	Clock      core.Clock
}

func NewBaseController(memberRepo engine.MemberRepo, clock core.Clock) *AuthController {
	return &AuthController{MemberRepo: memberRepo, Clock: clock}
}

// RequireAuth authenticates via the session cookie first, then the
// X-API-Key header. The authenticated member is placed on the request
// context so handlers can thread an explicit actor into the engine.
func (ac *AuthController) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1) Try session cookie
		if c, err := r.Cookie("sessionId"); err == nil && c.Value != "" {
			m, err := ac.MemberRepo.FindBySessionID(r.Context(), c.Value, ac.Clock.Now().UTC())
			if err == nil && m != nil {
				next(w, r.WithContext(withMember(r.Context(), m.ID, m.Username)))
				return
			}
		}
		// 2) Try API key from headers
		// Supported headers: X-API-Key: <key>
		apiKey := r.Header.Get("X-API-Key")
		if apiKey != "" {
			m, err := ac.MemberRepo.FindByApiKey(r.Context(), apiKey)
			if err == nil && m != nil {
				next(w, r.WithContext(withMember(r.Context(), m.ID, m.Username)))
				return
			}
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
}

func withMember(ctx context.Context, id primitive.ObjectID, username string) context.Context {
	ctx = context.WithValue(ctx, core.CtxKeyMemberID, id)
	return context.WithValue(ctx, core.CtxKeyUsername, username)
}

// MemberIDFromContext returns the authenticated member id set by
// RequireAuth.
func MemberIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(core.CtxKeyMemberID).(primitive.ObjectID)
	return id, ok
}
