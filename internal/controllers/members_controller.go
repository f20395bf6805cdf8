package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/config"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/engine"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/util"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/core"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
)

type MembersController struct {
	AuthController
}

func NewMembersController(memberRepo engine.MemberRepo, clock core.Clock) *MembersController {
	return &MembersController{AuthController: AuthController{MemberRepo: memberRepo, Clock: clock}}
}

func (c *MembersController) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.RegisterMemberRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}
	if existing, _ := c.MemberRepo.FindByUsername(r.Context(), req.Username); existing != nil {
		http.Error(w, "username is taken", http.StatusConflict)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	member := &domain.Member{
		Username:     req.Username,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hashed),
		ApiKey:       randomToken(),
		Enabled:      true,
		CreatedAt:    c.Clock.Now(),
	}
	id, err := c.MemberRepo.Save(r.Context(), member)
	if err != nil {
		slog.Error("Failed to save member", "error", err)
		http.Error(w, "failed to register member", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, map[string]string{
		"id":     id.Hex(),
		"apiKey": member.ApiKey,
	})
}

func (c *MembersController) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.LoginRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	member, err := c.MemberRepo.FindByUsername(r.Context(), req.Username)
	if err != nil || member == nil || !member.Enabled {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	sessionID := randomToken()
	expiryHours := config.GetSystemSettingInteger(config.WEB_SESSION_EXPIRY_HOURS)
	expiry := c.Clock.Now().UTC().Add(time.Duration(expiryHours) * time.Hour)
	if err := c.MemberRepo.UpdateSession(r.Context(), member.ID, sessionID, expiry); err != nil {
		slog.Error("Failed to update session", "member_id", member.ID.Hex(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "sessionId",
		Value:    sessionID,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
	})
	util.WriteJSONResponse(w, http.StatusOK, map[string]string{"sessionId": sessionID})
}

func (c *MembersController) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := c.MemberRepo.FindAll(r.Context())
	if err != nil {
		slog.Error("Failed to list members", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	result := make([]models.ApiMember, 0, len(members))
	for _, m := range members {
		result = append(result, models.ApiMember{
			ID:          m.ID.Hex(),
			Username:    m.Username,
			FullName:    m.FullName,
			PhoneNumber: m.PhoneNumber,
			Enabled:     m.Enabled,
			CreatedAt:   m.CreatedAt,
		})
	}
	util.WriteJSONResponse(w, http.StatusOK, result)
}

func randomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
