package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
)

func TestRegisterMember(t *testing.T) {
	var saved *domain.Member
	repo := &mockMemberRepo{
		SaveFunc: func(ctx context.Context, m *domain.Member) (primitive.ObjectID, error) {
			m.ID = primitive.NewObjectID()
			saved = m
			return m.ID, nil
		},
	}
	c := NewMembersController(repo, fixedClock{now: testNow})

	payload := `{"username":"wanjiku","password":"hunter2","fullName":"Wanjiku Kamau","phoneNumber":"+254700000001"}`
	req := httptest.NewRequest("POST", "/api/members", strings.NewReader(payload))
	w := httptest.NewRecorder()
	c.handleRegister(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if saved == nil {
		t.Fatal("Expected member to be saved")
	}
	if saved.PasswordHash == "hunter2" || saved.PasswordHash == "" {
		t.Error("Expected password to be hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("hunter2")) != nil {
		t.Error("Expected hash to verify against the password")
	}
	if !saved.Enabled {
		t.Error("Expected new member to be enabled")
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["apiKey"] == "" || body["apiKey"] != saved.ApiKey {
		t.Errorf("Expected generated api key in response, got %q", body["apiKey"])
	}
}

func TestRegisterMemberUsernameTaken(t *testing.T) {
	repo := &mockMemberRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Member, error) {
			return &domain.Member{ID: primitive.NewObjectID(), Username: username}, nil
		},
	}
	c := NewMembersController(repo, fixedClock{now: testNow})

	payload := `{"username":"wanjiku","password":"hunter2"}`
	req := httptest.NewRequest("POST", "/api/members", strings.NewReader(payload))
	w := httptest.NewRecorder()
	c.handleRegister(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for taken username, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	member := &domain.Member{
		ID:           primitive.NewObjectID(),
		Username:     "wanjiku",
		PasswordHash: string(hashed),
		Enabled:      true,
	}
	var sessionSet string
	repo := &mockMemberRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Member, error) {
			return member, nil
		},
		UpdateSessionFunc: func(ctx context.Context, memberID primitive.ObjectID, sessionID string, expiry time.Time) error {
			sessionSet = sessionID
			return nil
		},
	}
	c := NewMembersController(repo, fixedClock{now: testNow})

	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"username":"wanjiku","password":"hunter2"}`))
	w := httptest.NewRecorder()
	c.handleLogin(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if sessionSet == "" {
		t.Fatal("Expected session to be stored")
	}
	cookie := w.Result().Cookies()
	found := false
	for _, ck := range cookie {
		if ck.Name == "sessionId" && ck.Value == sessionSet && ck.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected HttpOnly sessionId cookie set to %q", sessionSet)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	repo := &mockMemberRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Member, error) {
			return &domain.Member{ID: primitive.NewObjectID(), Username: username, PasswordHash: string(hashed), Enabled: true}, nil
		},
	}
	c := NewMembersController(repo, fixedClock{now: testNow})

	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"username":"wanjiku","password":"wrong"}`))
	w := httptest.NewRecorder()
	c.handleLogin(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", w.Code)
	}
}

func TestLoginDisabledMember(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	repo := &mockMemberRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Member, error) {
			return &domain.Member{ID: primitive.NewObjectID(), Username: username, PasswordHash: string(hashed), Enabled: false}, nil
		},
	}
	c := NewMembersController(repo, fixedClock{now: testNow})

	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"username":"wanjiku","password":"hunter2"}`))
	w := httptest.NewRecorder()
	c.handleLogin(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for disabled member, got %d", w.Code)
	}
}
