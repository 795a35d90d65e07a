package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cafemanage/api/internal/auth"
	"github.com/cafemanage/api/internal/enum"
	"github.com/cafemanage/api/internal/handler"
	"github.com/cafemanage/api/internal/middleware"
	"github.com/cafemanage/api/internal/model"
)

// --- Mock UserStore ---

type mockUserStore struct {
	users map[string]model.User
}

func (m *mockUserStore) UserByName(username string) (model.User, bool, error) {
	u, ok := m.users[username]
	return u, ok, nil
}

// --- Mock SessionCarts ---

type mockSessionCarts struct {
	cleared []string
}

func (m *mockSessionCarts) Clear(sessionID string) {
	m.cleared = append(m.cleared, sessionID)
}

// --- Test helpers ---

func newUserStore(t *testing.T) *mockUserStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &mockUserStore{users: map[string]model.User{
		"admin": {Username: "admin", PasswordHash: string(hash), Role: enum.UserRoleAdmin},
	}}
}

func setupAuthRouter(st *mockUserStore, carts *mockSessionCarts) *chi.Mux {
	h := handler.NewAuthHandler(st, carts, testJWTSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		h.RegisterProtectedRoutes(r)
	})
	return r
}

// --- Tests ---

func TestLogin_HappyPath(t *testing.T) {
	router := setupAuthRouter(newUserStore(t), nil)

	rr := doAuthRequest(t, router, "POST", "/auth/login", map[string]string{
		"username": "admin",
		"password": "admin123",
	}, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	tokenStr, _ := resp["access_token"].(string)
	if tokenStr == "" {
		t.Fatal("access_token missing")
	}
	if resp["refresh_token"] == "" {
		t.Error("refresh_token missing")
	}

	claims, err := auth.ValidateToken(testJWTSecret, tokenStr)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.Username != "admin" || claims.Role != enum.UserRoleAdmin {
		t.Errorf("claims = %s/%s, want admin/admin", claims.Username, claims.Role)
	}
	if claims.SessionID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("session id not minted")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router := setupAuthRouter(newUserStore(t), nil)

	rr := doAuthRequest(t, router, "POST", "/auth/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	}, testClaims())

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	router := setupAuthRouter(newUserStore(t), nil)

	rr := doAuthRequest(t, router, "POST", "/auth/login", map[string]string{
		"username": "ghost",
		"password": "admin123",
	}, testClaims())

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	router := setupAuthRouter(newUserStore(t), nil)

	rr := doAuthRequest(t, router, "POST", "/auth/login", map[string]string{
		"username": "admin",
	}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRefresh_KeepsSession(t *testing.T) {
	router := setupAuthRouter(newUserStore(t), nil)

	login := doAuthRequest(t, router, "POST", "/auth/login", map[string]string{
		"username": "admin",
		"password": "admin123",
	}, testClaims())
	loginResp := decodeResponse(t, login)
	accessToken := loginResp["access_token"].(string)
	refreshToken := loginResp["refresh_token"].(string)

	original, err := auth.ValidateToken(testJWTSecret, accessToken)
	if err != nil {
		t.Fatalf("validate login token: %v", err)
	}

	rr := doAuthRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	refreshed, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("validate refreshed token: %v", err)
	}
	if refreshed.SessionID != original.SessionID {
		t.Errorf("session changed across refresh: %v -> %v", original.SessionID, refreshed.SessionID)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	router := setupAuthRouter(newUserStore(t), nil)

	rr := doAuthRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": "not-a-jwt",
	}, testClaims())

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogout_ClearsSessionCart(t *testing.T) {
	carts := &mockSessionCarts{}
	router := setupAuthRouter(newUserStore(t), carts)
	claims := testClaims()

	rr := doAuthRequest(t, router, "POST", "/auth/logout", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if len(carts.cleared) != 1 || carts.cleared[0] != claims.SessionID.String() {
		t.Errorf("cleared = %v, want the session's cart", carts.cleared)
	}
}
