package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novo-pos/api/internal/auth"
	"github.com/novo-pos/api/internal/enum"
	"github.com/novo-pos/api/internal/handler"
	"github.com/novo-pos/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// --- Mock store ---

type mockAuthStore struct {
	users map[string]store.User
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{users: make(map[string]store.User)}
}

func (m *mockAuthStore) addUser(u store.User) {
	m.users[u.Username] = u
}

func (m *mockAuthStore) GetUserByUsername(_ context.Context, username string) (store.User, error) {
	u, ok := m.users[username]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return u, nil
}

// --- Helpers ---

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func makeTestUser(t *testing.T) store.User {
	t.Helper()
	return store.User{
		ID:           uuid.New(),
		Username:     "hall-staff",
		PasswordHash: hashPassword(t, "correct-password"),
		Role:         enum.UserRoleHall,
	}
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func newAuthRouter(st handler.AuthStore) chi.Router {
	h := handler.NewAuthHandler(st, testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Login tests ---

func TestLogin_ValidCredentials(t *testing.T) {
	st := newMockAuthStore()
	user := makeTestUser(t)
	st.addUser(user)
	r := newAuthRouter(st)

	rr := doJSON(t, r, "POST", "/auth/login", map[string]string{
		"username": "hall-staff",
		"password": "correct-password",
	}, "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	token, ok := resp["token"].(string)
	if !ok || token == "" {
		t.Fatal("expected non-empty token")
	}

	// The returned token must carry the user's identity and role.
	claims, err := auth.ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user ID: got %v, want %v", claims.UserID, user.ID)
	}
	if claims.Role != enum.UserRoleHall {
		t.Errorf("claims role: got %v, want %v", claims.Role, enum.UserRoleHall)
	}

	userResp, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if userResp["username"] != "hall-staff" {
		t.Errorf("username: got %v, want hall-staff", userResp["username"])
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	st := newMockAuthStore()
	st.addUser(makeTestUser(t))
	r := newAuthRouter(st)

	rr := doJSON(t, r, "POST", "/auth/login", map[string]string{
		"username": "hall-staff",
		"password": "wrong-password",
	}, "")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	r := newAuthRouter(newMockAuthStore())

	rr := doJSON(t, r, "POST", "/auth/login", map[string]string{
		"username": "nobody",
		"password": "password",
	}, "")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	r := newAuthRouter(newMockAuthStore())

	rr := doJSON(t, r, "POST", "/auth/login", map[string]string{
		"username": "hall-staff",
	}, "")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
