package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clothing-store/internal/shared/model"
)

type countingObserver map[string]int

func (c countingObserver) ObserveLogin(outcome string) { c[outcome]++ }

func newTestMux(store UserStore, obs LoginObserver) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(store, testCfg, obs).RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data)))
	return rec
}

func TestRegisterHandler(t *testing.T) {
	store := newMemUserStore()
	mux := newTestMux(store, nil)

	rec := postJSON(t, mux, "/api/auth/register", map[string]string{
		"userName": "alice", "email": "alice@example.com", "password": "p1",
		"phone": "0711", "postalCode": "10100", "address": "Main st",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Message string                 `json:"message"`
		NewUser map[string]interface{} `json:"newUser"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "alice", resp.NewUser["userName"])
	assert.Equal(t, "User", resp.NewUser["role"])
	assert.NotContains(t, rec.Body.String(), "password")
	assert.True(t, CheckPassword("p1", store.users["alice"].PasswordHash))

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"duplicate", map[string]string{"userName": "alice", "password": "x"}, http.StatusConflict},
		{"missing password", map[string]string{"userName": "bob"}, http.StatusBadRequest},
		{"missing userName", map[string]string{"password": "x"}, http.StatusBadRequest},
		{"invalid role", map[string]string{"userName": "bob", "password": "x", "role": "Root"}, http.StatusBadRequest},
		{"admin role", map[string]string{"userName": "carol", "password": "x", "role": "Admin"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, mux, "/api/auth/register", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, model.UserRoleAdmin, store.users["carol"].Role)
}

func TestLoginHandler(t *testing.T) {
	store := newMemUserStore()
	alice := store.addUser(t, "alice", "p1", model.UserRoleUser)
	obs := countingObserver{}
	mux := newTestMux(store, obs)

	rec := postJSON(t, mux, "/api/auth/login", loginRequest{UserName: "alice", Password: "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message  string                 `json:"message"`
		Token    string                 `json:"token"`
		UserFind map[string]interface{} `json:"userFind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User logged in successfully", resp.Message)
	assert.Equal(t, alice.ID, resp.UserFind["_id"])
	claims, err := ParseToken(testCfg, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserName)

	rec = postJSON(t, mux, "/api/auth/login", loginRequest{UserName: "alice", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Password is not correct"}`, rec.Body.String())

	rec = postJSON(t, mux, "/api/auth/login", loginRequest{UserName: "ghost", Password: "p1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"User ghost not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, countingObserver{"success": 1, "invalid_credentials": 1, "user_not_found": 1}, obs)
}
