package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"accounts-web-server/config"
	"accounts-web-server/internal/apperrors"
	"accounts-web-server/internal/handler"
	"accounts-web-server/internal/model"
	"accounts-web-server/internal/model/requestresponse"
	"accounts-web-server/internal/security"
	"accounts-web-server/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== IN-MEMORY FAKES =====

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, apperrors.ErrDuplicateEmail
		}
	}
	copied := *user
	copied.Status = model.UserStatusActive
	copied.CreatedAt = time.Now()
	f.users[user.UUID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeUserStore) FindByUUID(_ context.Context, uuid string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[uuid]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserStore) UpdateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[user.UUID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Email = user.Email
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, uuid, newPasswordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[uuid]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.PasswordHash = newPasswordHash
	return nil
}

func (f *fakeUserStore) SetAvatarKey(_ context.Context, uuid, avatarKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[uuid]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.AvatarKey.String = avatarKey
	stored.AvatarKey.Valid = true
	return nil
}

func (f *fakeUserStore) Deactivate(_ context.Context, uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[uuid]
	if !ok || stored.Status == model.UserStatusInactive {
		return apperrors.ErrNotFound
	}
	stored.Status = model.UserStatusInactive
	return nil
}

func (f *fakeUserStore) ListUsers(_ context.Context, _ string, limit int) ([]*model.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []*model.User
	for _, user := range f.users {
		copied := *user
		users = append(users, &copied)
		if len(users) == limit {
			break
		}
	}
	return users, "", nil
}

func (f *fakeUserStore) Exists(_ context.Context, uuid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[uuid]
	return ok, nil
}

type fakeLedger struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{tokens: make(map[string]*model.RefreshToken)}
}

func (f *fakeLedger) SaveRefreshToken(_ context.Context, token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *token
	f.tokens[token.JTI] = &copied
	return nil
}

func (f *fakeLedger) FindByJTI(_ context.Context, jti string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[jti]
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	copied := *token
	return &copied, nil
}

func (f *fakeLedger) RevokeByJTI(_ context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[jti]
	if !ok || token.Revoked {
		return apperrors.ErrTokenRevoked
	}
	token.Revoked = true
	return nil
}

func (f *fakeLedger) Rotate(_ context.Context, oldJTI string, newToken *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[oldJTI]
	if !ok || token.Revoked {
		return apperrors.ErrTokenRevoked
	}
	token.Revoked = true
	copied := *newToken
	f.tokens[newToken.JTI] = &copied
	return nil
}

func (f *fakeLedger) RevokeAllForUser(_ context.Context, userUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.UserUUID == userUUID {
			token.Revoked = true
		}
	}
	return nil
}

func (f *fakeLedger) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeCache struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (f *fakeCache) MarkRevoked(_ context.Context, jti string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = true
	return nil
}

func (f *fakeCache) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[jti], nil
}

// ===== SETUP =====

func newTestRouter() *chi.Mux {
	cfg := &config.AppConfig{
		JWT: config.JWTConfig{
			SecretKey:       "secret",
			AccessTokenTTL:  "15m",
			RefreshTokenTTL: "1h",
			RotateOnUse:     true,
		},
	}

	users := newFakeUserStore()
	ledger := newFakeLedger()
	cache := &fakeCache{revoked: make(map[string]bool)}
	jwtService := security.NewJWTService(&cfg.JWT)
	hasher := security.NewPasswordHasher(&config.PasswordConfig{BcryptCost: 4, MaxConcurrent: 4})

	authService := service.NewAuthenticationService(ledger, cache, cfg, jwtService, users, hasher)
	authHandler := handler.NewAuthenticationHandler(authService)

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.RefreshToken)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(protected chi.Router) {
			protected.Use(security.JWTMiddleware(jwtService, ledger, cache))
			protected.Get("/me", authHandler.GetCurrentUsersUUID)
		})
	})

	return router
}

func doJSON(t *testing.T, router *chi.Mux, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ===== SCENARIO =====

// Полный жизненный цикл сессии: регистрация, логин, доступ по access-токену,
// ротация refresh-токена, logout.
func TestAuthenticationFlow(t *testing.T) {
	router := newTestRouter()

	// регистрация
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", requestresponse.RegisterRequest{
		Email:           "user@example.com",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var registered requestresponse.RegisterResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&registered))
	assert.Equal(t, "user@example.com", registered.Response.Email)
	assert.NotEmpty(t, registered.Response.UUID)
	// пароль и хэш не возвращаются
	assert.NotContains(t, rec.Body.String(), "Str0ng!pass")

	// повторная регистрация того же email
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", requestresponse.RegisterRequest{
		Email:           "user@example.com",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// логин с неверным паролем
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", requestresponse.LoginRequest{
		Email:    "user@example.com",
		Password: "WrongPass1!",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// логин с несуществующим email возвращает тот же ответ
	recUnknown := doJSON(t, router, http.MethodPost, "/api/auth/login", requestresponse.LoginRequest{
		Email:    "nobody@example.com",
		Password: "WrongPass1!",
	}, nil)
	assert.Equal(t, rec.Code, recUnknown.Code)
	assert.Equal(t, rec.Body.String(), recUnknown.Body.String())

	// успешный логин
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", requestresponse.LoginRequest{
		Email:    "user@example.com",
		Password: "Str0ng!pass",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login requestresponse.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	require.NotEmpty(t, login.Response.AccessToken)
	require.NotEmpty(t, login.Response.RefreshToken)

	// access-токен открывает защищенный маршрут
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + login.Response.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var me requestresponse.CurrentUserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, registered.Response.UUID, me.Response.UserUUID)

	// без токена доступа нет
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// refresh: выдается новая пара, старый refresh отзывается
	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh", requestresponse.RefreshTokenRequest{
		RefreshToken: login.Response.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refreshed requestresponse.RefreshTokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&refreshed))
	require.NotEmpty(t, refreshed.Response.RefreshToken)
	assert.NotEqual(t, login.Response.RefreshToken, refreshed.Response.RefreshToken)

	// отозванный refresh-токен больше не работает
	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh", requestresponse.RefreshTokenRequest{
		RefreshToken: login.Response.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// вместе с ним перестает работать и access-токен отозванной сессии
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + login.Response.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logout по действующему refresh-токену
	rec = doJSON(t, router, http.MethodPost, "/api/auth/logout", requestresponse.LogoutRequest{
		RefreshToken: refreshed.Response.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// после logout сессия мертва
	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh", requestresponse.RefreshTokenRequest{
		RefreshToken: refreshed.Response.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// повторный logout тем же токеном
	rec = doJSON(t, router, http.MethodPost, "/api/auth/logout", requestresponse.LogoutRequest{
		RefreshToken: refreshed.Response.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name string
		req  requestresponse.RegisterRequest
	}{
		{"некорректный email", requestresponse.RegisterRequest{Email: "bad", Password: "Str0ng!pass", PasswordConfirm: "Str0ng!pass"}},
		{"пароли не совпадают", requestresponse.RegisterRequest{Email: "a@b.com", Password: "Str0ng!pass", PasswordConfirm: "Other!pass1"}},
		{"слабый пароль", requestresponse.RegisterRequest{Email: "a@b.com", Password: "weak", PasswordConfirm: "weak"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/auth/register", tc.req, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", requestresponse.LoginRequest{Email: "a@b.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh", requestresponse.RefreshTokenRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Поддельный и просроченный токены дают 401, тело ответа не различает причины
func TestRefresh_BadTokens(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh", requestresponse.RefreshTokenRequest{
		RefreshToken: "garbage.token.value",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expiredService := security.NewJWTService(&config.JWTConfig{
		SecretKey:       "secret",
		AccessTokenTTL:  "15m",
		RefreshTokenTTL: "1ns",
	})
	pair, _, err := expiredService.GenerateAccessRefreshTokens("u1")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh", requestresponse.RefreshTokenRequest{
		RefreshToken: pair.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
