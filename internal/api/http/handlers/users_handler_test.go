package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/user-account-service/internal/api/http"
	"github.com/spec-kit/user-account-service/internal/api/http/handlers"
	"github.com/spec-kit/user-account-service/internal/auth"
	"github.com/spec-kit/user-account-service/internal/config"
	"github.com/spec-kit/user-account-service/internal/domain"
	"github.com/spec-kit/user-account-service/internal/events"
	"github.com/spec-kit/user-account-service/internal/observability"
	"github.com/spec-kit/user-account-service/internal/repository"
	"github.com/spec-kit/user-account-service/internal/service"
)

// fakeUserRepository is an in-memory UserRepository for endpoint tests.
type fakeUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{nextID: 1, users: make(map[int64]*domain.User)}
}

func (f *fakeUserRepository) List(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepository) findBy(pred func(*domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if pred(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return f.findBy(func(u *domain.User) bool { return u.Username == username })
}

func (f *fakeUserRepository) GetByName(_ context.Context, name string) (*domain.User, error) {
	return f.findBy(func(u *domain.User) bool { return u.Name == name })
}

func (f *fakeUserRepository) GetByToken(_ context.Context, token string) (*domain.User, error) {
	return f.findBy(func(u *domain.User) bool { return u.Token == token })
}

func (f *fakeUserRepository) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID
	f.nextID++
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{}
	logger := zap.NewNop()
	userService := service.NewUserService(cfg, service.UserDependencies{
		UserRepo:     newFakeUserRepository(),
		SessionCache: repository.NewSessionCache(nil, logger),
		TokenIssuer:  auth.OpaqueTokenIssuer{},
		Verifier:     auth.PlaintextVerifier{},
		Dispatcher:   events.NewInMemoryDispatcher(),
		Logger:       logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("user-account-service", "test", nil, nil),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: auth.NewMiddleware(userService),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeUser(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t)

	// register
	resp := doJSON(t, app, http.MethodPost, "/users", map[string]string{
		"name": "secret", "username": "alice",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeUser(t, resp)
	assert.Equal(t, "alice", created["username"])
	assert.Equal(t, "ONLINE", created["status"])
	assert.Equal(t, true, created["logged_in"])
	assert.NotEmpty(t, created["token"])

	// login with the right password rotates the token
	resp = doJSON(t, app, http.MethodPut, "/users/login?username=alice&pw=secret", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := decodeUser(t, resp)
	assert.NotEqual(t, created["token"], loggedIn["token"])

	// login with a wrong password
	resp = doJSON(t, app, http.MethodPut, "/users/login?username=alice&pw=wrong", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// duplicate username
	resp = doJSON(t, app, http.MethodPost, "/users", map[string]string{
		"name": "another", "username": "alice",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// unknown id
	resp = doJSON(t, app, http.MethodGet, "/users/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetUserByID(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", map[string]string{
		"name": "secret", "username": "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeUser(t, resp)
	id := int64(created["id"].(float64))

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/users/%d", id), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeUser(t, resp)
	assert.Equal(t, created["username"], fetched["username"])
	assert.Equal(t, created["creation_date"], fetched["creation_date"])
}

func TestListUsers(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 3; i++ {
		resp := doJSON(t, app, http.MethodPost, "/users", map[string]string{
			"name": fmt.Sprintf("secret%d", i), "username": fmt.Sprintf("user%d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doJSON(t, app, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var users []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	assert.Len(t, users, 3)
}

func TestLogoutMarksOffline(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", map[string]string{
		"name": "secret", "username": "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeUser(t, resp)
	token := created["token"].(string)
	id := int64(created["id"].(float64))

	resp = doJSON(t, app, http.MethodPut, "/users/logout/?token="+token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/users/%d", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeUser(t, resp)
	assert.Equal(t, "OFFLINE", fetched["status"])
	assert.Equal(t, false, fetched["logged_in"])
}

func TestLogoutUnknownTokenStillOK(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPut, "/users/logout/?token=ghost", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", map[string]string{
		"name": "secret", "username": "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeUser(t, resp)
	id := int64(created["id"].(float64))

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/users/%d", id), map[string]any{
		"username": "alice2",
		"birthday": "1999-04-02T00:00:00Z",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/users/%d", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeUser(t, resp)
	assert.Equal(t, "alice2", fetched["username"])
	assert.Equal(t, "1999-04-02T00:00:00Z", fetched["birthday"])
}

func TestUpdateUnknownID(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPut, "/users/424242", map[string]any{
		"username": "whoever",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateUsernameTaken(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", map[string]string{
		"name": "secret-a", "username": "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/users", map[string]string{
		"name": "secret-b", "username": "bob",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bob := decodeUser(t, resp)
	bobID := int64(bob["id"].(float64))

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/users/%d", bobID), map[string]any{
		"username": "alice",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCurrentUser(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", map[string]string{
		"name": "secret", "username": "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeUser(t, resp)
	token := created["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	meResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
	me := decodeUser(t, meResp)
	assert.Equal(t, "alice", me["username"])

	// missing header
	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	meResp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, meResp.StatusCode)

	// bogus token
	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	meResp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, meResp.StatusCode)
}

func TestCreateValidation(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", map[string]string{"name": "secret"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
