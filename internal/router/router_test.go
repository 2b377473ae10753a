package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-todo-session/config"
	"github.com/oksasatya/go-todo-session/internal/domain/entity"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/memory"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/session"
	"github.com/oksasatya/go-todo-session/pkg/helpers"
	"github.com/oksasatya/go-todo-session/pkg/validation"
)

func init() { gin.SetMode(gin.TestMode) }

type app struct {
	srv   *httptest.Server
	mr    *miniredis.Miniredis
	users *memory.UserRepository
	todos *memory.TodoRepository
}

type appOption func(*config.Config)

func newApp(t *testing.T, opts ...appOption) *app {
	t.Helper()
	validation.Init()

	cfg := config.Load()
	cfg.Env = "test"
	cfg.BcryptCost = 4
	cfg.RateLimitMax = 1000
	cfg.RateLimitWindow = time.Second
	cfg.CORSAllowedOrigins = ""
	for _, o := range opts {
		o(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := session.NewRedisStore(rdb, []byte(cfg.SessionSecret))
	store.Options(helpers.SessionCookieOptions(cfg.CookieDomain, cfg.CookieSecure, cfg.SessionMaxAge))

	a := &app{mr: mr, users: memory.NewUserRepository(), todos: memory.NewTodoRepository()}
	engine := NewEngine(cfg, store)
	reg := NewRegistry(engine)
	reg.Add(BuildModules(Deps{
		Config:   cfg,
		Redis:    rdb,
		Sessions: store,
		Users:    a.users,
		Todos:    a.todos,
	})...)
	reg.RegisterAll()

	a.srv = httptest.NewServer(engine)
	t.Cleanup(a.srv.Close)
	return a
}

// client is one browser: its own cookie jar, redirects not followed.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (a *app) client(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: a.srv.URL, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type result struct {
	code     int
	location string
	body     string
	env      envelope
}

func (c *client) do(method, path, contentType string, body io.Reader) result {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer func() { _ = res.Body.Close() }()
	b, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)

	out := result{code: res.StatusCode, location: res.Header.Get("Location"), body: string(b)}
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(b, &out.env))
		if out.env.Message != "" {
			assert.Equal(c.t, res.StatusCode, out.env.Status, "envelope status mirrors HTTP status")
		}
	}
	return out
}

func (c *client) postJSON(path string, payload any) result {
	b, err := json.Marshal(payload)
	require.NoError(c.t, err)
	return c.do(http.MethodPost, path, "application/json", strings.NewReader(string(b)))
}

func (c *client) postForm(path string, form url.Values) result {
	return c.do(http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *client) get(path string) result {
	return c.do(http.MethodGet, path, "", nil)
}

func (c *client) register(name, email, username, password string) result {
	return c.postForm("/register", url.Values{
		"name": {name}, "email": {email}, "username": {username}, "password": {password},
	})
}

func (c *client) login(loginID, password string) result {
	return c.postForm("/login", url.Values{"loginId": {loginID}, "password": {password}})
}

func signedIn(t *testing.T, a *app, name, email, username string) *client {
	t.Helper()
	c := a.client(t)
	require.Equal(t, http.StatusFound, c.register(name, email, username, "Secret123").code)
	require.Equal(t, http.StatusFound, c.login(username, "Secret123").code)
	return c
}

func decodeTodo(t *testing.T, raw json.RawMessage) entity.Todo {
	t.Helper()
	var todo entity.Todo
	require.NoError(t, json.Unmarshal(raw, &todo))
	return todo
}

func decodeTodos(t *testing.T, raw json.RawMessage) []entity.Todo {
	t.Helper()
	var todos []entity.Todo
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &todos))
	}
	return todos
}

func TestScenarioRegisterLoginCreateReadForbiddenEdit(t *testing.T) {
	a := newApp(t)
	alice := a.client(t)

	res := alice.register("A", "a@x.com", "a1", "Secret123")
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/login", res.location)

	res = alice.login("a@x.com", "Secret123")
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/dashboard", res.location)

	res = alice.postJSON("/create-item", map[string]any{"todo": "buy milk"})
	require.Equal(t, http.StatusCreated, res.code)
	assert.Equal(t, "todo created successfully", res.env.Message)
	created := decodeTodo(t, res.env.Data)
	assert.Equal(t, "a1", created.Username)

	res = alice.get("/read-item?skip=0")
	require.Equal(t, http.StatusOK, res.code)
	page := decodeTodos(t, res.env.Data)
	require.Len(t, page, 1)
	assert.Equal(t, "buy milk", page[0].Todo)

	bob := signedIn(t, a, "B", "b@x.com", "b2")
	res = bob.postJSON("/edit-item", map[string]any{"id": created.ID, "newData": "buy oat milk"})
	assert.Equal(t, http.StatusForbidden, res.code)

	stored, err := a.todos.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", stored.Todo)
}

func TestScenarioShortTodoRejectedBeforeWrite(t *testing.T) {
	a := newApp(t)
	c := signedIn(t, a, "A", "a@x.com", "a1")

	res := c.postJSON("/create-item", map[string]any{"todo": "ab"})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "todo length should be 3-200", res.env.Message)
	assert.Zero(t, a.todos.Writes)
}

func TestCreateValidationOrder(t *testing.T) {
	a := newApp(t)
	c := signedIn(t, a, "A", "a@x.com", "a1")

	assert.Equal(t, "missing todo text", c.postJSON("/create-item", map[string]any{}).env.Message)
	assert.Equal(t, "todo is not a text", c.postJSON("/create-item", map[string]any{"todo": 12}).env.Message)
	assert.Equal(t, "todo length should be 3-200", c.postJSON("/create-item", map[string]any{"todo": strings.Repeat("x", 201)}).env.Message)
	assert.Zero(t, a.todos.Writes)
}

func TestRegisterDuplicatesRejectedBeforeWrite(t *testing.T) {
	a := newApp(t)
	c := a.client(t)
	require.Equal(t, http.StatusFound, c.register("A", "a@x.com", "a1", "Secret123").code)

	res := c.register("A2", "a@x.com", "fresh", "Secret123")
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "email exists", res.env.Message)
	_, err := a.users.GetByUsername(context.Background(), "fresh")
	assert.Error(t, err)

	res = c.register("A3", "fresh@x.com", "a1", "Secret123")
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "username exists", res.env.Message)
	_, err = a.users.GetByEmail(context.Background(), "fresh@x.com")
	assert.Error(t, err)
}

func TestRegisterValidationNamesFirstField(t *testing.T) {
	a := newApp(t)
	c := a.client(t)

	res := c.postJSON("/register", map[string]any{"name": "A", "email": "not-an-email", "username": "a b", "password": "x"})
	require.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "user data error", res.env.Message)
	var fe validation.FieldError
	require.NoError(t, json.Unmarshal(res.env.Error, &fe))
	assert.Equal(t, "email", fe.Field)

	res = c.register("A", "a@x.com", "a1", "short")
	require.Equal(t, http.StatusBadRequest, res.code)
	require.NoError(t, json.Unmarshal(res.env.Error, &fe))
	assert.Equal(t, "password", fe.Field)
}

func TestRegisterPasswordAndEmailLimits(t *testing.T) {
	a := newApp(t)
	c := a.client(t)
	var fe validation.FieldError

	// 40 characters but 80 bytes, over bcrypt's limit
	res := c.register("A", "a@x.com", "a1", strings.Repeat("é", 40))
	require.Equal(t, http.StatusBadRequest, res.code)
	require.NoError(t, json.Unmarshal(res.env.Error, &fe))
	assert.Equal(t, "password", fe.Field)

	long := strings.Repeat("a", 64) + "@" + strings.Repeat("bbbbbbbbbb.", 18) + "com"
	res = c.register("A", long, "a1", "Secret123")
	require.Equal(t, http.StatusBadRequest, res.code)
	require.NoError(t, json.Unmarshal(res.env.Error, &fe))
	assert.Equal(t, "email", fe.Field)

	res = c.register("A", "a@x.com", "../exports/bob", "Secret123")
	require.Equal(t, http.StatusBadRequest, res.code)
	require.NoError(t, json.Unmarshal(res.env.Error, &fe))
	assert.Equal(t, "username", fe.Field)

	// a multi-byte password within 72 bytes is fine
	res = c.register("A", "a@x.com", "a1", strings.Repeat("é", 36))
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/login", res.location)
}

func TestLoginFailures(t *testing.T) {
	a := newApp(t)
	c := a.client(t)
	require.Equal(t, http.StatusFound, c.register("A", "a@x.com", "a1", "Secret123").code)

	res := c.postJSON("/login", map[string]any{"loginId": "a1"})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "missing credentials", res.env.Message)

	assert.Equal(t, http.StatusNotFound, c.login("nobody", "Secret123").code)
	assert.Equal(t, http.StatusUnauthorized, c.login("a1", "Wrong1234").code)

	// still anonymous
	assert.Equal(t, http.StatusUnauthorized, c.get("/read-item").code)
}

func TestAuthGate(t *testing.T) {
	a := newApp(t)
	c := a.client(t)

	for _, path := range []string{"/read-item", "/dashboard"} {
		res := c.get(path)
		assert.Equal(t, http.StatusUnauthorized, res.code, path)
		assert.Equal(t, "session expired, please login again", res.env.Message, path)
	}
	for _, path := range []string{"/create-item", "/edit-item", "/delete-item", "/logout", "/logout_from_all_devices"} {
		assert.Equal(t, http.StatusUnauthorized, c.postJSON(path, map[string]any{}).code, path)
	}
}

func TestPagesAndLiveness(t *testing.T) {
	a := newApp(t)
	c := a.client(t)

	res := c.get("/")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Todo App server is running", res.body)

	assert.Contains(t, c.get("/login").body, `action="/login"`)
	assert.Contains(t, c.get("/register").body, `action="/register"`)

	c = signedIn(t, a, "A", "a@x.com", "a1")
	res = c.get("/dashboard")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, "Hi a1")
}

func TestReadPagination(t *testing.T) {
	a := newApp(t)
	c := signedIn(t, a, "A", "a@x.com", "a1")

	res := c.get("/read-item")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "no todos found", res.env.Message)

	for i := 0; i < 6; i++ {
		require.Equal(t, http.StatusCreated, c.postJSON("/create-item", map[string]any{"todo": "todo " + string(rune('a'+i)) + "!"}).code)
	}

	res = c.get("/read-item?skip=0")
	assert.Len(t, decodeTodos(t, res.env.Data), 5)
	res = c.get("/read-item?skip=5")
	assert.Len(t, decodeTodos(t, res.env.Data), 1)

	res = c.get("/read-item?skip=6")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "no more todos", res.env.Message)
	assert.Empty(t, decodeTodos(t, res.env.Data))

	assert.Equal(t, http.StatusBadRequest, c.get("/read-item?skip=-1").code)
	assert.Equal(t, http.StatusBadRequest, c.get("/read-item?skip=abc").code)
}

func TestEditReturnsPreviousRecord(t *testing.T) {
	a := newApp(t)
	c := signedIn(t, a, "A", "a@x.com", "a1")
	created := decodeTodo(t, c.postJSON("/create-item", map[string]any{"todo": "buy milk"}).env.Data)

	res := c.postJSON("/edit-item", map[string]any{"id": created.ID, "newData": "buy oat milk"})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "todo edited successfully", res.env.Message)
	assert.Equal(t, "buy milk", decodeTodo(t, res.env.Data).Todo)

	page := decodeTodos(t, c.get("/read-item").env.Data)
	require.Len(t, page, 1)
	assert.Equal(t, "buy oat milk", page[0].Todo)

	assert.Equal(t, http.StatusBadRequest, c.postJSON("/edit-item", map[string]any{"newData": "buy oat milk"}).code)
	assert.Equal(t, http.StatusNotFound, c.postJSON("/edit-item", map[string]any{"id": "missing", "newData": "buy oat milk"}).code)
}

func TestDelete(t *testing.T) {
	a := newApp(t)
	alice := signedIn(t, a, "A", "a@x.com", "a1")
	bob := signedIn(t, a, "B", "b@x.com", "b2")
	created := decodeTodo(t, alice.postJSON("/create-item", map[string]any{"todo": "buy milk"}).env.Data)

	assert.Equal(t, http.StatusForbidden, bob.postJSON("/delete-item", map[string]any{"id": created.ID}).code)
	_, err := a.todos.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, alice.postJSON("/delete-item", map[string]any{}).code)

	res := alice.postJSON("/delete-item", map[string]any{"id": created.ID})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "buy milk", decodeTodo(t, res.env.Data).Todo)

	// deleting again, or deleting garbage, is always not found
	for _, id := range []any{created.ID, "64b7f0c2e1", 42} {
		res = alice.postJSON("/delete-item", map[string]any{"id": id})
		assert.Equal(t, http.StatusNotFound, res.code, id)
	}
}

func TestRateGate(t *testing.T) {
	a := newApp(t, func(c *config.Config) {
		c.RateLimitMax = 1
		c.RateLimitWindow = time.Second
	})
	c := signedIn(t, a, "A", "a@x.com", "a1")

	assert.Equal(t, http.StatusCreated, c.postJSON("/create-item", map[string]any{"todo": "first"}).code)
	res := c.postJSON("/create-item", map[string]any{"todo": "second"})
	assert.Equal(t, http.StatusTooManyRequests, res.code)
	assert.Equal(t, 1, a.todos.Writes)

	// reads are not gated
	assert.Equal(t, http.StatusOK, c.get("/read-item").code)

	a.mr.FastForward(time.Second)
	assert.Equal(t, http.StatusCreated, c.postJSON("/create-item", map[string]any{"todo": "third"}).code)
}

func TestLogout(t *testing.T) {
	a := newApp(t)
	c := signedIn(t, a, "A", "a@x.com", "a1")
	require.Equal(t, http.StatusOK, c.get("/read-item").code)

	res := c.postJSON("/logout", nil)
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/login", res.location)
	assert.Equal(t, http.StatusUnauthorized, c.get("/read-item").code)
}

func TestLogoutFromAllDevices(t *testing.T) {
	a := newApp(t)
	phone := signedIn(t, a, "A", "a@x.com", "a1")
	laptop := a.client(t)
	require.Equal(t, http.StatusFound, laptop.login("a@x.com", "Secret123").code)
	bob := signedIn(t, a, "B", "b@x.com", "b2")

	for _, c := range []*client{phone, laptop, bob} {
		require.Equal(t, http.StatusOK, c.get("/read-item").code)
	}

	res := laptop.postJSON("/logout_from_all_devices", nil)
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/login", res.location)

	assert.Equal(t, http.StatusUnauthorized, phone.get("/read-item").code)
	assert.Equal(t, http.StatusUnauthorized, laptop.get("/read-item").code)
	assert.Equal(t, http.StatusOK, bob.get("/read-item").code)
}

func TestOptionalFeaturesUnavailable(t *testing.T) {
	a := newApp(t)
	c := signedIn(t, a, "A", "a@x.com", "a1")

	res := c.get("/search-item?q=milk")
	assert.Equal(t, http.StatusServiceUnavailable, res.code)
	assert.Equal(t, "search unavailable", res.env.Message)

	res = c.postJSON("/export-items", nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.code)
	assert.Equal(t, "export unavailable", res.env.Message)
}

func TestStoreFailureIsServerError(t *testing.T) {
	a := newApp(t)
	c := signedIn(t, a, "A", "a@x.com", "a1")
	a.todos.Err = assert.AnError

	res := c.postJSON("/create-item", map[string]any{"todo": "buy milk"})
	assert.Equal(t, http.StatusInternalServerError, res.code)
	assert.Equal(t, "database error", res.env.Message)
	assert.NotContains(t, res.body, assert.AnError.Error())
}

func TestDebugVars(t *testing.T) {
	a := newApp(t, func(c *config.Config) { c.DebugMetricsEnabled = true })
	res := a.client(t).get("/debug/vars")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, "memstats")

	b := newApp(t)
	assert.Equal(t, http.StatusNotFound, b.client(t).get("/debug/vars").code)
}
