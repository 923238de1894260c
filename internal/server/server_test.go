package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"queridoc-web/internal/bootstrap"
	"queridoc-web/internal/config"
	"queridoc-web/internal/controller"
	"queridoc-web/internal/entity"
	"queridoc-web/internal/handler"
	"queridoc-web/internal/pkg/logger"
	"queridoc-web/internal/repository/memory"
	"queridoc-web/internal/service"
	"queridoc-web/internal/view"
	"queridoc-web/pkg/identity"
	"queridoc-web/pkg/qnaclient"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSID = "0b9a2f3e-7c1d-4e5f-8a6b-9c0d1e2f3a4b"

type stubAPI struct {
	mu        sync.Mutex
	questions []string
}

func (s *stubAPI) ListFiles(context.Context, string) ([]entity.FileRecord, error) {
	return []entity.FileRecord{{Filename: "a.pdf"}, {Filename: "b.pdf"}}, nil
}

func (s *stubAPI) GetHistory(context.Context, string, string) ([]entity.QnAHistoryEntry, error) {
	return nil, nil
}

func (s *stubAPI) AskQuestion(_ context.Context, _, _, question string) (*qnaclient.AskResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, question)
	return &qnaclient.AskResponse{Answer: "**yes**"}, nil
}

func (s *stubAPI) UploadFile(context.Context, string, string, string, io.Reader) (*qnaclient.UploadResponse, error) {
	return &qnaclient.UploadResponse{Message: "stored"}, nil
}

type stubProvider struct{}

func (stubProvider) LoginURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}

func (stubProvider) SignIn(context.Context, string, string) (*identity.Identity, error) {
	return &identity.Identity{IDToken: "tok", Email: "ada@example.com", DisplayName: "Ada Lovelace"}, nil
}

func (stubProvider) SignOut(context.Context, string, string) error { return nil }

func (stubProvider) OnAuthStateChanged(func(identity.AuthState)) (identity.Subscription, error) {
	return nil, nil
}

type testEnv struct {
	app      *fiber.App
	sessions *memory.SessionRepository
	api      *stubAPI
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	log := logger.NewNopLogger()
	sessions := memory.NewSessionRepository(time.Hour, log)
	api := &stubAPI{}
	provider := stubProvider{}

	chat := service.NewChatService(api, memory.NewChatStateRepository(), log)
	upload := service.NewUploadService(api, log)
	auth := service.NewAuthService(provider, sessions, chat, nil, log)

	container := &bootstrap.Container{
		Logger:           log,
		Sessions:         sessions,
		Renderer:         renderer,
		PageController:   controller.NewPageController(renderer),
		OAuthController:  controller.NewOAuthController(auth, false, log),
		AuthController:   controller.NewAuthController(auth),
		ChatController:   controller.NewChatController(chat, renderer),
		UploadController: controller.NewUploadController(upload, renderer),
		AuthEventHandler: handler.NewAuthEventHandler(provider, auth, log),
	}
	cfg := &config.Config{Session: config.SessionConfig{CookieName: "sid"}}

	return &testEnv{app: New(cfg, container).GetApp(), sessions: sessions, api: api}
}

func (e *testEnv) login(t *testing.T) {
	require.NoError(t, e.sessions.Save(context.Background(), testSID,
		&entity.Session{Token: "tok", Email: "ada@example.com", Name: "Ada Lovelace"}))
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func sidCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	return ""
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestProtectedPagesRedirectWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/ask", "/upload", "/somewhere"} {
		resp := env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, fiber.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/", resp.Header.Get("Location"), path)
	}

	resp := env.do(t, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("question=hi")))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, env.api.questions)
}

func TestLoginOnlyWhenLoggedOut(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Login with Google")

	env.login(t)
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestLandingGreetsUser(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Welcome, Ada!")
}

func TestAskFlow(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/ask?file=b.pdf", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, `<option value="b.pdf" selected>`)

	form := url.Values{"filename": {"b.pdf"}, "question": {"Is it?"}}
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	resp = env.do(t, req)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/ask#latest", resp.Header.Get("Location"))
	assert.Equal(t, []string{"Is it?"}, env.api.questions)

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/ask", nil))
	page = body(t, resp)
	assert.Contains(t, page, "Is it?")
	assert.Contains(t, page, "<strong>yes</strong>")
}

func TestOAuthStartAndBadCallback(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "https://accounts.example.com/"))

	var state string
	for _, c := range resp.Cookies() {
		if c.Name == "queridoc_oauth_state" {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=c&state=forged", nil))
	assert.Equal(t, "/login?failed=1", resp.Header.Get("Location"))
	assert.Empty(t, sidCookie(resp))
	assert.Nil(t, env.sessions.Load(context.Background(), testSID))
}

func TestCallbackIssuesFreshSessionID(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	var state string
	for _, c := range resp.Cookies() {
		if c.Name == "queridoc_oauth_state" {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=c&state="+url.QueryEscape(state), nil)
	req.AddCookie(&http.Cookie{Name: "queridoc_oauth_state", Value: state})
	resp = env.do(t, req)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// The id the browser held before login must not become authenticated.
	rotated := sidCookie(resp)
	require.NotEmpty(t, rotated)
	assert.NotEqual(t, testSID, rotated)
	assert.Nil(t, env.sessions.Load(context.Background(), testSID))
	if s := env.sessions.Load(context.Background(), rotated); assert.NotNil(t, s) {
		assert.Equal(t, "ada@example.com", s.Email)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.do(t, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Nil(t, env.sessions.Load(context.Background(), testSID))

	rotated := sidCookie(resp)
	require.NotEmpty(t, rotated)
	assert.NotEqual(t, testSID, rotated)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body(t, resp))
}
