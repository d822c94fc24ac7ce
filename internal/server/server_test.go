package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/authguard"
	"github.com/akshayks13/genai-frontend-sub000/internal/compile"
	"github.com/akshayks13/genai-frontend-sub000/internal/dashboard"
	"github.com/akshayks13/genai-frontend-sub000/internal/explore"
	"github.com/akshayks13/genai-frontend-sub000/internal/listings"
	"github.com/akshayks13/genai-frontend-sub000/internal/observability"
	"github.com/akshayks13/genai-frontend-sub000/internal/resume"
	"github.com/akshayks13/genai-frontend-sub000/internal/roadmap"
	"github.com/akshayks13/genai-frontend-sub000/internal/server/middleware"
	"github.com/akshayks13/genai-frontend-sub000/internal/server/ratelimit"
	"github.com/akshayks13/genai-frontend-sub000/internal/services"
	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const goodToken = "good-token"

var fakePDF = []byte("%PDF-1.4 remote")

// fakeBackend serves the subset of the backend API the gateway calls.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+goodToken
	}
	write := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct-horse" {
			write(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
			return
		}
		write(w, http.StatusOK, `{"accessToken":"`+goodToken+`","user":{"id":7,"name":"Asha","email":"asha@example.com"}}`)
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusUnauthorized, `{"message":"expired"}`)
	})
	mux.HandleFunc("POST /auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusAccepted, `{"sent":true}`)
	})
	mux.HandleFunc("GET /profile/user", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			write(w, http.StatusUnauthorized, `{"message":"bad token"}`)
			return
		}
		write(w, http.StatusOK, `{"id":7,"name":"Asha","email":"asha@example.com"}`)
	})
	mux.HandleFunc("GET /explore", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `{"jobs":[
			{"title":"Data Analyst","company":"Beta","salary":50,"description":"<p>Crunch <b>numbers</b></p>"},
			{"title":"ML Engineer","company":"Acme","salary":90,"description":"<ul><li>Train models</li></ul>"}
		]}`)
	})
	mux.HandleFunc("POST /prompt", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `{"response":"Try a data course."}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// pdfService is a remote compile service that always succeeds.
func pdfService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(fakePDF)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	handler http.Handler
	store   *session.MemoryStore
	metrics *observability.Metrics
}

func newTestEnv(t *testing.T, compiler *compile.Compiler, limiter *ratelimit.Limiter) *testEnv {
	t.Helper()
	backend := fakeBackend(t)
	client := apiclient.New(apiclient.Options{BaseURL: backend.URL, Timeout: 5 * time.Second})

	auth := services.NewAuth(client)
	profile := services.NewProfile(client)
	exploreAPI := services.NewExplore(client)
	trends := services.NewTrends(client)
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	if compiler == nil {
		compiler = compile.New()
	}
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	s := New(Config{SessionTTL: time.Hour}, Deps{
		Auth:      auth,
		Profile:   profile,
		Sessions:  store,
		Guard:     authguard.New(profile, auth),
		Compiler:  compiler,
		Explore:   explore.New(store, explore.NewAPIPrompter(exploreAPI), nil, nil),
		Resume:    resume.New(profile, compiler),
		Listings:  listings.New(exploreAPI, trends),
		Dashboard: dashboard.New(profile, trends, nil, nil),
		Roadmaps:  roadmap.New(services.NewRoadmap(client), nil),
		Limiter:   limiter,
		Metrics:   metrics,
		Gatherer:  reg,
	})
	return &testEnv{handler: s.Handler(), store: store, metrics: metrics}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// login signs in and returns the session cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"Asha@Example.com","password":"correct-horse"}`))
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLogin_StoresSessionAndReportsIdentity(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	cookie := env.login(t)
	assert.True(t, cookie.HttpOnly)

	rec, err := env.store.Get(t.Context(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, goodToken, rec.AccessToken)
	assert.Equal(t, "Asha", rec.UserName)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(cookie)
	w := env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":true,"userName":"Asha","userEmail":"asha@example.com"}`, w.Body.String())
}

func TestLogin_RotatesPreexistingSessionID(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	const planted = "attacker-chosen"
	_, err := env.store.Update(t.Context(), planted, func(r *session.Record) error {
		r.Messages = []types.Message{{Role: "user", Text: "hello"}}
		return nil
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"asha@example.com","password":"correct-horse"}`))
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: planted})
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var issued *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			issued = c
		}
	}
	require.NotNil(t, issued, "login must issue a fresh cookie")
	assert.NotEqual(t, planted, issued.Value)

	_, err = env.store.Get(t.Context(), planted)
	assert.ErrorIs(t, err, session.ErrNotFound)

	rec, err := env.store.Get(t.Context(), issued.Value)
	require.NoError(t, err)
	assert.Equal(t, goodToken, rec.AccessToken)
	require.Len(t, rec.Messages, 1, "transcript follows the new ID")

	stale := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	stale.Header.Set("Accept", "application/json")
	stale.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: planted})
	assert.Equal(t, http.StatusUnauthorized, env.do(stale).Code)
}

func TestLogin_BackendRejectionKeepsStatusAndMessage(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"asha@example.com","password":"wrong"}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestLogin_ValidationError(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed JSON", `{"email":`, "Invalid request body"},
		{"bad email", `{"email":"nope","password":"x"}`, "validation error: Email - email"},
		{"missing password", `{"email":"a@b.co"}`, "validation error: Password - required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp["error"])
		})
	}
}

func TestForgotPassword_RelaysBackend(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(httptest.NewRequest(http.MethodPost, "/auth/forgot-password",
		strings.NewReader(`{"email":"asha@example.com"}`)))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"sent":true}`, w.Body.String())
}

func TestLogout_DropsSession(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	cookie := env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	w := env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := env.store.Get(t.Context(), cookie.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestSession_Anonymous(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/auth/session", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}

func TestGuardedPage_BrowserRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/careers?sort=title", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := env.do(req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fcareers%3Fsort%3Dtitle", w.Header().Get("Location"))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.GuardDecisions.WithLabelValues("redirecting", "false")))
}

func TestGuardedPage_APICallerGets401(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer stale")
	w := env.do(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/auth/login?next=%2Fdashboard"`)
}

func TestCareers_FiltersAndCleansListings(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	cookie := env.login(t)

	req := httptest.NewRequest(http.MethodGet, "/careers?sort=salary", nil)
	req.AddCookie(cookie)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Jobs []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, "ML Engineer", resp.Jobs[0].Title)
	assert.Equal(t, "- Train models", resp.Jobs[0].Description)
	assert.Equal(t, "Crunch numbers", resp.Jobs[1].Description)
}

func TestCareers_BadFilter(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/careers?minSalary=-1", nil)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	w := env.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "minSalary")
}

func TestExplore_SendAndHistory(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	cookie := env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/explore/messages", strings.NewReader(`{"text":"What should I learn?"}`))
	req.AddCookie(cookie)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Try a data course.")

	req = httptest.NewRequest(http.MethodGet, "/explore/messages", nil)
	req.AddCookie(cookie)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "assistant", resp.Messages[1].Role)

	req = httptest.NewRequest(http.MethodDelete, "/explore/messages", nil)
	req.AddCookie(cookie)
	w = env.do(req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	rec, err := env.store.Get(t.Context(), cookie.Value)
	require.NoError(t, err)
	assert.Empty(t, rec.Messages)
	assert.Equal(t, goodToken, rec.AccessToken)
}

func TestCompile_ForwardsToRemote(t *testing.T) {
	remote := pdfService(t)
	compiler := compile.New(compile.WithRemote(compile.NewForwarder(remote.URL, 5*time.Second)))
	env := newTestEnv(t, compiler, nil)

	w := env.do(httptest.NewRequest(http.MethodPost, "/api/compile", strings.NewReader(`\documentclass{article}`)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "remote", w.Header().Get(CompileSourceHeader))
	assert.Equal(t, fakePDF, w.Body.Bytes())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Compiles.WithLabelValues("remote")))
}

func TestCompile_FallsBackWhenRemoteIsDown(t *testing.T) {
	compiler := compile.New(compile.WithRemote(compile.NewForwarder("http://127.0.0.1:1", time.Second)))
	env := newTestEnv(t, compiler, nil)

	w := env.do(httptest.NewRequest(http.MethodPost, "/api/compile", strings.NewReader("hello\nworld")))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fallback", w.Header().Get(CompileSourceHeader))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestResumeDownload_IsAttachment(t *testing.T) {
	remote := pdfService(t)
	compiler := compile.New(compile.WithRemote(compile.NewForwarder(remote.URL, 5*time.Second)))
	env := newTestEnv(t, compiler, nil)
	cookie := env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/resume/download", strings.NewReader(`{"source":"\\section{Work}"}`))
	req.AddCookie(cookie)
	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="resume.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, fakePDF, w.Body.Bytes())
}

func TestRateLimit_AuthTier(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewConfig(ratelimit.Settings{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: time.Minute,
	}))
	defer limiter.Stop()
	env := newTestEnv(t, nil, limiter)

	var last *httptest.ResponseRecorder
	for range 6 {
		last = env.do(httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"asha@example.com","password":"wrong"}`)))
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "rate_limit_exceeded")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	w := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="GET /health"`)
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	s := &Server{logger: zap.NewNop()}
	h := s.withRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
