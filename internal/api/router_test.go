package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candor.io/interview-agent/internal/auth"
	"candor.io/interview-agent/internal/core"
	"candor.io/interview-agent/internal/llm"
	"candor.io/interview-agent/internal/speech"
	"candor.io/interview-agent/internal/store"
)

type staticGenerator struct {
	reply string
}

func (g *staticGenerator) Generate(_ context.Context, _ []llm.Message) (string, error) {
	return g.reply, nil
}

type testEnv struct {
	router  http.Handler
	dbStore *store.SQLiteStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbStore.Close() })

	platform := core.NewPlatformService(dbStore, nil)
	interviews := core.NewInterviewService(dbStore, &staticGenerator{reply: "Tell me more."})
	handler := NewAPIHandler(platform, interviews, speech.NewMockService(), auth.NewManager("test-secret"))

	return &testEnv{router: NewRouter(handler, 1000), dbStore: dbStore}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var envelope apiResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	}
	return rec, envelope
}

// seedInterview builds the full chain and returns the project and session ids.
func (e *testEnv) seedInterview(t *testing.T) (projectID, sessionID string) {
	t.Helper()

	user, err := e.dbStore.CreateUser("researcher", "researcher@example.com", "hash")
	require.NoError(t, err)
	outline, err := e.dbStore.CreateOutline("Study", nil, user.ID, []store.Module{
		{Title: "Intro", Questions: []store.Question{{Content: "Who are you?"}}},
	})
	require.NoError(t, err)
	persona, err := e.dbStore.CreatePersonaConfig("Persona", nil, nil, &outline.ID)
	require.NoError(t, err)
	project, err := e.dbStore.CreateProject("Project", outline.ID, persona.ID, "published")
	require.NoError(t, err)
	session, err := e.dbStore.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)
	return project.ID, session.ID
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupLoginMe(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodPost, "/api/signup", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "hunter22",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusOK, envelope.Code)

	rec, envelope = env.do(t, http.MethodPost, "/api/login", map[string]any{
		"username": "alice", "password": "hunter22",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusOK, envelope.Code)
	data := envelope.Data.(map[string]any)
	token := data["access_token"].(string)
	require.NotEmpty(t, token)

	rec, envelope = env.do(t, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	me := envelope.Data.(map[string]any)
	assert.Equal(t, "alice", me["username"])
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodPost, "/api/login", map[string]any{
		"username": "ghost", "password": "whatever",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, envelope.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/outlines", map[string]any{"title": "X"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBusinessErrorsRideOn200(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodGet, "/api/projects/no-such-id", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, envelope.Code)
}

func TestChatMirrorsEnvelopeCodeIntoStatus(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedInterview(t)

	// Unknown session: 404 on the wire, not just in the envelope.
	rec, envelope := env.do(t, http.MethodPost, "/api/chat", map[string]any{
		"session_id": "no-such-session", "message": "hi",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, envelope.Code)

	// Live session: a normal turn.
	rec, envelope = env.do(t, http.MethodPost, "/api/chat", map[string]any{
		"session_id": sessionID, "message": "hello",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, "Tell me more.", data["reply"])

	// Expired session: 410 Gone.
	require.NoError(t, env.dbStore.ExtendSessionExpiry(sessionID, time.Now().UTC().Add(-time.Minute)))
	rec, envelope = env.do(t, http.MethodPost, "/api/chat", map[string]any{
		"session_id": sessionID, "message": "too late",
	}, nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, http.StatusGone, envelope.Code)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	projectID, _ := env.seedInterview(t)

	rec, envelope := env.do(t, http.MethodPost, "/api/sessions", map[string]any{
		"project_id": projectID, "interviewee_info": map[string]any{"name": "Sam"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusOK, envelope.Code)
	sessionID := envelope.Data.(map[string]any)["session_id"].(string)

	_, envelope = env.do(t, http.MethodPut, "/api/sessions/"+sessionID+"/star", map[string]any{"is_starred": true}, nil)
	require.Equal(t, http.StatusOK, envelope.Code)

	_, envelope = env.do(t, http.MethodPut, "/api/sessions/"+sessionID+"/end", nil, nil)
	require.Equal(t, http.StatusOK, envelope.Code)

	_, envelope = env.do(t, http.MethodGet, "/api/sessions/"+sessionID, nil, nil)
	require.Equal(t, http.StatusOK, envelope.Code)
	detail := envelope.Data.(map[string]any)
	assert.Equal(t, true, detail["is_starred"])
	assert.NotNil(t, detail["end_time"])
}

func TestExportStreamsWorkbook(t *testing.T) {
	env := newTestEnv(t)
	projectID, sessionID := env.seedInterview(t)

	_, _ = env.do(t, http.MethodPost, "/api/chat", map[string]any{
		"session_id": sessionID, "message": "an answer",
	}, nil)

	rec, _ := env.do(t, http.MethodGet, "/api/sessions/export?project_id="+projectID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, rec.Body.Len())
}

func TestExportWithoutSelectorIsRejected(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodGet, "/api/sessions/export", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusBadRequest, envelope.Code)
}
