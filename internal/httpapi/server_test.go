package httpapi

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/todoreducer/internal/app"
	"github.com/idilsaglam/todoreducer/internal/auth"
	"github.com/idilsaglam/todoreducer/internal/model"
	"github.com/idilsaglam/todoreducer/internal/persist"
	"github.com/idilsaglam/todoreducer/internal/store/memstore"
)

const seeded = `[{"id":1,"text":"Buy milk","completed":false,"createdAt":"2024-01-01T00:00:00.000Z"},` +
	`{"id":2,"text":"Walk dog","completed":true,"createdAt":"2024-01-02T00:00:00.000Z"}]`

func newServer(t *testing.T, token *auth.TokenInfo) (*Server, *memstore.Store) {
	t.Helper()
	kv := memstore.New(map[string]string{persist.KeyTodos: seeded})
	logger := log.New(&bytes.Buffer{}, "", 0)
	sess := app.NewSession(persist.New(kv, logger), logger, kv)
	sess.Load()
	t.Cleanup(func() { sess.Close() })
	return New(sess, Options{Token: token, Logger: logger}), kv
}

func do(t *testing.T, s *Server, method, target, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t, nil)
	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ready", decode[map[string]string](t, rec)["phase"])
}

func TestListTodosSearch(t *testing.T) {
	s, _ := newServer(t, nil)

	all := decode[TodosResponse](t, do(t, s, http.MethodGet, "/todos", ""))
	require.Len(t, all.Todos, 2)
	require.Equal(t, model.Stats{Total: 2, Completed: 1, Pending: 1}, all.Stats)

	got := decode[TodosResponse](t, do(t, s, http.MethodGet, "/todos?search=MILK", ""))
	require.Len(t, got.Todos, 1)
	require.Equal(t, 1, got.Todos[0].ID)
	require.Equal(t, 2, got.Stats.Total, "stats ignore the search")
}

func TestDispatchActions(t *testing.T) {
	s, kv := newServer(t, nil)

	rec := do(t, s, http.MethodPost, "/actions", `{"type":"add-todo","payload":{"text":"Read"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decode[model.State](t, rec)
	require.Len(t, st.Todos, 3)
	require.Equal(t, 3, st.Todos[2].ID)
	require.Equal(t, 4, st.NextID)

	v, _, _ := kv.Get(persist.KeyNextID)
	require.Equal(t, "4", v)

	st = decode[model.State](t, do(t, s, http.MethodPost, "/actions", `{"type":"set-filter","payload":{"filter":"ACTIVE"}}`))
	require.Equal(t, model.FilterActive, st.Filter)

	got := decode[TodosResponse](t, do(t, s, http.MethodGet, "/todos", ""))
	require.Len(t, got.Todos, 2)

	st = decode[model.State](t, do(t, s, http.MethodPost, "/actions", `{"type":"toggle-todo","payload":{"id":99}}`))
	require.Len(t, st.Todos, 3, "missing ids are a no-op")
}

func TestDispatchRejectsBadInput(t *testing.T) {
	s, _ := newServer(t, nil)
	for _, body := range []string{
		`{"type":"add-todo","payload":{"text":"   "}}`,
		`{"type":"update-todo","payload":{"id":1,"newText":""}}`,
		`{"type":"launch-rocket"}`,
		`not json`,
	} {
		rec := do(t, s, http.MethodPost, "/actions", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	st := decode[model.State](t, do(t, s, http.MethodGet, "/state", ""))
	require.Len(t, st.Todos, 2)
}

func TestSaveAndClear(t *testing.T) {
	s, kv := newServer(t, nil)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/save", "").Code)
	v, ok, _ := kv.Get(persist.KeyManualSave)
	require.True(t, ok)
	require.Contains(t, v, "Walk dog")

	st := decode[model.State](t, do(t, s, http.MethodPost, "/clear", ""))
	require.Empty(t, st.Todos)
	require.Equal(t, 1, st.NextID)
	_, ok, _ = kv.Get(persist.KeyManualSave)
	require.False(t, ok)
}

func TestExport(t *testing.T) {
	s, _ := newServer(t, nil)

	rec := do(t, s, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "todos_")
	require.Contains(t, rec.Body.String(), "\n  {")
	var todos []model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	require.Len(t, todos, 2)

	rec = do(t, s, http.MethodGet, "/export?format=yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), ".yaml")
	todos = nil
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &todos))
	require.Equal(t, "Walk dog", todos[1].Text)

	require.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/export?format=xml", "").Code)
}

func TestTokenRequired(t *testing.T) {
	s, _ := newServer(t, &auth.TokenInfo{Token: "s3cret", Source: "file"})

	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)

	rec := do(t, s, http.MethodGet, "/state", "")
	require.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, rec.Code)

	rec = do(t, s, http.MethodGet, "/state", "", "Authorization", "Bearer wrong")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/state", "", "Authorization", "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
}
