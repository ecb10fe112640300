package http_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/machi"
	machihttp "github.com/aretw0/machi/pkg/adapters/http"
	"github.com/aretw0/machi/pkg/adapters/memory"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/aretw0/machi/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type data = map[string]any

func has(key string) domain.Predicate[data] {
	return domain.Test(func(d data) bool { return d[key] != nil })
}

func newMachine(t *testing.T) *machi.Machine[data, any] {
	t.Helper()
	conds := domain.ConditionsMap[data]{
		"hasAge":  has("age"),
		"hasName": has("name"),
		"isAdult": domain.Test(func(d data) bool {
			age, ok := d["age"].(float64)
			return ok && age >= 18
		}),
		"notBroken": func(d data) (bool, error) {
			if d["boom"] != nil {
				return false, errors.New("boom")
			}
			return true, nil
		},
	}
	tree := []domain.Node[data, any]{
		domain.NewEntry[data, any]("Age?", "hasAge", "notBroken"),
		domain.NewFork[data, any]("adult", []string{"isAdult"},
			domain.NewEntry[data, any]("Name?", "hasName"),
			domain.NewEntry[data, any]("Postcode?"),
		),
	}
	m, err := machi.New(tree, conds)
	require.NoError(t, err)
	return m
}

func newHandler(t *testing.T, opts ...machihttp.Option) http.Handler {
	t.Helper()
	m := newMachine(t)
	mgr := session.NewManager(memory.NewStore(), m.Resolver(nil))
	return machihttp.NewHandler(mgr, append([]machihttp.Option{machihttp.WithChart(m)}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type resolution struct {
	State   domain.State   `json:"state"`
	Outcome domain.Outcome `json:"outcome"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestSessionLifecycle(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/sessions/s1", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Age?", decode[resolution](t, w).Outcome.EntryID)

	w = do(t, h, http.MethodPatch, "/sessions/s1", `{"context":{"age":30}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[resolution](t, w)
	assert.Equal(t, "Name?", res.Outcome.EntryID)
	assert.Equal(t, []string{"Age?"}, res.State.History)

	w = do(t, h, http.MethodGet, "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Name?", decode[domain.State](t, w).CurrentEntryID)

	w = do(t, h, http.MethodPost, "/sessions/s1/rewind", `{"entry":"Age?"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Age?", decode[domain.State](t, w).CurrentEntryID)

	w = do(t, h, http.MethodPatch, "/sessions/s1", `{"context":{"name":"Ana"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[resolution](t, w)
	assert.Equal(t, "Name?", res.Outcome.EntryID)
	assert.True(t, res.Outcome.Resumed)

	w = do(t, h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string][]string{"sessions": {"s1"}}, decode[map[string][]string](t, w))

	w = do(t, h, http.MethodDelete, "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrors(t *testing.T) {
	h := newHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/sessions/s1", `{"context":{}}`).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "unknown session", method: http.MethodGet, path: "/sessions/nope", want: http.StatusNotFound},
		{name: "update unknown session", method: http.MethodPatch, path: "/sessions/nope", body: `{"context":{}}`, want: http.StatusNotFound},
		{name: "bad json", method: http.MethodPatch, path: "/sessions/s1", body: `{"context":`, want: http.StatusBadRequest},
		{name: "rewind outside history", method: http.MethodPost, path: "/sessions/s1/rewind", body: `{"entry":"Name?"}`, want: http.StatusNotFound},
		{name: "condition error", method: http.MethodPatch, path: "/sessions/s1", body: `{"context":{"boom":true}}`, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, decode[machihttp.ErrorResponse](t, w).Error)
		})
	}
}

func TestGraph(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph TD")
	assert.Contains(t, w.Body.String(), `"Age?"`)

	w = do(t, h, http.MethodGet, "/graph?direction=horizontal&theme=light", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph LR")

	w = do(t, h, http.MethodGet, "/graph?theme=neon", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/pathways/adult", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"adult"`)
}

func TestGraph_NotConfigured(t *testing.T) {
	m := newMachine(t)
	h := machihttp.NewHandler(session.NewManager(memory.NewStore(), m.Resolver(nil)))
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/graph", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", "").Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "machi_test_total", Help: "Test counter."})
	reg.MustRegister(counter)
	counter.Inc()

	h := newHandler(t, machihttp.WithGatherer(reg))
	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "machi_test_total 1")
}

func TestHealthAndInfo(t *testing.T) {
	h := newHandler(t)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, do(t, h, http.MethodGet, "/health", "")))
	info := decode[map[string]string](t, do(t, h, http.MethodGet, "/info", ""))
	assert.Equal(t, machi.Version, info["version"])
}

func TestEvents(t *testing.T) {
	srv := httptest.NewServer(newHandler(t))
	defer srv.Close()

	post, err := http.Post(srv.URL+"/sessions/s1", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusCreated, post.StatusCode)

	resp, err := http.Get(srv.URL + "/sessions/s1/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	next := func() string {
		select {
		case l, ok := <-lines:
			require.True(t, ok, "stream closed")
			return l
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
			return ""
		}
	}

	require.Equal(t, "event: ping", next())
	require.Equal(t, "data: connected", next())

	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/sessions/s1", bytes.NewBufferString(`{"context":{"age":30}}`))
	require.NoError(t, err)
	patch, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	patch.Body.Close()
	require.Equal(t, http.StatusOK, patch.StatusCode)

	require.Equal(t, "", next())
	require.Equal(t, "event: diff", next())
	payload := strings.TrimPrefix(next(), "data: ")

	var diff domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(payload), &diff))
	assert.Equal(t, "s1", diff.SessionID)
	assert.Equal(t, float64(30), diff.Context["age"])
	require.NotNil(t, diff.CurrentEntryID)
	assert.Equal(t, "Name?", *diff.CurrentEntryID)
}
