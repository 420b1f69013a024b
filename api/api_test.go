package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwelin/soundgraph"
	"github.com/rwelin/soundgraph/config"
	"github.com/rwelin/soundgraph/examples"
	"github.com/rwelin/soundgraph/history"
)

func newServer(t *testing.T, withHistory bool) (*httptest.Server, *Session) {
	t.Helper()
	var h *history.Store
	if withHistory {
		var err error
		h, err = history.Open(history.Config{InMemory: true})
		require.NoError(t, err)
		t.Cleanup(func() { h.Close() })
	}

	s := NewSession(examples.Alternating(), h, nil)
	s.Asset = "loop.wav"
	s.AssetLength = 4
	s.Tempo = 120
	s.Start = 1
	s.Beats = 4
	if h != nil {
		s.Reset(s.Generation())
	}

	srv := httptest.NewServer(NewHandler(s, nil))
	t.Cleanup(srv.Close)
	return srv, s
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestTimeline(t *testing.T) {
	srv, _ := newServer(t, false)

	resp, body := get(t, srv.URL+"/timeline?seed=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var tl soundgraph.Timeline
	require.NoError(t, json.Unmarshal([]byte(body), &tl))
	require.Len(t, tl.Events, 4)
	assert.Equal(t, 2, tl.Events[1].Node)

	resp, body = get(t, srv.URL+"/timeline?beats=2&start=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &tl))
	require.Len(t, tl.Events, 2)
	assert.Equal(t, 2, tl.Events[0].Node)
}

func TestTimelineErrors(t *testing.T) {
	srv, _ := newServer(t, false)

	resp, _ := get(t, srv.URL+"/timeline?beats=lots")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := get(t, srv.URL+"/timeline?start=9")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "unknown node")
}

func TestTimelineExplicitZeroBeats(t *testing.T) {
	srv, _ := newServer(t, false)

	resp, body := get(t, srv.URL+"/timeline?beats=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tl soundgraph.Timeline
	require.NoError(t, json.Unmarshal([]byte(body), &tl))
	assert.Empty(t, tl.Events)
	assert.False(t, tl.Terminated)
}

func TestErrorsAreLogged(t *testing.T) {
	s := NewSession(examples.Alternating(), nil, nil)
	s.Start = 1
	s.Beats = 4

	var logs bytes.Buffer
	srv := httptest.NewServer(NewHandler(s, slog.New(slog.NewJSONHandler(&logs, nil))))
	defer srv.Close()

	resp, _ := get(t, srv.URL+"/timeline?start=9")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, logs.String(), `"msg":"request failed"`)
	assert.Contains(t, logs.String(), `"path":"/timeline"`)
	assert.Contains(t, logs.String(), "unknown node")
}

const reloadedYAML = `
audio: other.wav
tempo: 90
start: 3
beats: 2
events:
  - {duration: 1, pitch: 1, inskip: 0}
  - {duration: 1, pitch: 1, inskip: 0}
  - {duration: 0.5, pitch: 2, inskip: 1}
transitions:
  - {}
  - {}
  - {3: 1}
`

func TestLoadReplacesEverything(t *testing.T) {
	srv, s := newServer(t, true)
	before := s.Generation()

	c, err := config.Parse([]byte(reloadedYAML))
	require.NoError(t, err)
	c.Dir = "/sounds"
	require.NoError(t, s.Load(c, soundgraph.ProbeFunc(func(asset string) (float64, error) {
		assert.Equal(t, "/sounds/other.wav", asset)
		return 8, nil
	})))

	assert.NotEqual(t, before.ID, s.Generation().ID)
	assert.Equal(t, 8.0, s.AssetLength)

	// walks now begin at the reloaded start node
	resp, body := get(t, srv.URL+"/timeline?seed=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tl soundgraph.Timeline
	require.NoError(t, json.Unmarshal([]byte(body), &tl))
	require.Len(t, tl.Events, 4)
	assert.Equal(t, 3, tl.Events[0].Node)

	resp, body = get(t, srv.URL+"/score?seed=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "t 0 90\n")
	assert.Contains(t, body, `diskin "/sounds/other.wav"`)

	_, body = get(t, srv.URL+"/generations")
	var list []history.Summary
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list, 2)
}

func TestLoadKeepsSessionOnProbeError(t *testing.T) {
	_, s := newServer(t, false)
	before := s.Generation()

	c, err := config.Parse([]byte(reloadedYAML))
	require.NoError(t, err)
	boom := errors.New("unreadable")
	err = s.Load(c, soundgraph.ProbeFunc(func(string) (float64, error) { return 0, boom }))
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, before.ID, s.Generation().ID)
	assert.Equal(t, 120.0, s.Tempo)
	assert.Equal(t, 1, s.Start)
}

func TestScore(t *testing.T) {
	srv, _ := newServer(t, false)
	resp, body := get(t, srv.URL+"/score?seed=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "t 0 120\n")
	assert.Equal(t, 4, strings.Count(body, "i1\t"))
}

func TestMutateAndHistory(t *testing.T) {
	srv, s := newServer(t, true)
	root := s.Generation()

	resp, err := http.Post(srv.URL+"/mutate", "application/json",
		strings.NewReader(`{"edge_probability":1,"node_probability":0,"seed":5}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var next soundgraph.Generation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&next))
	assert.Equal(t, root.ID, next.ParentID)
	assert.Equal(t, next.ID, s.Generation().ID)
	assert.NotEqual(t, 1.0, next.Matrix().Weight(1, 2))

	_, body := get(t, srv.URL+"/generations")
	var list []history.Summary
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 2)
	assert.Equal(t, root.ID, list[0].ID)

	r, body := get(t, srv.URL+"/generations/"+root.ID)
	require.Equal(t, http.StatusOK, r.StatusCode)
	assert.Contains(t, body, root.ID)

	r, _ = get(t, srv.URL+"/generations/missing")
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
}

func TestMutateInvalidProbability(t *testing.T) {
	srv, s := newServer(t, false)
	root := s.Generation()

	resp, err := http.Post(srv.URL+"/mutate", "application/json",
		strings.NewReader(`{"edge_probability":1.5}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, root.ID, s.Generation().ID)
}

func TestGenerationWithoutHistory(t *testing.T) {
	srv, s := newServer(t, false)

	resp, body := get(t, srv.URL+"/generation")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, s.Generation().ID)

	_, body = get(t, srv.URL+"/generations")
	var list []history.Summary
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Edges)
}

func TestMetricsAndOptions(t *testing.T) {
	srv, _ := newServer(t, false)
	get(t, srv.URL+"/timeline?seed=1")

	resp, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "soundgraph_walks_total")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/mutate", nil)
	require.NoError(t, err)
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusOK, r.StatusCode)
}
