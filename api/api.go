package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rwelin/soundgraph"
	"github.com/rwelin/soundgraph/history"
)

// WalkParams selects a walk. A zero Start or nil Beats means the session
// default; a zero Seed means a time-based seed. An explicit Beats of zero or
// less gives an empty timeline.
type WalkParams struct {
	Start int
	Beats *float64
	Seed  int64
}

type MutateRequest struct {
	EdgeProbability float64 `json:"edge_probability"`
	NodeProbability float64 `json:"node_probability"`
	Seed            int64   `json:"seed"`
}

type Callbacks interface {
	Generation() *soundgraph.Generation
	Walk(p WalkParams) (soundgraph.Timeline, error)
	Score(p WalkParams) ([]byte, error)
	Mutate(req MutateRequest) (*soundgraph.Generation, error)
	Generations() ([]history.Summary, error)
	LoadGeneration(id string) (*soundgraph.Generation, error)
}

type handler struct {
	Callbacks Callbacks
	Logger    *slog.Logger
}

func (h *handler) Err(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, history.ErrNotFound) {
		status = http.StatusNotFound
	}
	w.WriteHeader(status)
	w.Write([]byte(err.Error()))
	h.Logger.Warn("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	d, err := json.Marshal(v)
	if err != nil {
		h.Err(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(d)
}

func walkParams(r *http.Request) (WalkParams, error) {
	var p WalkParams
	q := r.URL.Query()
	if s := q.Get("start"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("start: %w", err)
		}
		p.Start = v
	}
	if s := q.Get("beats"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("beats: %w", err)
		}
		p.Beats = &v
	}
	if s := q.Get("seed"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return p, fmt.Errorf("seed: %w", err)
		}
		p.Seed = v
	}
	return p, nil
}

func (h *handler) handleGenerationGet(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.Callbacks.Generation())
}

func (h *handler) handleTimelineGet(w http.ResponseWriter, r *http.Request) {
	p, err := walkParams(r)
	if err != nil {
		h.Err(w, r, err)
		return
	}
	tl, err := h.Callbacks.Walk(p)
	if err != nil {
		h.Err(w, r, err)
		return
	}
	h.writeJSON(w, r, tl)
}

func (h *handler) handleScoreGet(w http.ResponseWriter, r *http.Request) {
	p, err := walkParams(r)
	if err != nil {
		h.Err(w, r, err)
		return
	}
	d, err := h.Callbacks.Score(p)
	if err != nil {
		h.Err(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(d)
}

func (h *handler) handleMutatePost(w http.ResponseWriter, r *http.Request) {
	var req MutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Err(w, r, err)
		return
	}
	g, err := h.Callbacks.Mutate(req)
	if err != nil {
		h.Err(w, r, err)
		return
	}
	h.writeJSON(w, r, g)
}

func (h *handler) handleGenerationsGet(w http.ResponseWriter, r *http.Request) {
	list, err := h.Callbacks.Generations()
	if err != nil {
		h.Err(w, r, err)
		return
	}
	h.writeJSON(w, r, list)
}

func (h *handler) handleGenerationByIDGet(w http.ResponseWriter, r *http.Request) {
	g, err := h.Callbacks.LoadGeneration(mux.Vars(r)["id"])
	if err != nil {
		h.Err(w, r, err)
		return
	}
	h.writeJSON(w, r, g)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHandler routes requests to cb. Failed requests are logged to logger;
// nil discards them.
func NewHandler(cb Callbacks, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &handler{
		Callbacks: cb,
		Logger:    logger,
	}

	sr := mux.NewRouter()
	sr.HandleFunc("/generation", h.handleGenerationGet).Methods(http.MethodGet)
	sr.HandleFunc("/timeline", h.handleTimelineGet).Methods(http.MethodGet)
	sr.HandleFunc("/score", h.handleScoreGet).Methods(http.MethodGet)
	sr.HandleFunc("/mutate", h.handleMutatePost).Methods(http.MethodPost)
	sr.HandleFunc("/generations", h.handleGenerationsGet).Methods(http.MethodGet)
	sr.HandleFunc("/generations/{id}", h.handleGenerationByIDGet).Methods(http.MethodGet)
	sr.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.PathPrefix("/").Handler(sr)
	return r
}
