// Package sserver serves segment tree engines over HTTP.
package sserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gordian-engine/gsegtree/sgeom"
	"github.com/gordian-engine/gsegtree/sinput"
	"github.com/gordian-engine/gsegtree/smulti"
	"github.com/gordian-engine/gsegtree/svis"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServer struct {
	done chan struct{}
}

type HTTPServerConfig struct {
	Listener net.Listener

	// Engines to serve. If nil, a new empty Registry is used.
	Trees *Registry

	// Maximum input length accepted when creating a tree.
	// Zero means unlimited.
	MaxLen int

	// Registry for the server's metrics, also exposed at /metrics.
	// If nil, a new registry is used.
	// Handlers sharing a registry share its collectors;
	// the trees gauge then reports the Trees of the first handler.
	Prometheus *prometheus.Registry
}

func NewHTTPServer(ctx context.Context, log *slog.Logger, cfg HTTPServerConfig) *HTTPServer {
	srv := &http.Server{
		Handler: NewHandler(log, cfg),

		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	h := &HTTPServer{
		done: make(chan struct{}),
	}
	go h.serve(log, cfg.Listener, srv)
	go h.waitForShutdown(ctx, srv)

	return h
}

// Wait blocks until the server has stopped serving.
func (h *HTTPServer) Wait() {
	<-h.done
}

func (h *HTTPServer) waitForShutdown(ctx context.Context, srv *http.Server) {
	select {
	case <-h.done:
		// h.serve returned on its own, nothing left to do here.
		return
	case <-ctx.Done():
		_ = srv.Close()
	}
}

func (h *HTTPServer) serve(log *slog.Logger, ln net.Listener, srv *http.Server) {
	defer close(h.done)

	if err := srv.Serve(ln); err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, http.ErrServerClosed) {
			log.Info("HTTP server shutting down")
		} else {
			log.Info("HTTP server shutting down due to error", "err", err)
		}
	}
}

// NewHandler returns the routes of the server without binding a listener,
// so it can be mounted elsewhere or tested with httptest.
func NewHandler(log *slog.Logger, cfg HTTPServerConfig) http.Handler {
	if cfg.Trees == nil {
		cfg.Trees = NewRegistry()
	}
	if cfg.Prometheus == nil {
		cfg.Prometheus = prometheus.NewRegistry()
	}
	m := newMetrics(cfg.Prometheus, cfg.Trees)

	r := mux.NewRouter()

	r.Handle("/trees", m.instrument("create", handleCreate(log, cfg))).Methods("POST")
	r.Handle("/trees", m.instrument("list", handleList(log, cfg))).Methods("GET")
	r.Handle("/trees/{id}", m.instrument("get", handleGet(log, cfg))).Methods("GET")
	r.Handle("/trees/{id}", m.instrument("delete", handleDelete(log, cfg))).Methods("DELETE")
	r.Handle("/trees/{id}/query", m.instrument("query", handleQuery(log, cfg))).Methods("GET")
	r.Handle("/trees/{id}/update", m.instrument("update", handleUpdate(log, cfg))).Methods("POST")
	r.Handle("/trees/{id}/render", m.instrument("render", handleRender(log, cfg))).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(cfg.Prometheus, promhttp.HandlerOpts{})).Methods("GET")

	return r
}

// CreateResponse is the body returned when a tree is created.
type CreateResponse struct {
	ID  string `json:"id"`
	Len int    `json:"len"`
}

// ListResponse is the body returned when listing trees.
type ListResponse struct {
	IDs []string `json:"ids"`
}

func handleCreate(log *slog.Logger, cfg HTTPServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body sinput.BuildRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, log, fmt.Errorf("%w: decode body: %w", sinput.ErrInvalidRequest, err))
			return
		}
		if err := body.Validate(cfg.MaxLen); err != nil {
			writeError(w, log, err)
			return
		}

		id, err := cfg.Trees.Create(body.Values)
		if err != nil {
			writeError(w, log, err)
			return
		}

		log.Debug("Created tree", "id", id, "len", len(body.Values))
		writeJSON(w, log, http.StatusCreated, CreateResponse{ID: id, Len: len(body.Values)})
	}
}

func handleList(log *slog.Logger, cfg HTTPServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, log, http.StatusOK, ListResponse{IDs: cfg.Trees.IDs()})
	}
}

func handleGet(log *slog.Logger, cfg HTTPServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var snap svis.Snapshot
		err := cfg.Trees.With(mux.Vars(req)["id"], func(e *smulti.Engine) error {
			var err error
			snap, err = svis.NewSnapshot(e)
			return err
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, log, http.StatusOK, snap)
	}
}

func handleDelete(log *slog.Logger, cfg HTTPServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		if err := cfg.Trees.Delete(id); err != nil {
			writeError(w, log, err)
			return
		}
		log.Debug("Deleted tree", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleQuery(log *slog.Logger, cfg HTTPServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q, err := queryRequestFromURL(req)
		if err != nil {
			writeError(w, log, err)
			return
		}
		if err := q.Validate(); err != nil {
			writeError(w, log, err)
			return
		}
		kinds, err := q.KindSet()
		if err != nil {
			writeError(w, log, err)
			return
		}

		var res map[smulti.Kind]int64
		err = cfg.Trees.With(mux.Vars(req)["id"], func(e *smulti.Engine) error {
			var err error
			res, err = e.Query(q.Lo, q.Hi, kinds)
			return err
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, log, http.StatusOK, res)
	}
}

func queryRequestFromURL(req *http.Request) (sinput.QueryRequest, error) {
	v := req.URL.Query()

	lo, err := strconv.Atoi(v.Get("lo"))
	if err != nil {
		return sinput.QueryRequest{}, fmt.Errorf("%w: lo: %w", sinput.ErrInvalidRequest, err)
	}
	hi, err := strconv.Atoi(v.Get("hi"))
	if err != nil {
		return sinput.QueryRequest{}, fmt.Errorf("%w: hi: %w", sinput.ErrInvalidRequest, err)
	}

	kinds := []string{"min", "max", "sum"}
	if k := v.Get("kinds"); k != "" {
		kinds = strings.Split(k, ",")
	}

	return sinput.QueryRequest{Lo: lo, Hi: hi, Kinds: kinds}, nil
}

func handleUpdate(log *slog.Logger, cfg HTTPServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body sinput.UpdateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, log, fmt.Errorf("%w: decode body: %w", sinput.ErrInvalidRequest, err))
			return
		}
		if err := body.Validate(); err != nil {
			writeError(w, log, err)
			return
		}

		err := cfg.Trees.With(mux.Vars(req)["id"], func(e *smulti.Engine) error {
			return e.Update(body.Position, body.Value)
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRender(log *slog.Logger, cfg HTTPServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		render := svis.RenderText
		switch f := req.URL.Query().Get("format"); f {
		case "", "text":
		case "dot":
			render = svis.RenderDOT
		default:
			writeError(w, log, fmt.Errorf("%w: unknown format %q", sinput.ErrInvalidRequest, f))
			return
		}

		var snap svis.Snapshot
		err := cfg.Trees.With(mux.Vars(req)["id"], func(e *smulti.Engine) error {
			var err error
			snap, err = svis.NewSnapshot(e)
			return err
		})
		if err != nil {
			writeError(w, log, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := render(w, snap); err != nil {
			log.Warn("Failed to render tree", "err", err)
		}
	}
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to marshal response", "err", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error("Request failed", "err", err)
	} else {
		log.Debug("Request rejected", "code", code, "err", err)
	}
	http.Error(w, err.Error(), code)
}

func statusFor(err error) int {
	var (
		rangeErr *sgeom.RangeError
		idxErr   *sgeom.IndexError
	)
	switch {
	case errors.Is(err, ErrUnknownTree):
		return http.StatusNotFound
	case errors.Is(err, sinput.ErrInvalidRequest),
		errors.Is(err, sgeom.ErrEmptyInput),
		errors.Is(err, smulti.ErrNoKinds),
		errors.As(err, &rangeErr),
		errors.As(err, &idxErr):
		return http.StatusBadRequest
	case errors.Is(err, sgeom.ErrNotBuilt):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
