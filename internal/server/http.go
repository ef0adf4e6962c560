// Package server exposes the note store, the renderer and live editing
// sessions over a small local HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mithrel/oceannotes/internal/autosave"
	"github.com/mithrel/oceannotes/internal/eventloop"
	"github.com/mithrel/oceannotes/internal/notes"
	"github.com/mithrel/oceannotes/internal/render"
)

const maxBody = 1 << 20

// Server serves the note API. Editing sessions live on loop; every session
// method runs there.
type Server struct {
	store    *notes.Store
	loop     *eventloop.Loop
	log      *zap.Logger
	renderer render.Renderer
	autosave []autosave.Option

	// owned by loop
	sessions map[string]*autosave.Session
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

func WithRenderer(r render.Renderer) Option { return func(s *Server) { s.renderer = r } }

func WithAutosave(opts ...autosave.Option) Option {
	return func(s *Server) { s.autosave = append(s.autosave, opts...) }
}

// New returns a Server. loop must be running for session endpoints to answer.
func New(store *notes.Store, loop *eventloop.Loop, opts ...Option) *Server {
	s := &Server{store: store, loop: loop, sessions: map[string]*autosave.Session{}}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/notes", s.handleList)
	mux.HandleFunc("POST /api/notes", s.handleCreate)
	mux.HandleFunc("GET /api/notes/{id}", s.handleGet)
	mux.HandleFunc("PATCH /api/notes/{id}", s.handlePatch)
	mux.HandleFunc("DELETE /api/notes/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/notes/{id}/session", s.handleSessionState)
	mux.HandleFunc("PUT /api/notes/{id}/session", s.handleSessionEdit)
	mux.HandleFunc("POST /api/notes/{id}/session/save", s.handleSessionSave)
	mux.HandleFunc("DELETE /api/notes/{id}/session", s.handleSessionClose)
	return s.logRequests(mux)
}

// Shutdown tears down every open session. Unsaved edits are dropped.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		for id, sess := range s.sessions {
			if sess.Dirty() {
				s.log.Warn("closing session with unsaved changes", zap.String("id", id))
			}
			sess.Close()
			delete(s.sessions, id)
		}
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type noteBody struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type noteResponse struct {
	notes.Note
	Hash string `json:"hash"`
}

type sessionResponse struct {
	ID        string     `json:"id"`
	Dirty     bool       `json:"dirty"`
	Saving    bool       `json:"saving"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := notes.SortUpdatedDesc
	if v := strings.TrimSpace(q.Get("sort")); v != "" {
		m, err := notes.ParseSortMode(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = m
	}
	ns, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	ns = notes.Filter(ns, q.Get("q"))
	notes.SortBy(ns, mode)
	out := make([]noteResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, noteResponse{Note: n, Hash: n.Hash()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body noteBody
	if !decode(w, r, &body) {
		return
	}
	n, err := s.store.Create(r.Context(), deref(body.Title), deref(body.Content))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/notes/"+n.ID)
	s.writeNote(w, http.StatusCreated, n)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag(n) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.writeNote(w, http.StatusOK, n)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	var body noteBody
	if !decode(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	if match := r.Header.Get("If-Match"); match != "" {
		cur, err := s.store.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if match != etag(cur) {
			http.Error(w, "note changed", http.StatusPreconditionFailed)
			return
		}
	}
	n, err := s.store.Update(r.Context(), id, notes.Patch{Title: body.Title, Content: body.Content})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeNote(w, http.StatusOK, n)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// a deleted note must not be resurrected by a pending autosave
	if err := s.loop.Do(r.Context(), func() { s.closeSession(id) }); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Source string `json:"source"`
	}
	if !decode(w, r, &body) {
		return
	}
	html := render.Sanitize(s.renderer.Render(body.Source))
	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var (
		resp  sessionResponse
		found bool
	)
	err := s.loop.Do(r.Context(), func() {
		if sess, ok := s.sessions[id]; ok {
			resp, found = stateOf(sess), true
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "no open session", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSessionEdit applies a buffer change, opening a session on first use.
func (s *Server) handleSessionEdit(w http.ResponseWriter, r *http.Request) {
	var body noteBody
	if !decode(w, r, &body) {
		return
	}
	var resp sessionResponse
	err := s.withSession(r.Context(), r.PathValue("id"), func(sess *autosave.Session) {
		title, content := sess.Buffer()
		if body.Title != nil {
			title = *body.Title
		}
		if body.Content != nil {
			content = *body.Content
		}
		sess.SetBuffer(title, content)
		resp = stateOf(sess)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

const sessionOpenAttempts = 3

var errSessionChurn = errors.New("server: session kept closing while being opened")

// withSession runs fn on the loop with id's session. A missing session is
// opened from the stored note, which is read off the loop; if a session
// disappears between that read and the loop turn, the read is repeated.
func (s *Server) withSession(ctx context.Context, id string, fn func(*autosave.Session)) error {
	for range sessionOpenAttempts {
		var open bool
		if err := s.loop.Do(ctx, func() { _, open = s.sessions[id] }); err != nil {
			return err
		}
		var current notes.Note
		if !open {
			n, err := s.store.Get(ctx, id)
			if err != nil {
				return err
			}
			current = n
		}
		var ran bool
		err := s.loop.Do(ctx, func() {
			sess, ok := s.openSession(id, current)
			if !ok {
				return
			}
			fn(sess)
			ran = true
		})
		if err != nil || ran {
			return err
		}
	}
	return errSessionChurn
}

// openSession returns id's session, creating it from current when none is
// open. It must run on the loop. A snapshot of a different note (including
// the zero Note) never opens a session.
func (s *Server) openSession(id string, current notes.Note) (*autosave.Session, bool) {
	if sess, ok := s.sessions[id]; ok {
		return sess, true
	}
	if current.ID != id || id == "" {
		return nil, false
	}
	sess := autosave.New(context.Background(), s.store, current, s.loop, s.loop,
		append([]autosave.Option{autosave.WithLogger(s.log)}, s.autosave...)...)
	s.sessions[id] = sess
	return sess, true
}

func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var (
		resp  sessionResponse
		found bool
	)
	err := s.loop.Do(r.Context(), func() {
		sess, ok := s.sessions[id]
		if !ok {
			return
		}
		found = true
		_ = sess.Save()
		resp = stateOf(sess)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "no open session", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleSessionClose(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.loop.Do(r.Context(), func() { s.closeSession(id) }); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// closeSession must run on the loop.
func (s *Server) closeSession(id string) {
	if sess, ok := s.sessions[id]; ok {
		sess.Close()
		delete(s.sessions, id)
	}
}

func stateOf(sess *autosave.Session) sessionResponse {
	st := sess.State()
	resp := sessionResponse{ID: sess.ID(), Dirty: st.Dirty, Saving: st.Saving}
	if !st.UpdatedAt.IsZero() {
		t := st.UpdatedAt
		resp.UpdatedAt = &t
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	return resp
}

func (s *Server) writeNote(w http.ResponseWriter, status int, n notes.Note) {
	w.Header().Set("ETag", etag(n))
	writeJSON(w, status, noteResponse{Note: n, Hash: n.Hash()})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notes.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, notes.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errSessionChurn):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, eventloop.ErrStopped):
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request canceled", http.StatusServiceUnavailable)
	default:
		s.log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func etag(n notes.Note) string { return `"` + n.Hash() + `"` }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
