// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetledger/internal/backend"
	"budgetledger/internal/identity"
	"budgetledger/internal/ledger"
	"budgetledger/internal/middleware/ratelimit"
	"budgetledger/internal/middleware/security"
	"budgetledger/internal/middleware/trace"
)

// Server serves the ledger API. Each authenticated session owns its user's
// store handle and an independent pair of view filters.
type Server struct {
	http.Server

	registry   *identity.Registry
	factory    *backend.Factory
	backendCfg backend.Config // template; Username is filled per session

	limiter   *ratelimit.Limiter
	extractor *security.IPExtractor
	tracer    *trace.Middleware

	mu       sync.Mutex
	sessions map[string]*session

	started      time.Time
	shutdownOnce sync.Once
}

// session is one logged-in user's view of their ledger.
type session struct {
	token     string
	user      identity.User
	store     ledger.Store
	cleanup   backend.CleanupFunc
	projector *ledger.Projector
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// backendCfg carries the storage settings; its Username field is overwritten
// for every session.
func NewServer(addr string, registry *identity.Registry, factory *backend.Factory, backendCfg backend.Config) *Server {
	mux := http.NewServeMux()

	extractor := security.NewIPExtractor()

	s := &Server{
		registry:   registry,
		factory:    factory,
		backendCfg: backendCfg,
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		extractor:  extractor,
		tracer:     trace.NewMiddleware(extractor.ExtractClientIP),
		sessions:   make(map[string]*session),
		started:    time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.withSession(s.handleLogout))

	mux.HandleFunc("POST /api/transactions", s.withSession(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withSession(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/table", s.withSession(s.handleTableView))
	mux.HandleFunc("PUT /api/table/filter", s.withSession(s.handleSetTableFilter))
	mux.HandleFunc("DELETE /api/table/filter", s.withSession(s.handleClearTableFilter))

	mux.HandleFunc("GET /api/plot", s.withSession(s.handlePlotView))
	mux.HandleFunc("PUT /api/plot/filter", s.withSession(s.handleSetPlotFilter))
	mux.HandleFunc("DELETE /api/plot/filter", s.withSession(s.handleClearPlotFilter))

	handler := security.Headers(s.tracer.Middleware(s.withWriteRateLimit(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// withWriteRateLimit throttles mutating requests per client IP. Reads are
// not throttled.
func (s *Server) withWriteRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			clientIP := s.extractor.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withSession resolves the bearer token and passes the session through.
func (s *Server) withSession(next func(http.ResponseWriter, *http.Request, *session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessionFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing or invalid session token")
			return
		}
		next(w, r, sess)
	}
}

func (s *Server) sessionFromRequest(r *http.Request) (*session, bool) {
	token := bearerToken(r)
	if token == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	return sess, ok
}

// openSession opens the user's ledger and registers a new session token.
func (s *Server) openSession(user identity.User) (*session, error) {
	cfg := s.backendCfg
	cfg.Username = user.Username

	result, err := s.factory.Open(cfg)
	if err != nil {
		return nil, err
	}

	sess := &session{
		token:     uuid.NewString(),
		user:      user,
		store:     result.Store,
		cleanup:   result.Cleanup,
		projector: ledger.NewProjector(result.Store),
	}

	s.mu.Lock()
	s.sessions[sess.token] = sess
	s.mu.Unlock()

	return sess, nil
}

// closeSession drops the token and releases the session's store.
func (s *Server) closeSession(sess *session) error {
	s.mu.Lock()
	delete(s.sessions, sess.token)
	s.mu.Unlock()

	if sess.cleanup != nil {
		return sess.cleanup()
	}
	return nil
}

// Shutdown stops the listener, the limiter, and every open session.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.limiter.Shutdown()

		s.mu.Lock()
		sessions := make([]*session, 0, len(s.sessions))
		for _, sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		s.sessions = make(map[string]*session)
		s.mu.Unlock()

		for _, sess := range sessions {
			if sess.cleanup != nil {
				_ = sess.cleanup()
			}
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
