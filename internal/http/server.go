// Package http exposes the claim workflow as a JSON API. Authentication
// happens upstream; the authenticated principal arrives in the
// X-Auth-User and X-Auth-Role headers and is trusted as-is.
package http

import (
	"net"
	"net/http"
	"time"

	"expenseflow/internal/cache"
	"expenseflow/internal/core"
	applog "expenseflow/internal/log"
	"expenseflow/internal/middleware/ratelimit"
	"expenseflow/internal/middleware/security"
	"expenseflow/internal/report"
	"expenseflow/internal/services"
)

const dashboardCacheTTL = 30 * time.Second

type Server struct {
	http.Server

	service     *services.ExpenseService
	reports     *report.Engine
	trendMonths int

	limiter   *ratelimit.Limiter
	dashboard *cache.LRUCache[report.Summary]
}

// principalHandler is a handler that requires an authenticated principal.
type principalHandler func(w http.ResponseWriter, r *http.Request, p core.Principal)

func NewServer(addr string, svc *services.ExpenseService, reports *report.Engine, trendMonths int, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		service:     svc,
		reports:     reports,
		trendMonths: trendMonths,
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		dashboard:   cache.NewLRU[report.Summary](256, dashboardCacheTTL),
	}
	s.RegisterOnShutdown(s.limiter.Stop)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("POST /api/expenses", s.withPrincipal(s.handleSubmit))
	mux.HandleFunc("GET /api/expenses", s.withPrincipal(s.handleList))
	mux.HandleFunc("POST /api/expenses/{id}/approve", s.withPrincipal(s.handleApprove))
	mux.HandleFunc("POST /api/expenses/{id}/reject", s.withPrincipal(s.handleReject))
	mux.HandleFunc("GET /api/dashboard", s.withPrincipal(s.handleDashboard))

	handler := http.Handler(mux)
	handler = s.limiter.Middleware(callerKey, nil)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	if logger != nil {
		handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(handler)
	}
	s.Handler = handler

	return s
}

// callerKey identifies a caller for rate limiting. Authenticated
// requests are tracked per user, everything else per client address.
func callerKey(r *http.Request) string {
	if user := r.Header.Get("X-Auth-User"); user != "" {
		return "u:" + user
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// withPrincipal parses the identity headers set by the upstream
// authentication proxy. Requests without a valid principal never reach
// the core.
func (s *Server) withPrincipal(next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.Header.Get("X-Auth-User")
		if username == "" {
			writeError(w, r, http.StatusUnauthorized, "missing X-Auth-User header")
			return
		}
		role, err := core.ParseRole(r.Header.Get("X-Auth-Role"))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "missing or unknown X-Auth-Role header")
			return
		}
		next(w, r, core.Principal{Username: username, Role: role})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
