package httpx

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkaroui/soapdir/internal/soap"
)

// Router binds the SOAP service registries to HTTP endpoints. Each registry
// is served on its own endpoint; everything else is a plain request and gets
// the liveness banner.
type Router struct {
	mux             *http.ServeMux
	logger          *slog.Logger
	userRegistry    *soap.Registry
	postRegistry    *soap.Registry
	userContract    []byte
	postContract    []byte
	limiter         RateLimiter
	dispatchTimeout time.Duration
	dbHealth        func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	dispatchFaults     *prometheus.CounterVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateLimitCalls     = 120
	healthCheckTimeout = 2 * time.Second
	livenessBanner     = "SOAP directory service is running"
)

// envelope is the decoded form of one incoming call.
type envelope struct {
	Service   string    `json:"service"`
	Port      string    `json:"port"`
	Operation string    `json:"operation"`
	Args      soap.Args `json:"args"`
}

// NewRouter assembles routes with dependencies. The contract artifacts are
// opaque bytes loaded once at startup; an empty contract disables the ?wsdl
// endpoint for that service.
func NewRouter(logger *slog.Logger, userRegistry, postRegistry *soap.Registry, userContract, postContract []byte, limiter RateLimiter, dispatchTimeout time.Duration, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:             http.NewServeMux(),
		logger:          logger,
		userRegistry:    userRegistry,
		postRegistry:    postRegistry,
		userContract:    userContract,
		postContract:    postContract,
		limiter:         limiter,
		dispatchTimeout: dispatchTimeout,
		dbHealth:        dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	if r.dispatchTimeout <= 0 {
		r.dispatchTimeout = 15 * time.Second
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/", r.audit(r.handleRoot))
	r.mux.HandleFunc("/healthz", r.audit(r.handleHealthz))
	r.mux.HandleFunc("/metrics", promhttp.Handler().ServeHTTP)
	r.mux.HandleFunc("/soap/user", r.audit(r.withRateLimit("soap_user", rateLimitCalls, rateWindowDefault, rateLimitKeyIP, r.serviceEndpoint(r.userRegistry, r.userContract))))
	r.mux.HandleFunc("/soap/post", r.audit(r.withRateLimit("soap_post", rateLimitCalls, rateWindowDefault, rateLimitKeyIP, r.serviceEndpoint(r.postRegistry, r.postContract))))
}

// serviceEndpoint serves one registry: POST dispatches an envelope, GET with
// ?wsdl returns the contract artifact, any other GET gets the banner.
func (r *Router) serviceEndpoint(registry *soap.Registry, contract []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			if req.URL.Query().Has("wsdl") {
				if len(contract) == 0 {
					r.notFound(w)
					return
				}
				w.Header().Set("Content-Type", "text/xml; charset=utf-8")
				_, _ = w.Write(contract)
				return
			}
			r.writeBanner(w)
		case http.MethodPost:
			var env envelope
			if err := json.NewDecoder(req.Body).Decode(&env); err != nil {
				writeFault(w, soap.ClientFault("invalid envelope"))
				return
			}
			ctx, cancel := context.WithTimeout(req.Context(), r.dispatchTimeout)
			defer cancel()
			payload, fault := registry.Dispatch(ctx, env.Service, env.Port, env.Operation, env.Args)
			if fault != nil {
				r.recordDispatchFault(env.Service, env.Operation, string(fault.Code))
				writeFault(w, fault)
				return
			}
			writeJSON(w, http.StatusOK, payload)
		default:
			r.methodNotAllowed(w)
		}
	}
}

// handleRoot answers every unmatched path; plain requests against the service
// get the running banner, matching the original behavior.
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	r.writeBanner(w)
}

func (r *Router) writeBanner(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(livenessBanner))
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		r.logger.Info("request", fields...)
		r.recordRequestMetrics(req.Method, req.URL.Path, status, duration)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
