package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/simman/go-gatekeeper/internal/router"
	"github.com/simman/go-gatekeeper/internal/rules"
)

// ServeHTTP runs one request through the pipeline: resolve the route,
// evaluate its rule tree, and apply the default forward unless a rule
// terminated processing first.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	route, req, ok := s.router.Resolve(r)
	if !ok {
		s.handleNoRoute(w, r)
		return
	}

	chain := s.chainFor(route, req)
	ev := s.evaluatorFor(requestID)

	res, err := ev.Evaluate(route.Rule, w, req, chain)
	if err != nil {
		// Precondition and invariant failures land here; the request is
		// aborted, never retried.
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Str("service", route.Service).
			Str("path", req.URL.Path).
			Msg("rule evaluation aborted")
		s.handleError(w, req, http.StatusInternalServerError, "filter evaluation failed")
		return
	}

	if res == rules.Terminate {
		// An action handled the request.
		return
	}

	if err := chain.Proceed(w, req); err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Str("service", route.Service).
			Str("path", req.URL.Path).
			Msg("failed to forward request")
		s.handleError(w, req, http.StatusBadGateway, "failed to forward request")
	}
}

// chainFor picks the downstream transport for the request: CONNECT
// tunneling, WebSocket passthrough, or a plain HTTP forward.
func (s *Server) chainFor(route *router.Route, r *http.Request) rules.Chain {
	upstream := route.Upstream

	switch {
	case r.Method == http.MethodConnect:
		return rules.ChainFunc(func(w http.ResponseWriter, r *http.Request) error {
			return s.tunnelConnect(w, r, upstream)
		})
	case isWebSocketUpgrade(r):
		return rules.ChainFunc(func(w http.ResponseWriter, r *http.Request) error {
			return s.proxyWebSocket(w, r, upstream)
		})
	default:
		return rules.ChainFunc(func(w http.ResponseWriter, r *http.Request) error {
			return s.forwarder.Forward(w, r, upstream)
		})
	}
}

// evaluatorFor builds the per-request evaluator: step-limited when
// max_steps is configured, tracing when debug logging is on, plain
// otherwise.
func (s *Server) evaluatorFor(requestID string) rules.Evaluator {
	if maxSteps := s.serverConfig().MaxSteps; maxSteps > 0 {
		return rules.NewLimitEvaluator(maxSteps)
	}
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		return rules.NewTraceEvaluator(log.With().Str("request_id", requestID).Logger())
	}
	return rules.NewInvocation()
}

// handleNoRoute handles requests no service is mounted for
func (s *Server) handleNoRoute(w http.ResponseWriter, r *http.Request) {
	log.Warn().
		Str("host", r.Host).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg("no route for request")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)

	response := map[string]string{
		"error":  "no route for request",
		"host":   r.Host,
		"path":   r.URL.Path,
		"method": r.Method,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}

// handleError handles error responses
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]string{
		"error": message,
		"host":  r.Host,
		"path":  r.URL.Path,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}
