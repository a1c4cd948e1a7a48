// Package rpc is the HTTP facade: endpoint routing, request validation, and
// the JSON response envelope. It is stateless and delegates every decision
// to the coordinator.
package rpc

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/atomic-swap-net/swapcoordd/internal/coordinator"
	"github.com/atomic-swap-net/swapcoordd/pkg/logging"
)

// Server wraps the coordinator with an HTTP mux.
type Server struct {
	coord  *coordinator.Coordinator
	log    *logging.Logger
	mux    *http.ServeMux
	wsHub  *WSHub
	server *http.Server
}

// Config configures a Server.
type Config struct {
	Coordinator *coordinator.Coordinator
	Logger      *logging.Logger
}

// NewServer builds a Server and registers every route.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logging.GetDefault().Component("rpc")
	}

	s := &Server{
		coord: cfg.Coordinator,
		log:   log,
		mux:   http.NewServeMux(),
		wsHub: NewWSHub(),
	}

	s.coord.OnEvent(s.broadcastSwapEvent)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleServerInfo)
	s.mux.HandleFunc("GET /get_token/", s.handleGetToken)
	s.mux.HandleFunc("POST /verify_token/", s.handleVerifyToken)
	s.mux.HandleFunc("POST /register_swap/", s.handleRegisterSwap)
	s.mux.HandleFunc("GET /get_swap_list/", s.handleGetSwapList)
	s.mux.HandleFunc("POST /initiate_swap/", s.handleInitiateSwap)
	s.mux.HandleFunc("POST /get_initiator_info/", s.handleGetInitiatorInfo)
	s.mux.HandleFunc("POST /participate_swap/", s.handleParticipateSwap)
	s.mux.HandleFunc("GET /get_participator_info/", s.handleGetParticipatorInfo)
	s.mux.HandleFunc("POST /redeem_swap/", s.handleRedeemSwap)
	s.mux.HandleFunc("POST /get_redeem_token/", s.handleGetRedeemToken)
	s.mux.HandleFunc("POST /complete_swap/", s.handleCompleteSwap)
	s.mux.HandleFunc("GET /ws", s.handleWS)
}

// Handler returns the fully wrapped http.Handler (CORS + access log + panic
// recovery), suitable for http.Server.Handler or for tests.
func (s *Server) Handler() http.Handler {
	return s.withAccessLog(s.withCORS(s.mux))
}

// Start runs the hub loop and blocks serving HTTP on addr until the server
// is shut down.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.log.Info("HTTP server listening", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic handling request", "request_id", requestID, "panic", rec)
				writeEnvelope(w, http.StatusInternalServerError, envelope{Status: statusFailed, Error: "internal error"})
			}
		}()

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.log.Debug("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
