package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bluefunda/backlogr/intent"
	"github.com/bluefunda/backlogr/rest/models"
	"github.com/bluefunda/backlogr/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxRequestBytes = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Config represents the server configuration
type Config struct {
	Version   string
	BuildTime string
	GitCommit string
	Verbose   bool
	Quiet     bool
}

// Dispatcher executes structured intents
type Dispatcher interface {
	Dispatch(ctx context.Context, intent types.Intent) types.Result
}

// RestServer exposes the command dispatcher over HTTP
type RestServer struct {
	logger     *zap.Logger
	config     *Config
	dispatcher Dispatcher
	parser     intent.Parser
}

// NewRestServer creates a new REST server instance. parser may be nil, in
// which case only structured commands are accepted.
func NewRestServer(config *Config, logger *zap.Logger, dispatcher Dispatcher, parser intent.Parser) *RestServer {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RestServer{
		logger:     logger.With(zap.String("component", "rest_server")),
		config:     config,
		dispatcher: dispatcher,
		parser:     parser,
	}
}

// Handler registers every route on a fresh mux
func (rs *RestServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/commands", rs.corsHandler(rs.commandsHandler))
	mux.HandleFunc("/api/v1/commands/parse", rs.corsHandler(rs.parseHandler))

	// Health and version endpoints
	mux.HandleFunc("/health", rs.healthHandler)
	mux.HandleFunc("/version", rs.versionHandler)

	return mux
}

// Start runs the REST server until ctx is cancelled
func (rs *RestServer) Start(ctx context.Context, port string) error {
	rs.logger.Info("Starting REST server", zap.String("port", port))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           rs.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		rs.logger.Info("Shutting down REST server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// corsHandler adds CORS headers and a request id to responses
func (rs *RestServer) corsHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		rs.logger.Debug("Processing request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr))

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// commandsHandler lists commands on GET and executes one on POST
func (rs *RestServer) commandsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rs.sendSuccess(w, models.CommandListResponse{
			Total:    len(types.Commands),
			Commands: types.Commands,
		})
	case http.MethodPost:
		rs.executeHandler(w, r)
	default:
		rs.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rs *RestServer) executeHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := rs.decodeCommandRequest(w, r)
	if !ok {
		return
	}

	var in types.Intent
	switch {
	case req.Type != "" || req.Action != "":
		if req.Type == "" || req.Action == "" {
			rs.sendError(w, "Both type and action are required for structured commands", http.StatusBadRequest)
			return
		}
		in = types.Intent{Type: req.Type, Action: req.Action, Params: req.Params}
	case strings.TrimSpace(req.Text) != "":
		parsed, status, err := rs.parse(r.Context(), req.Text)
		if err != nil {
			rs.sendError(w, err.Error(), status)
			return
		}
		in = parsed
	default:
		rs.sendError(w, "Either text or type and action are required", http.StatusBadRequest)
		return
	}

	result := rs.dispatcher.Dispatch(r.Context(), in)

	rs.logger.Info("Command executed",
		zap.String("type", string(in.Type)),
		zap.String("action", string(in.Action)),
		zap.Bool("success", result.Success))

	rs.sendSuccess(w, models.CommandResponse{Intent: in, Result: result})
}

// parseHandler returns the intent for a text without executing it
func (rs *RestServer) parseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rs.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, ok := rs.decodeCommandRequest(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		rs.sendError(w, "Text is required", http.StatusBadRequest)
		return
	}

	parsed, status, err := rs.parse(r.Context(), req.Text)
	if err != nil {
		rs.sendError(w, err.Error(), status)
		return
	}

	rs.sendSuccess(w, models.ParseResponse{Intent: parsed})
}

func (rs *RestServer) decodeCommandRequest(w http.ResponseWriter, r *http.Request) (models.CommandRequest, bool) {
	var req models.CommandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		rs.sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// parse maps parser failures to the HTTP status reported to the caller
func (rs *RestServer) parse(ctx context.Context, text string) (types.Intent, int, error) {
	if rs.parser == nil {
		return types.Intent{}, http.StatusServiceUnavailable, intent.ErrNotConfigured
	}

	parsed, err := rs.parser.Parse(ctx, text)
	switch {
	case err == nil:
		return parsed, http.StatusOK, nil
	case errors.Is(err, intent.ErrNotConfigured):
		return types.Intent{}, http.StatusServiceUnavailable, err
	case errors.Is(err, intent.ErrNotUnderstood):
		return types.Intent{}, http.StatusUnprocessableEntity,
			errors.New("I couldn't understand that command. Try rephrasing it.")
	default:
		rs.logger.Error("Intent parsing failed", zap.Error(err))
		return types.Intent{}, http.StatusBadGateway, fmt.Errorf("intent parsing failed: %w", err)
	}
}

// sendSuccess sends a successful API response
func (rs *RestServer) sendSuccess(w http.ResponseWriter, data interface{}) {
	response := models.APIResponse{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// sendError sends an error API response
func (rs *RestServer) sendError(w http.ResponseWriter, message string, statusCode int) {
	rs.logger.Warn("API error", zap.String("error", message), zap.Int("status", statusCode))

	response := models.APIResponse{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// healthHandler handles health check requests
func (rs *RestServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"features": map[string]bool{
			"structured_commands": true,
			"natural_language":    rs.parser != nil,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// versionHandler handles version requests
func (rs *RestServer) versionHandler(w http.ResponseWriter, r *http.Request) {
	version := map[string]string{
		"version":    rs.config.Version,
		"build_time": rs.config.BuildTime,
		"git_commit": rs.config.GitCommit,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version)
}
