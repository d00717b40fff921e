// Package api provides the diagnostics HTTP API for the Nevoton bridge.
//
// It exposes the controller's identity, the current point snapshot,
// persisted history, and a parameter write endpoint for commissioning.
// The API is intended for the installer's LAN; Core and the panels talk
// to the bridge over MQTT, not this API.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-nevoton/internal/bridges/nevoton"
	"github.com/nerrad567/gray-logic-nevoton/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-nevoton/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-nevoton/internal/sauna"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// BridgeStatus exposes the bridge's live state to the API.
// Implemented by *nevoton.Bridge.
type BridgeStatus interface {
	// GetMetrics returns current operational metrics.
	GetMetrics() nevoton.BridgeMetrics

	// CurrentState returns the last polled snapshot, nil before the
	// first successful poll.
	CurrentState() sauna.Snapshot
}

// HistoryReader reads persisted snapshots and command outcomes.
// Implemented by *sauna.HistoryRepository.
type HistoryReader interface {
	GetHistory(ctx context.Context, deviceID string, limit int) ([]sauna.SnapshotEntry, error)
	GetCommandLog(ctx context.Context, deviceID string, limit int) ([]sauna.CommandRecord, error)
}

// CommandPublisher publishes command messages onto the bus. The API
// issues writes the same way Core does, through MQTT, so every write
// path flows through the bridge's single command handler.
type CommandPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Bridge   BridgeStatus
	History  HistoryReader // Optional; history endpoints return 404 when nil
	Commands CommandPublisher
	DeviceID string
	QoS      byte
	Version  string
}

// Server is the diagnostics HTTP server.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	bridge    BridgeStatus
	history   HistoryReader
	commands  CommandPublisher
	deviceID  string
	qos       byte
	version   string
	startTime time.Time
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, bridge)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Bridge == nil {
		return nil, fmt.Errorf("bridge is required")
	}
	if deps.DeviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	// History and Commands are optional; the relevant endpoints degrade

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		bridge:    deps.Bridge,
		history:   deps.History,
		commands:  deps.Commands,
		deviceID:  deps.DeviceID,
		qos:       deps.QoS,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; stop it with Close().
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
