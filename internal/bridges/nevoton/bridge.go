package nevoton

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-nevoton/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-nevoton/internal/sauna"
)

// Bridge operation constants.
const (
	// commandTimeout bounds one command write, including the device
	// exchange. The device itself enforces a 10s exchange deadline.
	commandTimeout = 15 * time.Second

	// historyTimeout bounds one history insert.
	historyTimeout = 5 * time.Second
)

// Bridge polls one Nevoton sauna controller and mirrors it onto MQTT.
// It handles:
//   - Periodic state polling with change detection and retained
//     state publishes
//   - Receiving parameter commands from Core via MQTT and writing
//     them to the device
//   - Health reporting and graceful shutdown
//
// Thread Safety: All methods are safe for concurrent use. Device
// exchanges are serialized by the client; the bridge additionally
// serializes poll-vs-command ordering through pollMu so a command's
// refresh cannot interleave with a scheduled poll.
type Bridge struct {
	cfg    *config.Config
	device DeviceClient
	mqtt   MQTTClient
	health *HealthReporter

	history   HistoryRecorder // Optional snapshot/command persistence
	telemetry Telemetry       // Optional time-series metrics

	// Previous snapshot for change detection
	prev   sauna.Snapshot
	prevMu sync.Mutex

	// Poll bookkeeping, guarded by statsMu
	consecutiveFailures int
	authFailed          bool
	lastPollError       string
	statsMu             sync.RWMutex

	// pollMu orders polls and post-command refreshes
	pollMu sync.Mutex

	// Shutdown coordination
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context
	ctxCancel context.CancelFunc

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger is the minimal structured logging interface the bridge needs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// HistoryRecorder persists snapshots and command attempts.
// This interface is satisfied by *sauna.HistoryRepository.
// It is optional - if nil, the bridge operates without persistence.
type HistoryRecorder interface {
	// RecordSnapshot stores a snapshot and the points that changed.
	RecordSnapshot(ctx context.Context, deviceID string, snapshot sauna.Snapshot, changed []string) error

	// RecordCommand stores the outcome of a parameter write.
	RecordCommand(ctx context.Context, rec sauna.CommandRecord) error
}

// Telemetry records time-series metrics for polls and point values.
// This interface is satisfied by *influxdb.Client.
// It is optional - if nil, the bridge operates without telemetry.
type Telemetry interface {
	// WriteSnapshotMetrics records every numeric point of a snapshot.
	WriteSnapshotMetrics(deviceID string, points map[string]float64)

	// WritePointMetric records a single numeric point reading.
	WritePointMetric(deviceID string, point string, value float64)

	// WritePollMetric records the outcome and latency of one poll.
	WritePollMetric(deviceID string, durationMs float64, success bool)
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// Config is the loaded bridge configuration.
	Config *config.Config

	// Device is the sauna controller client.
	Device DeviceClient

	// MQTT is the MQTT client implementation.
	MQTT MQTTClient

	// History is optional snapshot/command persistence.
	// If nil, the bridge operates without persistence.
	History HistoryRecorder

	// Telemetry is optional time-series metrics.
	// If nil, the bridge operates without telemetry.
	Telemetry Telemetry

	// Logger is optional structured logger.
	Logger Logger

	// Version is the bridge software version for health messages.
	Version string
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Device == nil {
		return nil, fmt.Errorf("device client is required")
	}
	if opts.MQTT == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}

	// Bridge-level context so in-flight exchanges abort on Stop()
	ctx, ctxCancel := context.WithCancel(context.Background())

	b := &Bridge{
		cfg:       opts.Config,
		device:    opts.Device,
		mqtt:      opts.MQTT,
		history:   opts.History,   // May be nil (optional)
		telemetry: opts.Telemetry, // May be nil (optional)
		done:      make(chan struct{}),
		ctx:       ctx,
		ctxCancel: ctxCancel,
		logger:    opts.Logger,
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  opts.Config.Bridge.ID,
		Version:   version,
		Interval:  opts.Config.GetHealthInterval(),
		Publisher: opts.MQTT,
		Device:    opts.Device,
		Source:    b,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start begins bridge operation.
// This fetches the device identity, subscribes to command topics, and
// starts the poll loop and health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	// Fetch identity once up front. A credential rejection halts
	// polling but not startup: the bridge stays on the bus reporting
	// auth_failed so the misconfiguration is visible instead of the
	// process crash-looping against the device. An unreachable device
	// is transient, the poll loop retries.
	infoCtx, cancel := context.WithTimeout(ctx, b.cfg.GetDeviceTimeout())
	info, err := b.device.FetchDeviceInfo(infoCtx)
	cancel()
	switch {
	case err == nil:
		b.logInfo("device identified",
			"id", info.ID,
			"mac", info.MAC,
			"firmware", info.FirmwareVersion,
			"model", info.ModuleName)
	case errors.Is(err, ErrInvalidCredential):
		b.markAuthFailed(err)
	default:
		b.logWarn("device identity fetch failed, will retry on poll",
			"error", err.Error())
	}

	commandTopic := CommandSubscribeTopic()
	if err := b.mqtt.Subscribe(commandTopic, byte(b.cfg.MQTT.QoS), b.handleMQTTMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", commandTopic)

	b.wg.Add(1)
	go b.pollLoop()

	b.health.Start(ctx)

	if err := b.health.PublishNow(); err != nil {
		b.logError("failed to publish health status", err)
	}

	b.logInfo("bridge started",
		"device_id", b.cfg.Bridge.ID,
		"scan_interval", b.cfg.GetScanInterval().String())

	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)

		// Abort in-flight device exchanges
		b.ctxCancel()

		// Stop health reporting (publishes "stopping" status)
		b.health.Stop()

		// Wait for the poll loop
		b.wg.Wait()

		b.logInfo("bridge stopped")
	})
}

// pollLoop polls the device at the configured scan interval. The first
// poll runs immediately so retained state appears without waiting a
// full interval. The loop exits permanently on a credential rejection.
func (b *Bridge) pollLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.GetScanInterval())
	defer ticker.Stop()

	if terminal := b.pollOnce(); terminal {
		return
	}

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			if terminal := b.pollOnce(); terminal {
				return
			}
		}
	}
}

// pollOnce performs one state poll. Returns true when polling should
// stop permanently (credential rejected).
func (b *Bridge) pollOnce() bool {
	b.pollMu.Lock()
	defer b.pollMu.Unlock()

	ctx, cancel := context.WithTimeout(b.ctx, b.cfg.GetDeviceTimeout())
	defer cancel()

	start := time.Now()
	state, err := b.device.FetchState(ctx)
	elapsed := time.Since(start)

	if b.telemetry != nil {
		b.telemetry.WritePollMetric(b.cfg.Bridge.ID, float64(elapsed.Milliseconds()), err == nil)
	}

	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			b.markAuthFailed(err)
			return true
		}
		b.recordPollFailure(err)
		return false
	}

	b.recordPollSuccess()

	// Telemetry samples every poll; MQTT publishes only on change.
	// Duty-cycle queries need the unchanged samples.
	if b.telemetry != nil {
		b.telemetry.WriteSnapshotMetrics(b.cfg.Bridge.ID, numericPoints(state))
	}

	b.publishStateIfChanged(sauna.Snapshot(state))
	return false
}

// publishStateIfChanged compares the snapshot against the previous one
// and publishes a retained state message when anything differs. The
// first snapshot after startup always publishes.
func (b *Bridge) publishStateIfChanged(snapshot sauna.Snapshot) {
	b.prevMu.Lock()
	changed := changedPoints(b.prev, snapshot)
	first := b.prev == nil
	b.prev = snapshot
	b.prevMu.Unlock()

	if !first && len(changed) == 0 {
		return
	}

	deviceID := b.cfg.Bridge.ID
	msg := NewStateMessage(deviceID, snapshot, changed)

	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal state", err)
		return
	}

	if err := b.mqtt.Publish(StateTopic(deviceID), payload, byte(b.cfg.MQTT.QoS), true); err != nil {
		b.logError("failed to publish state", err)
	}

	b.logDebug("state published", "changed", changed)

	if b.history != nil {
		ctx, cancel := context.WithTimeout(b.ctx, historyTimeout)
		if err := b.history.RecordSnapshot(ctx, deviceID, snapshot, changed); err != nil {
			b.logError("failed to record snapshot", err)
		}
		cancel()
	}
}

// changedPoints returns the sorted names of points whose value differs
// between two snapshots, including points newly appeared or vanished.
func changedPoints(prev, next sauna.Snapshot) []string {
	if prev == nil {
		return nil
	}

	var changed []string
	for name, value := range next {
		if old, ok := prev[name]; !ok || !valuesEqual(old, value) {
			changed = append(changed, name)
		}
	}
	for name := range prev {
		if _, ok := next[name]; !ok {
			changed = append(changed, name)
		}
	}

	sort.Strings(changed)
	return changed
}

// valuesEqual compares two point values. The device reports scalars,
// but a garbled response can put composite JSON where a number
// belongs, and comparing interfaces holding maps or slices with ==
// panics. reflect.DeepEqual handles both shapes.
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// numericPoints filters a snapshot down to its float64 values for
// telemetry. The device reports everything numerically, so in practice
// this keeps the whole snapshot.
func numericPoints(snapshot sauna.Snapshot) map[string]float64 {
	out := make(map[string]float64, len(snapshot))
	for name, value := range snapshot {
		if f, ok := value.(float64); ok {
			out[name] = f
		}
	}
	return out
}

// handleMQTTMessage routes incoming MQTT messages. Only command topics
// are subscribed, but the topic is still checked so a misconfigured
// broker ACL cannot feed arbitrary payloads into command handling.
func (b *Bridge) handleMQTTMessage(topic string, payload []byte) {
	if topic != CommandTopic(b.cfg.Bridge.ID) {
		b.logDebug("ignoring message on unexpected topic", "topic", topic)
		return
	}

	b.handleCommand(payload)
}

// handleCommand processes a parameter write command from Core. It runs
// on the MQTT client's delivery goroutine; the client recovers handler
// panics, and Stop() cancels the bridge context so an in-flight device
// exchange aborts rather than holding shutdown.
func (b *Bridge) handleCommand(payload []byte) {
	select {
	case <-b.done:
		b.logDebug("ignoring command during shutdown")
		return
	default:
	}

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.logError("failed to parse command", err)
		return
	}

	b.logInfo("received command",
		"command_id", cmd.ID,
		"point", cmd.Point,
		"value", cmd.Value)

	// Validate before touching the device
	coerced, err := sauna.ValidateWrite(cmd.Point, cmd.Value)
	if err != nil {
		b.rejectCommand(cmd, err)
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	accepted, err := b.device.SetParameter(ctx, cmd.Point, cmd.Value)
	if err != nil {
		b.failCommand(cmd, coerced, err)
		return
	}
	if !accepted {
		b.publishAckError(cmd, AckFailed, ErrCodeDeviceRefused,
			fmt.Sprintf("device refused write to %s", cmd.Point))
		b.recordCommand(cmd, coerced, sauna.CommandStatusFailed, "device refused write")
		return
	}

	b.publishAck(cmd, AckApplied)
	b.recordCommand(cmd, coerced, sauna.CommandStatusApplied, "")

	if b.telemetry != nil {
		b.telemetry.WritePointMetric(b.cfg.Bridge.ID, cmd.Point, float64(coerced))
	}

	// Refresh immediately so Core sees the effect of the write rather
	// than waiting out the scan interval.
	b.pollOnce()
}

// rejectCommand acks a command that failed validation. The device was
// never contacted.
func (b *Bridge) rejectCommand(cmd CommandMessage, err error) {
	code := ErrCodeProtocolError
	switch {
	case errors.Is(err, sauna.ErrUnknownPoint):
		code = ErrCodeUnknownPoint
	case errors.Is(err, sauna.ErrPointReadOnly):
		code = ErrCodeReadOnlyPoint
	case errors.Is(err, sauna.ErrValueOutOfRange):
		code = ErrCodeValueOutOfRange
	}

	b.publishAckError(cmd, AckRejected, code, err.Error())
	b.recordCommand(cmd, int(cmd.Value), sauna.CommandStatusRejected, err.Error())
}

// failCommand acks a command whose device exchange failed.
func (b *Bridge) failCommand(cmd CommandMessage, coerced int, err error) {
	code := ErrCodeProtocolError
	switch {
	case errors.Is(err, ErrInvalidCredential):
		code = ErrCodeAuthFailed
		b.markAuthFailed(err)
	case errors.Is(err, ErrConnectionFailed):
		code = ErrCodeDeviceUnreachable
	}

	b.publishAckError(cmd, AckFailed, code, err.Error())
	b.recordCommand(cmd, coerced, sauna.CommandStatusFailed, err.Error())
}

// recordCommand persists a command outcome if history is configured.
func (b *Bridge) recordCommand(cmd CommandMessage, value int, status, detail string) {
	if b.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, historyTimeout)
	defer cancel()

	rec := sauna.CommandRecord{
		CommandID: cmd.ID,
		DeviceID:  cmd.DeviceID,
		Point:     cmd.Point,
		Value:     value,
		Status:    status,
		Detail:    detail,
	}
	if err := b.history.RecordCommand(ctx, rec); err != nil {
		b.logError("failed to record command", err)
	}
}

// publishAck publishes a command acknowledgment.
func (b *Bridge) publishAck(cmd CommandMessage, status AckStatus) {
	ack := NewAckMessage(cmd, status)

	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack", err)
		return
	}

	if err := b.mqtt.Publish(AckTopic(b.cfg.Bridge.ID), payload, byte(b.cfg.MQTT.QoS), false); err != nil {
		b.logError("failed to publish ack", err)
	}
}

// publishAckError publishes a failed command acknowledgment.
func (b *Bridge) publishAckError(cmd CommandMessage, status AckStatus, code, message string) {
	ack := NewAckError(cmd, status, code, message)

	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack error", err)
		return
	}

	if err := b.mqtt.Publish(AckTopic(b.cfg.Bridge.ID), payload, byte(b.cfg.MQTT.QoS), false); err != nil {
		b.logError("failed to publish ack error", err)
	}

	b.logError("command failed",
		fmt.Errorf("command_id=%s code=%s message=%s", cmd.ID, code, message))
}

// markAuthFailed records a credential rejection and publishes the
// terminal health status. Polling stops; the bridge stays up so the
// operator can see the failure on the health topic and the API.
func (b *Bridge) markAuthFailed(err error) {
	b.statsMu.Lock()
	already := b.authFailed
	b.authFailed = true
	b.lastPollError = err.Error()
	b.statsMu.Unlock()

	if already {
		return
	}

	b.logError("device rejected credential, polling halted", err)
	if pubErr := b.health.PublishNow(); pubErr != nil {
		b.logError("failed to publish auth failure", pubErr)
	}
}

// recordPollFailure counts a failed poll and publishes degraded health
// once the consecutive failure threshold is crossed.
func (b *Bridge) recordPollFailure(err error) {
	b.statsMu.Lock()
	b.consecutiveFailures++
	b.lastPollError = err.Error()
	failures := b.consecutiveFailures
	b.statsMu.Unlock()

	b.logWarn("poll failed",
		"consecutive_failures", failures,
		"error", err.Error())

	if failures == b.cfg.Bridge.MaxConsecutiveFailures {
		if pubErr := b.health.PublishNow(); pubErr != nil {
			b.logError("failed to publish degraded health", pubErr)
		}
	}
}

// recordPollSuccess resets the failure run.
func (b *Bridge) recordPollSuccess() {
	b.statsMu.Lock()
	wasDegraded := b.consecutiveFailures >= b.cfg.Bridge.MaxConsecutiveFailures
	b.consecutiveFailures = 0
	b.lastPollError = ""
	b.statsMu.Unlock()

	if wasDegraded {
		b.logInfo("device recovered")
		if err := b.health.PublishNow(); err != nil {
			b.logError("failed to publish recovery health", err)
		}
	}
}

// HealthSnapshot reports the bridge's own view of its status.
// Implements StatusSource for the health reporter.
func (b *Bridge) HealthSnapshot() (HealthStatus, string, BridgeStatistics) {
	b.statsMu.RLock()
	defer b.statsMu.RUnlock()

	stats := b.device.Stats()
	bs := BridgeStatistics{
		RequestsTotal:       stats.RequestsTotal,
		ErrorsTotal:         stats.ErrorsTotal,
		ConsecutiveFailures: b.consecutiveFailures,
	}

	if b.authFailed {
		return HealthAuthFailed, b.lastPollError, bs
	}
	if b.consecutiveFailures >= b.cfg.Bridge.MaxConsecutiveFailures {
		return HealthDegraded, b.lastPollError, bs
	}
	return HealthHealthy, "", bs
}

// CurrentState returns a copy of the last published snapshot, or nil
// when no poll has succeeded yet. Used by the diagnostics API.
func (b *Bridge) CurrentState() sauna.Snapshot {
	b.prevMu.Lock()
	defer b.prevMu.Unlock()

	if b.prev == nil {
		return nil
	}
	out := make(sauna.Snapshot, len(b.prev))
	for k, v := range b.prev {
		out[k] = v
	}
	return out
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()

	if b.health != nil {
		b.health.SetLogger(logger)
	}
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if logger is set.
func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}

// logDebug logs a debug message if logger is set.
func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}

// BridgeMetrics contains metrics data for the API metrics endpoint.
type BridgeMetrics struct {
	Connected           bool       `json:"mqtt_connected"`
	Status              string     `json:"status"`
	RequestsTotal       uint64     `json:"requests_total"`
	ErrorsTotal         uint64     `json:"errors_total"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	Device              DeviceInfo `json:"device"`
}

// GetMetrics returns current bridge metrics for the API metrics endpoint.
func (b *Bridge) GetMetrics() BridgeMetrics {
	status, _, stats := b.HealthSnapshot()

	m := BridgeMetrics{
		Connected:           b.mqtt.IsConnected(),
		Status:              string(status),
		RequestsTotal:       stats.RequestsTotal,
		ErrorsTotal:         stats.ErrorsTotal,
		ConsecutiveFailures: stats.ConsecutiveFailures,
		Device:              b.device.Info(),
	}

	if last := b.device.Stats().LastSuccess; !last.IsZero() {
		m.LastSuccess = &last
	}
	return m
}
