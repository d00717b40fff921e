package nevoton

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// mockPublisher implements HealthPublisher.
type mockPublisher struct {
	mu        sync.Mutex
	published []publishedMsg
	connected bool
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMsg{topic, payload, retained})
	return nil
}

func (m *mockPublisher) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockPublisher) last(t *testing.T) HealthMessage {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.published) == 0 {
		t.Fatal("nothing published")
	}

	var msg HealthMessage
	if err := json.Unmarshal(m.published[len(m.published)-1].payload, &msg); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	return msg
}

// staticSource implements StatusSource with a fixed answer.
type staticSource struct {
	status HealthStatus
	reason string
	stats  BridgeStatistics
}

func (s *staticSource) HealthSnapshot() (HealthStatus, string, BridgeStatistics) {
	return s.status, s.reason, s.stats
}

func newTestReporter(pub *mockPublisher, src StatusSource, dev DeviceClient) *HealthReporter {
	return NewHealthReporter(HealthReporterConfig{
		BridgeID:  "nevoton-sauna",
		Version:   "1.2.3",
		Interval:  time.Hour, // Periodic reporting not under test
		Publisher: pub,
		Device:    dev,
		Source:    src,
	})
}

func TestPublishStarting(t *testing.T) {
	pub := &mockPublisher{connected: true}
	h := newTestReporter(pub, nil, nil)

	if err := h.PublishStarting(); err != nil {
		t.Fatalf("PublishStarting: %v", err)
	}

	msg := pub.last(t)
	if msg.Status != HealthStarting {
		t.Errorf("Status = %s", msg.Status)
	}
	if msg.Bridge != "nevoton-sauna" {
		t.Errorf("Bridge = %s", msg.Bridge)
	}
	if msg.Version != "1.2.3" {
		t.Errorf("Version = %s", msg.Version)
	}

	pub.mu.Lock()
	topic, retained := pub.published[0].topic, pub.published[0].retained
	pub.mu.Unlock()
	if topic != HealthTopic() {
		t.Errorf("topic = %s", topic)
	}
	if !retained {
		t.Error("health should be retained")
	}
}

func TestPublishNowReflectsSource(t *testing.T) {
	pub := &mockPublisher{connected: true}
	src := &staticSource{
		status: HealthDegraded,
		reason: "device unreachable",
		stats:  BridgeStatistics{RequestsTotal: 7, ErrorsTotal: 3, ConsecutiveFailures: 3},
	}
	dev := &mockDevice{
		info:  DeviceInfo{ID: "NV-7421", ModuleName: "Komfort"},
		stats: ClientStats{LastSuccess: time.Now().Add(-time.Minute)},
	}
	h := newTestReporter(pub, src, dev)

	if err := h.PublishNow(); err != nil {
		t.Fatalf("PublishNow: %v", err)
	}

	msg := pub.last(t)
	if msg.Status != HealthDegraded {
		t.Errorf("Status = %s", msg.Status)
	}
	if msg.Reason != "device unreachable" {
		t.Errorf("Reason = %s", msg.Reason)
	}
	if msg.Statistics == nil || msg.Statistics.ConsecutiveFailures != 3 {
		t.Errorf("Statistics = %+v", msg.Statistics)
	}
	if msg.Device == nil || msg.Device.ID != "NV-7421" {
		t.Errorf("Device = %+v", msg.Device)
	}
	if msg.Device.LastSeen == nil {
		t.Error("LastSeen missing")
	}
}

func TestDisconnectedPublisherDegrades(t *testing.T) {
	pub := &mockPublisher{connected: false}
	src := &staticSource{status: HealthHealthy}
	h := newTestReporter(pub, src, nil)

	status, reason := h.determineStatus()
	if status != HealthDegraded {
		t.Errorf("status = %s, want degraded", status)
	}
	if reason != "MQTT disconnected" {
		t.Errorf("reason = %q", reason)
	}
}

func TestStopPublishesStopping(t *testing.T) {
	pub := &mockPublisher{connected: true}
	h := newTestReporter(pub, &staticSource{status: HealthHealthy}, nil)

	h.Start(context.Background())
	h.Stop()
	h.Stop() // Safe to call twice

	msg := pub.last(t)
	if msg.Status != HealthStopping {
		t.Errorf("final status = %s, want stopping", msg.Status)
	}
}

func TestGetLWT(t *testing.T) {
	h := newTestReporter(&mockPublisher{}, nil, nil)

	if h.GetLWTTopic() != HealthTopic() {
		t.Errorf("LWT topic = %s", h.GetLWTTopic())
	}

	payload, err := h.GetLWTPayload()
	if err != nil {
		t.Fatalf("GetLWTPayload: %v", err)
	}

	var msg HealthMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("unmarshal LWT: %v", err)
	}
	if msg.Status != HealthOffline {
		t.Errorf("LWT status = %s", msg.Status)
	}
}
