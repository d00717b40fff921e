package nevoton

import (
	"testing"
	"time"
)

func TestTopicHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"state", StateTopic("sauna-01"), "graylogic/state/nevoton/sauna-01"},
		{"command", CommandTopic("sauna-01"), "graylogic/command/nevoton/sauna-01"},
		{"ack", AckTopic("sauna-01"), "graylogic/ack/nevoton/sauna-01"},
		{"health", HealthTopic(), "graylogic/health/nevoton"},
		{"command wildcard", CommandSubscribeTopic(), "graylogic/command/nevoton/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestNewAckMessage(t *testing.T) {
	cmd := CommandMessage{
		ID:       "cmd-9",
		DeviceID: "sauna-01",
		Point:    "Heat_switch",
		Value:    1,
	}

	ack := NewAckMessage(cmd, AckApplied)
	if ack.CommandID != "cmd-9" {
		t.Errorf("CommandID = %s", ack.CommandID)
	}
	if ack.DeviceID != "sauna-01" {
		t.Errorf("DeviceID = %s", ack.DeviceID)
	}
	if ack.Point != "Heat_switch" {
		t.Errorf("Point = %s", ack.Point)
	}
	if ack.Protocol != Protocol {
		t.Errorf("Protocol = %s", ack.Protocol)
	}
	if ack.Status != AckApplied {
		t.Errorf("Status = %s", ack.Status)
	}
	if ack.Error != nil {
		t.Errorf("Error = %+v, want nil", ack.Error)
	}
	if ack.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestNewAckError(t *testing.T) {
	cmd := CommandMessage{ID: "cmd-9", DeviceID: "sauna-01", Point: "Heat_switch"}

	ack := NewAckError(cmd, AckFailed, ErrCodeDeviceUnreachable, "dial tcp: refused")
	if ack.Status != AckFailed {
		t.Errorf("Status = %s", ack.Status)
	}
	if ack.Error == nil {
		t.Fatal("Error not set")
	}
	if ack.Error.Code != ErrCodeDeviceUnreachable {
		t.Errorf("Code = %s", ack.Error.Code)
	}
	if ack.Error.Message != "dial tcp: refused" {
		t.Errorf("Message = %s", ack.Error.Message)
	}
}

func TestNewStateMessage(t *testing.T) {
	state := map[string]any{"Temperature_REAL": float64(80)}
	msg := NewStateMessage("sauna-01", state, []string{"Temperature_REAL"})

	if msg.DeviceID != "sauna-01" {
		t.Errorf("DeviceID = %s", msg.DeviceID)
	}
	if msg.Protocol != Protocol {
		t.Errorf("Protocol = %s", msg.Protocol)
	}
	if len(msg.Changed) != 1 {
		t.Errorf("Changed = %v", msg.Changed)
	}
	if msg.State["Temperature_REAL"] != float64(80) {
		t.Errorf("State = %v", msg.State)
	}
	if time.Since(msg.Timestamp) > time.Minute {
		t.Errorf("Timestamp = %v", msg.Timestamp)
	}
}

func TestNewLWTMessage(t *testing.T) {
	msg := NewLWTMessage("nevoton-sauna")
	if msg.Bridge != "nevoton-sauna" {
		t.Errorf("Bridge = %s", msg.Bridge)
	}
	if msg.Status != HealthOffline {
		t.Errorf("Status = %s", msg.Status)
	}
	if msg.Reason != "unexpected_disconnect" {
		t.Errorf("Reason = %s", msg.Reason)
	}
}
