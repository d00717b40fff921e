package nevoton

import (
	"errors"
	"testing"
)

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "doubled status line preamble",
			input: "HTTP/1.1 200 OK\r\nHTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n{\"inputs\":{}}",
			want:  "{\"inputs\":{}}",
		},
		{
			name:  "trailing garbage after body",
			input: "HTTP/1.0 200 OK\r\n\r\n{\"a\":1}\r\n\x00\x00",
			want:  "{\"a\":1}",
		},
		{
			name:  "nested braces kept intact",
			input: "junk{\"device\":{\"id\":\"7\"}}junk",
			want:  "{\"device\":{\"id\":\"7\"}}",
		},
		{
			name:  "bare body",
			input: "{\"ok\":true}",
			want:  "{\"ok\":true}",
		},
		{
			name:    "no JSON at all",
			input:   "HTTP/1.1 500 Internal Server Error\r\n\r\n",
			wantErr: true,
		},
		{
			name:    "empty response",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractPayload(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrAPIFailure) {
					t.Fatalf("expected ErrAPIFailure, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "clean payload",
			input: `{"inputs":{"data":[]}}`,
		},
		{
			name:  "error_device zero is not a fault",
			input: `{"error_device":0,"outputs":{"error_ch":0}}`,
		},
		{
			name:    "credential rejected",
			input:   `{"error_api":6}`,
			wantErr: ErrInvalidCredential,
		},
		{
			name:    "other api error",
			input:   `{"error_api":3}`,
			wantErr: ErrAPIFailure,
		},
		{
			name:    "unknown api error code stays generic",
			input:   `{"error_api":42}`,
			wantErr: ErrAPIFailure,
		},
		{
			name:    "device fault",
			input:   `{"error_device":2}`,
			wantErr: ErrAPIFailure,
		},
		{
			name:    "non-numeric error_api treated as adverse",
			input:   `{"error_api":"bad"}`,
			wantErr: ErrAPIFailure,
		},
		{
			name:    "malformed JSON",
			input:   `{"inputs":`,
			wantErr: ErrAPIFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := decodePayload(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if data == nil {
				t.Error("expected decoded payload, got nil")
			}
		})
	}
}

func TestExtractSnapshotValues(t *testing.T) {
	full := map[string]any{
		"inputs": map[string]any{
			"data": []any{
				map[string]any{
					"value": map[string]any{
						"Temperature_REAL": float64(78),
						"Heat_switch":      float64(1),
					},
				},
			},
		},
	}

	values := extractSnapshotValues(full)
	if len(values) != 2 {
		t.Fatalf("expected 2 points, got %d", len(values))
	}
	if values["Temperature_REAL"] != float64(78) {
		t.Errorf("Temperature_REAL = %v, want 78", values["Temperature_REAL"])
	}

	// Every level of missing nesting yields an empty map, not an error
	empties := []map[string]any{
		{},
		{"inputs": map[string]any{}},
		{"inputs": map[string]any{"data": []any{}}},
		{"inputs": map[string]any{"data": []any{"not a map"}}},
		{"inputs": map[string]any{"data": []any{map[string]any{}}}},
		{"inputs": map[string]any{"data": []any{map[string]any{"value": "scalar"}}}},
	}
	for i, data := range empties {
		got := extractSnapshotValues(data)
		if got == nil {
			t.Errorf("case %d: got nil, want empty map", i)
		}
		if len(got) != 0 {
			t.Errorf("case %d: got %d entries, want 0", i, len(got))
		}
	}
}

func TestExtractWriteAck(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want bool
	}{
		{
			name: "acknowledged",
			data: map[string]any{"outputs": map[string]any{"error_ch": float64(0)}},
			want: true,
		},
		{
			name: "channel error",
			data: map[string]any{"outputs": map[string]any{"error_ch": float64(3)}},
			want: false,
		},
		{
			name: "missing error_ch",
			data: map[string]any{"outputs": map[string]any{}},
			want: false,
		},
		{
			name: "missing outputs",
			data: map[string]any{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractWriteAck(tt.data); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsInt(t *testing.T) {
	if got := asInt(float64(6)); got != 6 {
		t.Errorf("float64: got %d, want 6", got)
	}
	if got := asInt(6); got != 6 {
		t.Errorf("int: got %d, want 6", got)
	}
	if got := asInt("six"); got != -1 {
		t.Errorf("string: got %d, want -1", got)
	}
	if got := asInt(nil); got != -1 {
		t.Errorf("nil: got %d, want -1", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdefgh", 4); got != "abcd" {
		t.Errorf("got %q", got)
	}
}
