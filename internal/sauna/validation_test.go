package sauna

import (
	"errors"
	"testing"
)

func TestValidateWrite(t *testing.T) {
	tests := []struct {
		name      string
		point     string
		value     float64
		want      int
		wantErr   error
	}{
		{
			name:  "switch on",
			point: PointHeat,
			value: 1,
			want:  1,
		},
		{
			name:  "switch off",
			point: PointMainPower,
			value: 0,
			want:  0,
		},
		{
			name:  "temperature setpoint in range",
			point: PointTemperatureSet,
			value: 80,
			want:  80,
		},
		{
			name:  "fractional value truncated before range check",
			point: PointTemperatureSet,
			value: 80.9,
			want:  80,
		},
		{
			name:    "temperature below minimum",
			point:   PointTemperatureSet,
			value:   39,
			wantErr: ErrValueOutOfRange,
		},
		{
			name:    "temperature above maximum",
			point:   PointTemperatureSet,
			value:   126,
			wantErr: ErrValueOutOfRange,
		},
		{
			name:  "humidity setpoint boundary",
			point: PointHumiditySet,
			value: 95,
			want:  95,
		},
		{
			name:    "humidity below minimum",
			point:   PointHumiditySet,
			value:   9,
			wantErr: ErrValueOutOfRange,
		},
		{
			name:  "dimmer maximum step",
			point: PointLightDimmer,
			value: 6,
			want:  6,
		},
		{
			name:    "dimmer past maximum",
			point:   PointLightDimmer,
			value:   7,
			wantErr: ErrValueOutOfRange,
		},
		{
			name:    "switch value out of range",
			point:   PointFan,
			value:   2,
			wantErr: ErrValueOutOfRange,
		},
		{
			name:    "read-only sensor",
			point:   PointTemperatureReal,
			value:   50,
			wantErr: ErrPointReadOnly,
		},
		{
			name:    "status is read-only",
			point:   PointStatus,
			value:   1,
			wantErr: ErrPointReadOnly,
		},
		{
			name:    "unknown point",
			point:   "Sauna_afterburner",
			value:   1,
			wantErr: ErrUnknownPoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateWrite(tt.point, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateWrite() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateWrite() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ValidateWrite() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLookupPoint(t *testing.T) {
	spec, ok := LookupPoint(PointLightDimmer)
	if !ok {
		t.Fatal("LookupPoint() did not find light dimmer")
	}
	if spec.Kind != KindDimmer {
		t.Errorf("Kind = %q, want %q", spec.Kind, KindDimmer)
	}
	if spec.Max != LightDimmerMax {
		t.Errorf("Max = %d, want %d", spec.Max, LightDimmerMax)
	}

	if _, ok := LookupPoint("nope"); ok {
		t.Error("LookupPoint() found nonexistent point")
	}
}

func TestWritablePoints(t *testing.T) {
	for _, spec := range WritablePoints() {
		if !spec.Writable {
			t.Errorf("WritablePoints() returned read-only point %q", spec.Name)
		}
	}

	// The two _REAL sensors, the two _REAL timers, and Status are read-only.
	wantWritable := len(Points()) - 5
	if got := len(WritablePoints()); got != wantWritable {
		t.Errorf("WritablePoints() count = %d, want %d", got, wantWritable)
	}
}
