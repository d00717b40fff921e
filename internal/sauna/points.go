package sauna

// Point names used by the controller's "specific" channel API.
//
// Switches accept 0/1. The _REAL sensor and timer points are read-only
// measurements; their _SET counterparts are writable setpoints.
const (
	PointMainPower       = "MainPower_switch"
	PointHeat            = "Heat_switch"
	PointHumidity        = "Humidity_switch"
	PointFan             = "Fan_switch"
	PointLight           = "Light_switch"
	PointTimerOffsetBox  = "TimerOffset_checkbox"
	PointTimerOffsetSet  = "TimerOffset_time_SET"
	PointTimerOffsetReal = "TimerOffset_time_REAL"
	PointTimeHeatSet     = "TimeHeat_SET"
	PointTimeHeatReal    = "TimeHeat_REAL"
	PointTemperatureSet  = "Temperature_SET"
	PointTemperatureReal = "Temperature_REAL"
	PointHumiditySet     = "Humidity_SET"
	PointHumidityReal    = "Humidity_REAL"
	PointLightDimmer     = "Light_dimmer"
	PointStatus          = "Status"
)

// Device limits.
const (
	TempMin        = 40
	TempMax        = 125
	HumidityMin    = 10
	HumidityMax    = 95
	LightDimmerMax = 6

	// maxTimerMinutes bounds timer setpoints; the controller stores
	// timers as minute counts and rejects anything past 24 hours.
	maxTimerMinutes = 1440
)

// PointKind classifies a device point for display and validation.
type PointKind string

const (
	// KindSwitch is an on/off control reported as 0 or 1.
	KindSwitch PointKind = "switch"

	// KindSensor is a read-only measurement.
	KindSensor PointKind = "sensor"

	// KindSetpoint is a writable target value with device-enforced limits.
	KindSetpoint PointKind = "setpoint"

	// KindTimer is a minute-count timer value.
	KindTimer PointKind = "timer"

	// KindDimmer is a stepped level control.
	KindDimmer PointKind = "dimmer"

	// KindStatus is the controller's internal status word.
	KindStatus PointKind = "status"
)

// PointSpec describes one named device point.
type PointSpec struct {
	// Name is the device's parameter name, sent verbatim on writes.
	Name string

	// Kind classifies the point.
	Kind PointKind

	// Writable reports whether the point accepts writes.
	Writable bool

	// Min and Max bound writable values (inclusive). Ignored when
	// Writable is false.
	Min int
	Max int

	// Unit is the display unit, empty when dimensionless.
	Unit string
}

// registry lists every point the controller exposes.
var registry = map[string]PointSpec{
	PointMainPower:       {Name: PointMainPower, Kind: KindSwitch, Writable: true, Min: 0, Max: 1},
	PointHeat:            {Name: PointHeat, Kind: KindSwitch, Writable: true, Min: 0, Max: 1},
	PointHumidity:        {Name: PointHumidity, Kind: KindSwitch, Writable: true, Min: 0, Max: 1},
	PointFan:             {Name: PointFan, Kind: KindSwitch, Writable: true, Min: 0, Max: 1},
	PointLight:           {Name: PointLight, Kind: KindSwitch, Writable: true, Min: 0, Max: 1},
	PointTimerOffsetBox:  {Name: PointTimerOffsetBox, Kind: KindSwitch, Writable: true, Min: 0, Max: 1},
	PointTimerOffsetSet:  {Name: PointTimerOffsetSet, Kind: KindTimer, Writable: true, Min: 0, Max: maxTimerMinutes, Unit: "min"},
	PointTimerOffsetReal: {Name: PointTimerOffsetReal, Kind: KindTimer, Unit: "min"},
	PointTimeHeatSet:     {Name: PointTimeHeatSet, Kind: KindTimer, Writable: true, Min: 0, Max: maxTimerMinutes, Unit: "min"},
	PointTimeHeatReal:    {Name: PointTimeHeatReal, Kind: KindTimer, Unit: "min"},
	PointTemperatureSet:  {Name: PointTemperatureSet, Kind: KindSetpoint, Writable: true, Min: TempMin, Max: TempMax, Unit: "°C"},
	PointTemperatureReal: {Name: PointTemperatureReal, Kind: KindSensor, Unit: "°C"},
	PointHumiditySet:     {Name: PointHumiditySet, Kind: KindSetpoint, Writable: true, Min: HumidityMin, Max: HumidityMax, Unit: "%"},
	PointHumidityReal:    {Name: PointHumidityReal, Kind: KindSensor, Unit: "%"},
	PointLightDimmer:     {Name: PointLightDimmer, Kind: KindDimmer, Writable: true, Min: 0, Max: LightDimmerMax},
	PointStatus:          {Name: PointStatus, Kind: KindStatus},
}

// LookupPoint returns the spec for a named point.
func LookupPoint(name string) (PointSpec, bool) {
	spec, ok := registry[name]
	return spec, ok
}

// Points returns specs for every known point. The returned slice is a
// copy; ordering is not guaranteed.
func Points() []PointSpec {
	specs := make([]PointSpec, 0, len(registry))
	for _, spec := range registry {
		specs = append(specs, spec)
	}
	return specs
}

// WritablePoints returns specs for every point that accepts writes.
func WritablePoints() []PointSpec {
	specs := make([]PointSpec, 0, len(registry))
	for _, spec := range registry {
		if spec.Writable {
			specs = append(specs, spec)
		}
	}
	return specs
}
