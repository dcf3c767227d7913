package logic

// Sensor limits applied before rounding.
const (
	MinTempC = -40.0
	MaxTempC = 125.0
)

// Corrosion decision margins (°C above dew point) and humidity ceiling.
const (
	AlertMarginC     = 2.0
	WarningMarginC   = 5.0
	AlertHumidityPct = 80.0
)

// ClimateModel conditions raw temperature/humidity samples and derives the
// dew point, corrosion level and sensor heater state.
//
// Level and heater state persist across reads whose inputs are incomplete.
type ClimateModel struct {
	last       Reading
	heaterOn   bool
	prevHeater bool
}

// NewClimateModel returns a model starting at CorrosionNormal with the
// heater off.
func NewClimateModel() *ClimateModel {
	return &ClimateModel{}
}

// Update conditions one raw sample and returns the resulting reading.
func (m *ClimateModel) Update(raw RawClimate) Reading {
	r := Reading{Level: m.last.Level}

	if raw.TempC.Valid {
		r.TempC = Some(Round1(Clamp(raw.TempC.Float64, MinTempC, MaxTempC)))
		r.TempF = FahrenheitOf(r.TempC)
	}
	if raw.HumidityPct.Valid {
		r.HumidityPct = Some(Round1(Clamp(raw.HumidityPct.Float64, 0, 100)))
	}

	if r.TempC.Valid && r.HumidityPct.Valid {
		r.DewPointC = Some(DewPoint(r.TempC.Float64, r.HumidityPct.Float64))
		r.DewPointF = FahrenheitOf(r.DewPointC)

		r.Level = ClassifyCorrosion(r.TempC.Float64, r.DewPointC.Float64, r.HumidityPct.Float64)
		r.LevelValid = true
		m.heaterOn = r.Level == CorrosionAlert
	}

	m.last = r
	return r
}

// ClassifyCorrosion decides the corrosion level from temperature, dew point
// and relative humidity.
func ClassifyCorrosion(tempC, dewPointC, humidityPct float64) CorrosionLevel {
	switch {
	case tempC <= dewPointC+AlertMarginC || humidityPct >= AlertHumidityPct:
		return CorrosionAlert
	case tempC <= dewPointC+WarningMarginC:
		return CorrosionWarning
	default:
		return CorrosionNormal
	}
}

// HeaterOn reports the heater state decided by the latest complete reading.
func (m *ClimateModel) HeaterOn() bool {
	return m.heaterOn
}

// HeaterChanged reports whether the heater state differs from the value
// latched by the previous call, and latches the current state. It returns
// true at most once per edge.
func (m *ClimateModel) HeaterChanged() bool {
	changed := m.heaterOn != m.prevHeater
	m.prevHeater = m.heaterOn
	return changed
}
