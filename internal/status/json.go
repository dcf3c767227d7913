package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/light"
	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Node          string       `json:"node"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Climate       ClimateJSON  `json:"climate"`
	Actuators     ActuatorJSON `json:"actuators"`
	Light         LightJSON    `json:"light"`
	Upload        UploadJSON   `json:"upload"`
	Feed          FeedStatus   `json:"feed"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ClimateJSON carries the last conditioned reading. Unavailable values are null.
type ClimateJSON struct {
	TempC       *float64 `json:"temp_c"`
	TempF       *float64 `json:"temp_f"`
	HumidityPct *float64 `json:"humidity_pct"`
	DewPointC   *float64 `json:"dew_point_c"`
	DewPointF   *float64 `json:"dew_point_f"`
	PCBC        *float64 `json:"pcb_c"`
	PCBF        *float64 `json:"pcb_f"`
	Corrosion   string   `json:"corrosion"`
	LevelValid  bool     `json:"level_valid"`
}

// ActuatorJSON reports fan, heater and backlight state.
type ActuatorJSON struct {
	Fan        bool    `json:"fan"`
	Heater     bool    `json:"heater"`
	Brightness float64 `json:"brightness"`
}

// LightJSON reports the ambient light tracker.
type LightJSON struct {
	Raw        float64 `json:"raw"`
	Baseline   float64 `json:"baseline"`
	Normalized float64 `json:"normalized"`
	Lux        float64 `json:"lux"`
	Gesture    bool    `json:"gesture"`
}

// UploadJSON reports upload cadence progress.
type UploadJSON struct {
	Count       int    `json:"count"`
	LastUpload  string `json:"last_upload,omitempty"`
	LastRefresh string `json:"last_refresh,omitempty"`
}

// FeedStatus reports broker connection state.
type FeedStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64   `json:"poll_ms"`
	Broker           string  `json:"broker"`
	HTTPPort         string  `json:"http_port"`
	UploadPeriodMin  int     `json:"upload_period_min"`
	UploadOffsetMin  int     `json:"upload_offset_min"`
	FanThresholdF    float64 `json:"fan_threshold_f"`
	GestureThreshold float64 `json:"gesture_threshold"`
}

func nullable(n logic.NullFloat) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	r := snap.Climate
	return StatusInner{
		Node:          snap.Config.Node,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Climate: ClimateJSON{
			TempC:       nullable(r.TempC),
			TempF:       nullable(r.TempF),
			HumidityPct: nullable(r.HumidityPct),
			DewPointC:   nullable(r.DewPointC),
			DewPointF:   nullable(r.DewPointF),
			PCBC:        nullable(snap.PCBC),
			PCBF:        nullable(logic.FahrenheitOf(snap.PCBC)),
			Corrosion:   r.Level.String(),
			LevelValid:  r.LevelValid,
		},
		Actuators: ActuatorJSON{
			Fan:        snap.FanOn,
			Heater:     snap.HeaterOn,
			Brightness: snap.Brightness,
		},
		Light: LightJSON{
			Raw:        snap.LightRaw,
			Baseline:   snap.LightBaseline,
			Normalized: light.Normalized(snap.LightRaw),
			Lux:        light.Lux(snap.LightRaw),
			Gesture:    snap.GestureActive,
		},
		Upload: UploadJSON{
			Count:       snap.Uploads,
			LastUpload:  formatTime(snap.LastUpload),
			LastRefresh: formatTime(snap.LastRefresh),
		},
		Feed: FeedStatus{Connected: snap.FeedConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			Broker:           snap.Config.Broker,
			HTTPPort:         snap.Config.HTTPPort,
			UploadPeriodMin:  snap.Config.UploadPeriodMin,
			UploadOffsetMin:  snap.Config.UploadOffsetMin,
			FanThresholdF:    snap.Config.FanThresholdF,
			GestureThreshold: snap.Config.GestureThreshold,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for a lifecycle event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
