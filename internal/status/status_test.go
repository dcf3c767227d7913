package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Node: "shop", PollMs: 100, Broker: "tls://io.adafruit.com:8883", HTTPPort: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 100 {
		t.Errorf("Config.PollMs: got %d, want 100", snap.Config.PollMs)
	}
	if snap.Config.HTTPPort != ":80" {
		t.Errorf("Config.HTTPPort: got %q, want %q", snap.Config.HTTPPort, ":80")
	}
	if snap.Ready {
		t.Error("expected Ready=false initially")
	}
	if snap.FeedConnected {
		t.Error("expected FeedConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(Readings{
		Climate: logic.Reading{TempC: logic.Some(22.2), Level: logic.CorrosionWarning},
		PCBC:    logic.Some(26.7),
		FanOn:   true,
		Uploads: 3,
		Ready:   true,
	})

	snap := tr.Snapshot()
	if snap.Climate.TempC != logic.Some(22.2) {
		t.Errorf("TempC: got %v, want 22.2", snap.Climate.TempC)
	}
	if snap.Climate.Level != logic.CorrosionWarning {
		t.Errorf("Level: got %v, want WARNING", snap.Climate.Level)
	}
	if !snap.FanOn || !snap.Ready {
		t.Errorf("expected FanOn and Ready, got %v %v", snap.FanOn, snap.Ready)
	}
	if snap.Uploads != 3 {
		t.Errorf("Uploads: got %d, want 3", snap.Uploads)
	}
}

func TestSetFeedConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetFeedConnected(true)
	if !tr.Snapshot().FeedConnected {
		t.Error("expected FeedConnected=true")
	}

	tr.SetFeedConnected(false)
	if tr.Snapshot().FeedConnected {
		t.Error("expected FeedConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	net := &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"}
	tr.SetNetwork(net)

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(Readings{FanOn: true})

	snap1 := tr.Snapshot()

	tr.Update(Readings{FanOn: false})

	if !snap1.FanOn {
		t.Error("snapshot should be a copy; FanOn was modified")
	}
}

func TestSubscribeNotifiesOnUpdate(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	ch := tr.Subscribe()

	tr.Update(Readings{Uploads: 1})
	tr.Update(Readings{Uploads: 2})

	select {
	case <-ch:
	default:
		t.Fatal("expected a notification")
	}
	select {
	case <-ch:
		t.Error("notifications should coalesce")
	default:
	}

	tr.Unsubscribe(ch)
	tr.Update(Readings{Uploads: 3})
	select {
	case <-ch:
		t.Error("unsubscribed channel should not be notified")
	default:
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Readings: Readings{
			Climate: logic.Reading{
				TempC:       logic.Some(22.2),
				TempF:       logic.Some(72),
				HumidityPct: logic.Some(55),
				DewPointC:   logic.Some(12.7),
				DewPointF:   logic.Some(54.9),
				Level:       logic.CorrosionNormal,
				LevelValid:  true,
			},
			PCBC:        logic.Some(25),
			FanOn:       false,
			Brightness:  0.255,
			Uploads:     2,
			LastUpload:  start.Add(5 * time.Minute),
			LastRefresh: start.Add(15 * time.Minute),
			Ready:       true,
		},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		FeedConnected: true,
		Config:        Config{Node: "shop", PollMs: 100, Broker: "tls://io.adafruit.com:8883", HTTPPort: ":80"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Node != "shop" {
		t.Errorf("Node: got %q, want shop", s.Node)
	}
	if !s.Ready {
		t.Error("expected Ready=true")
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if s.Climate.TempF == nil || *s.Climate.TempF != 72 {
		t.Errorf("TempF: got %v, want 72", s.Climate.TempF)
	}
	if s.Climate.PCBF == nil || *s.Climate.PCBF != 77 {
		t.Errorf("PCBF: got %v, want 77", s.Climate.PCBF)
	}
	if s.Climate.Corrosion != "NORMAL" {
		t.Errorf("Corrosion: got %q, want NORMAL", s.Climate.Corrosion)
	}
	if !s.Feed.Connected {
		t.Error("expected Feed.Connected=true")
	}
	if s.Upload.Count != 2 || s.Upload.LastUpload != "2026-01-01T00:05:00Z" {
		t.Errorf("Upload: got %+v", s.Upload)
	}
	// Event and Reason should be omitted
	if s.Event != "" {
		t.Errorf("expected empty Event for web format, got %q", s.Event)
	}
	if s.Reason != "" {
		t.Errorf("expected empty Reason for web format, got %q", s.Reason)
	}
}

func TestFormatJSONUnavailableValuesAreNull(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	climate := raw["status"].(map[string]interface{})["climate"].(map[string]interface{})
	for _, key := range []string{"temp_c", "humidity_pct", "dew_point_f", "pcb_f"} {
		v, exists := climate[key]
		if !exists {
			t.Errorf("%s should be present", key)
		}
		if v != nil {
			t.Errorf("%s: got %v, want null", key, v)
		}
	}

	upload := raw["status"].(map[string]interface{})["upload"].(map[string]interface{})
	if _, exists := upload["last_upload"]; exists {
		t.Error("last_upload should be omitted before the first upload")
	}
}

func TestFormatJSONLight(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Readings: Readings{
			LightRaw:      logic.FullScale / 2,
			LightBaseline: 30000,
			GestureActive: true,
		},
		StartTime: start,
		Now:       start,
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	l := parsed.Status.Light
	if l.Baseline != 30000 || !l.Gesture {
		t.Errorf("light: got %+v", l)
	}
	if l.Normalized != 0.5 {
		t.Errorf("Normalized: got %v, want 0.5", l.Normalized)
	}
	if l.Lux != 550 {
		t.Errorf("Lux: got %v, want 550", l.Lux)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Readings:      Readings{Ready: true, Climate: logic.Reading{Level: logic.CorrosionAlert}},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		FeedConnected: true,
		Config:        Config{PollMs: 100, Broker: "tls://io.adafruit.com:8883"},
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "STARTUP" {
		t.Errorf("Event: got %q, want STARTUP", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("Reason: got %q, want empty", parsed.Status.Reason)
	}
	if parsed.Status.Climate.Corrosion != "CORROSION ALERT" {
		t.Errorf("Corrosion: got %q", parsed.Status.Climate.Corrosion)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	json.Unmarshal(data, &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", parsed.Status.Network.IP)
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	sub := tr.Subscribe()
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(Readings{Uploads: i})
			tr.SetFeedConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
			select {
			case <-sub:
			default:
			}
		}
	}()

	wg.Wait()
}
