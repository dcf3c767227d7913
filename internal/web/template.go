package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/logic"
	"github.com/sweeney/corrosion-monitor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"fahrenheit": func(c logic.NullFloat) string {
		return logic.FahrenheitOf(c).String()
	},
	"levelClass": func(l logic.CorrosionLevel) string {
		switch l {
		case logic.CorrosionAlert:
			return "alert"
		case logic.CorrosionWarning:
			return "warning"
		}
		return "normal"
	},
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
	"timeOrNever": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Corrosion Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.normal { color: green; font-weight: bold; }
.warning { color: orange; font-weight: bold; }
.alert { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Corrosion Monitor{{if .Config.Node}} ({{.Config.Node}}){{end}}<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Climate</h2>
<table>
<tr><th>Status</th><td id="corrosion" class="{{levelClass .Climate.Level}}">{{.Climate.Level}}</td></tr>
<tr><th>Temperature</th><td id="temp">{{.Climate.TempF}}°F / {{.Climate.TempC}}°C</td></tr>
<tr><th>Humidity</th><td id="humidity">{{.Climate.HumidityPct}}%</td></tr>
<tr><th>Dew point</th><td id="dewpoint">{{.Climate.DewPointF}}°F / {{.Climate.DewPointC}}°C</td></tr>
<tr><th>PCB</th><td id="pcb">{{fahrenheit .PCBC}}°F</td></tr>
<tr><th>Ready</th><td id="ready">{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Actuators</h2>
<table>
<tr><th>Fan</th><td id="fan">{{onOff .FanOn}}</td></tr>
<tr><th>Sensor heater</th><td id="heater">{{onOff .HeaterOn}}</td></tr>
<tr><th>Backlight</th><td id="brightness">{{printf "%.3f" .Brightness}}</td></tr>
<tr><th>Gesture</th><td id="gesture">{{if .GestureActive}}active{{else}}idle{{end}}</td></tr>
<tr><th>Light</th><td id="light">{{printf "%.0f" .LightRaw}} / {{printf "%.0f" .LightBaseline}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Feed</th><td class="{{if .FeedConnected}}connected{{else}}disconnected{{end}}">{{if .FeedConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Uploads</th><td id="uploads">{{.Uploads}}</td></tr>
<tr><th>Last upload</th><td id="last-upload">{{timeOrNever .LastUpload}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Upload cadence</th><td>every {{.Config.UploadPeriodMin}}m at +{{.Config.UploadOffsetMin}}m</td></tr>
<tr><th>Fan threshold</th><td>{{.Config.FanThresholdF}}°F</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }
  function fmt(v) { return v === null ? "None" : v.toFixed(1); }
  function set(id, text) { document.getElementById(id).textContent = text; }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        var c = s.climate;
        var el = document.getElementById("corrosion");
        el.textContent = c.corrosion;
        el.className = c.corrosion === "CORROSION ALERT" ? "alert" : c.corrosion === "CORROSION WARNING" ? "warning" : "normal";
        set("temp", fmt(c.temp_f) + "°F / " + fmt(c.temp_c) + "°C");
        set("humidity", fmt(c.humidity_pct) + "%");
        set("dewpoint", fmt(c.dew_point_f) + "°F / " + fmt(c.dew_point_c) + "°C");
        set("pcb", fmt(c.pcb_f) + "°F");
        set("ready", s.ready ? "yes" : "no");
        set("fan", s.actuators.fan ? "ON" : "OFF");
        set("heater", s.actuators.heater ? "ON" : "OFF");
        set("brightness", s.actuators.brightness.toFixed(3));
        set("gesture", s.light.gesture ? "active" : "idle");
        set("light", s.light.raw.toFixed(0) + " / " + s.light.baseline.toFixed(0));
        set("uploads", s.upload.count);
        set("last-upload", s.upload.last_upload || "never");
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
