package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/prayerlock/internal/status"
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
	"orDash": func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Prayer Lock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: red; font-weight: bold; }
.inactive { color: green; }
.warn { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Prayer Lock</h1>

<h2>Blocking</h2>
<table>
<tr><th>Enforcement</th><td class="{{if .BlockActive}}active{{else}}inactive{{end}}">{{if .BlockActive}}ACTIVE{{else}}off{{end}}</td></tr>
<tr><th>Target</th><td>{{orDash (printf "%s" .Target)}}</td></tr>
<tr><th>Next wake</th><td>{{if .NextWake}}{{.NextWake.UTC.Format "2006-01-02T15:04:05Z"}}{{else}}—{{end}}</td></tr>
<tr><th>Authorized</th><td class="{{if .Authorized}}inactive{{else}}warn{{end}}">{{if .Authorized}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Reconciliation</h2>
<table>
<tr><th>Passes</th><td>{{.Counts.Reconciles}}</td></tr>
<tr><th>Activations</th><td>{{.Counts.Activations}}</td></tr>
<tr><th>Releases</th><td>{{.Counts.Releases}}</td></tr>
<tr><th>Last trigger</th><td>{{orDash .LastTrigger}}</td></tr>
<tr><th>Last error</th><td>{{orDash .LastError}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Timer</th><td>{{.Config.TimerSec}}s</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMin 0}}disabled{{else}}{{.Config.HeartbeatMin}}m{{end}}</td></tr>
<tr><th>Store</th><td>{{.Config.DBPath}}</td></tr>
<tr><th>Timezone</th><td>{{.Config.Timezone}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
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
