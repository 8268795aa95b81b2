package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/loykin/mcpctl"
)

func sampleRecords() []mcpctl.Record {
	created := time.Now().Add(-2 * time.Hour)
	return []mcpctl.Record{
		{
			Name:    "web",
			Command: "python app.py",
			PID:     4321,
			Status:  mcpctl.StatusRunning,
			Created: created,
			Ports:   []string{"8080:80"},
		},
		{
			Name:    "worker",
			Command: strings.Repeat("x", 60),
			Status:  mcpctl.StatusStopped,
			Created: created.Add(time.Minute),
			Ports:   []string{},
		},
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := renderRecords(&buf, sampleRecords(), "table"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "STATUS") {
		t.Fatalf("header missing: %q", out)
	}
	if !strings.Contains(out, "web") || !strings.Contains(out, "4321") {
		t.Fatalf("row missing: %q", out)
	}
	if !strings.Contains(out, "2 hours ago") {
		t.Fatalf("humanized age missing: %q", out)
	}
	// A stopped record shows a dash for the PID and a truncated command.
	if !strings.Contains(out, "-") || !strings.Contains(out, "...") {
		t.Fatalf("stopped row not rendered: %q", out)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderRecords(&buf, sampleRecords(), "json"); err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded []mcpctl.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || decoded[0].Name != "web" {
		t.Fatalf("content lost: %+v", decoded)
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := renderRecords(&buf, sampleRecords(), "yaml"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "name: web") || !strings.Contains(out, "status: running") {
		t.Fatalf("yaml keys missing: %q", out)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := renderRecords(&buf, nil, "xml"); err == nil {
		t.Fatalf("unknown format should error")
	}
}

func TestRenderInspectText(t *testing.T) {
	res := mcpctl.InspectResult{
		Record: mcpctl.Record{
			Name:        "web",
			Command:     "python app.py",
			PID:         4321,
			Status:      mcpctl.StatusRunning,
			Created:     time.Now(),
			Started:     time.Now(),
			Ports:       []string{"8080:80"},
			HealthCheck: "curl -fs localhost/health",
		},
		LogFile: "/tmp/logs/web.log",
		Proc:    &mcpctl.ProcInfo{PID: 4321, RSSBytes: 32 << 20, CPUPercent: 1.5, NumThreads: 7, Cmdline: "python app.py"},
		Health:  &mcpctl.HealthResult{Healthy: true, Output: "ok"},
	}
	var buf bytes.Buffer
	if err := renderInspect(&buf, res, "text"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Name:         web",
		"Status:       running",
		"PID:          4321",
		"Ports:        8080:80",
		"Log file:     /tmp/logs/web.log",
		"Memory:       32.0 MB",
		"Threads:      7",
		"Health:       healthy",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("line %q missing from:\n%s", want, out)
		}
	}
}

func TestRenderInspectJSON(t *testing.T) {
	res := mcpctl.InspectResult{
		Record:  mcpctl.Record{Name: "web", Status: mcpctl.StatusStopped},
		LogFile: "/tmp/logs/web.log",
	}
	var buf bytes.Buffer
	if err := renderInspect(&buf, res, "json"); err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded mcpctl.InspectResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Record.Name != "web" || decoded.LogFile != "/tmp/logs/web.log" {
		t.Fatalf("content lost: %+v", decoded)
	}
	if decoded.Proc != nil || decoded.Health != nil {
		t.Fatalf("empty sections should stay nil")
	}
}

func TestRenderEvents(t *testing.T) {
	events := []mcpctl.Event{
		{Type: mcpctl.EventStarted, OccurredAt: time.Now(), Name: "web", PID: 42, Status: "running"},
		{Type: mcpctl.EventFailed, OccurredAt: time.Now(), Name: "web", Status: "error", Detail: "exit 3"},
	}
	var buf bytes.Buffer
	if err := renderEvents(&buf, events); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "started") || !strings.Contains(out, "exit 3") {
		t.Fatalf("rows missing: %q", out)
	}
}

func TestHumanizeSince(t *testing.T) {
	now := time.Now()
	cases := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "-"},
		{now.Add(-30 * time.Second), "30 seconds ago"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-49 * time.Hour), "2 days ago"},
	}
	for _, c := range cases {
		if got := humanizeSince(c.t); got != c.want {
			t.Fatalf("humanizeSince(%v) = %q, want %q", c.t, got, c.want)
		}
	}
}
