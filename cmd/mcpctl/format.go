package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loykin/mcpctl"
)

// renderRecords writes a record list in the requested format. The default is
// a docker-style table.
func renderRecords(w io.Writer, recs []mcpctl.Record, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return renderTable(w, recs)
	case "json":
		return renderJSON(w, recs)
	case "yaml":
		return renderYAML(w, recs)
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func renderTable(w io.Writer, recs []mcpctl.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "NAME\tSTATUS\tPID\tCREATED\tCOMMAND"); err != nil {
		return err
	}
	for _, r := range recs {
		pid := "-"
		if r.PID > 0 {
			pid = fmt.Sprintf("%d", r.PID)
		}
		cmd := r.Command
		if len(cmd) > 40 {
			cmd = cmd[:37] + "..."
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.Status, pid, humanizeSince(r.Created), cmd); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	// yaml.v3 cannot marshal arbitrary structs with unexported state the way
	// encoding/json tags describe, so round-trip through JSON for stable keys.
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var plain any
	if err := json.Unmarshal(b, &plain); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(plain)
}

// renderInspect writes one server's full detail.
func renderInspect(w io.Writer, res mcpctl.InspectResult, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return renderJSON(w, res)
	case "yaml":
		return renderYAML(w, res)
	}
	r := res.Record
	fmt.Fprintf(w, "Name:         %s\n", r.Name)
	fmt.Fprintf(w, "Status:       %s\n", r.Status)
	fmt.Fprintf(w, "Command:      %s\n", r.Command)
	if r.ConfigFile != "" {
		fmt.Fprintf(w, "Config file:  %s\n", r.ConfigFile)
	}
	if r.PID > 0 {
		fmt.Fprintf(w, "PID:          %d\n", r.PID)
	}
	fmt.Fprintf(w, "Created:      %s\n", r.Created.Format(time.RFC3339))
	if !r.Started.IsZero() {
		fmt.Fprintf(w, "Started:      %s\n", r.Started.Format(time.RFC3339))
	}
	if len(r.Ports) > 0 {
		fmt.Fprintf(w, "Ports:        %s\n", strings.Join(r.Ports, ", "))
	}
	fmt.Fprintf(w, "Log file:     %s\n", res.LogFile)
	if res.Proc != nil {
		fmt.Fprintf(w, "Memory:       %.1f MB\n", float64(res.Proc.RSSBytes)/(1<<20))
		fmt.Fprintf(w, "CPU:          %.1f%%\n", res.Proc.CPUPercent)
		fmt.Fprintf(w, "Threads:      %d\n", res.Proc.NumThreads)
		if res.Proc.Cmdline != "" {
			fmt.Fprintf(w, "Cmdline:      %s\n", res.Proc.Cmdline)
		}
	}
	if r.HealthCheck != "" {
		fmt.Fprintf(w, "Health check: %s\n", r.HealthCheck)
		if res.Health != nil {
			state := "unhealthy"
			if res.Health.Healthy {
				state = "healthy"
			}
			fmt.Fprintf(w, "Health:       %s\n", state)
		}
	}
	return nil
}

// renderEvents writes the lifecycle audit trail as a table.
func renderEvents(w io.Writer, events []mcpctl.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TIME\tTYPE\tNAME\tPID\tSTATUS\tDETAIL"); err != nil {
		return err
	}
	for _, e := range events {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.OccurredAt.Local().Format("2006-01-02 15:04:05"), e.Type, e.Name, e.PID, e.Status, e.Detail); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func humanizeSince(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
