package main

import "time"

// Flag structs to decouple cobra from logic for testing.

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	BaseDir  string // state directory, defaults to ~/.mcp
	LogLevel string // overrides the configured diagnostics level
}

type CreateFlags struct {
	ConfigFile  string
	HealthCheck string
	Ports       []string
	AutoStart   bool
}

type PsFlags struct {
	All    bool
	Format string
}

type StartFlags struct {
	Idempotent bool
}

type StopFlags struct {
	Timeout time.Duration
}

type RestartFlags struct {
	Timeout time.Duration
}

type RmFlags struct {
	Force    bool
	KeepLogs bool
}

type LogsFlags struct {
	Tail   int
	Follow bool
	Clear  bool
	Grep   string
}

type InspectFlags struct {
	Format     string
	SkipHealth bool
}

type UpdateFlags struct {
	Command     string
	ConfigFile  string
	HealthCheck string
	Ports       []string
}

type EventsFlags struct {
	Name  string
	Limit int
}
