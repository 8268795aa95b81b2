package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/loykin/mcpctl"
)

// command binds the CLI handlers to a lazily-built manager so every
// invocation performs a fresh load-reconcile cycle against the on-disk state.
type command struct {
	flags *GlobalFlags
}

func (c command) manager() (*mcpctl.Manager, error) {
	return mcpctl.New(c.flags.BaseDir, mcpctl.WithLogLevel(c.flags.LogLevel))
}

func (c command) Create(name, cmdStr string, f CreateFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	rec, err := mgr.Create(name, cmdStr, mcpctl.CreateOptions{
		ConfigFile:  f.ConfigFile,
		HealthCheck: f.HealthCheck,
		Ports:       f.Ports,
	}, f.AutoStart)
	if err != nil {
		return err
	}
	fmt.Printf("Server %q created.\n", rec.Name)
	if f.AutoStart {
		fmt.Printf("Server %q started (pid %d).\n", rec.Name, rec.PID)
	}
	return nil
}

func (c command) Ps(f PsFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	recs, err := mgr.List(f.All)
	if err != nil {
		return err
	}
	if len(recs) == 0 && strings.ToLower(f.Format) != "json" && strings.ToLower(f.Format) != "yaml" {
		if f.All {
			fmt.Println("No servers found. Use 'mcpctl create' to create one.")
		} else {
			fmt.Println("No running servers. Use 'mcpctl ps -a' to see all servers.")
		}
		return nil
	}
	return renderRecords(os.Stdout, recs, f.Format)
}

// forEachName runs fn for every server name in order, continuing past
// per-name failures so one bad name does not block the rest. All failures
// come back joined.
func forEachName(names []string, fn func(name string) error) error {
	var errs []error
	for _, name := range names {
		if err := fn(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c command) Start(names []string, f StartFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	return forEachName(names, func(name string) error {
		rec, err := mgr.Start(name, f.Idempotent)
		if err != nil {
			return err
		}
		fmt.Printf("Server %q started (pid %d).\n", rec.Name, rec.PID)
		return nil
	})
}

func (c command) Stop(names []string, f StopFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	return forEachName(names, func(name string) error {
		if _, err := mgr.Stop(name, f.Timeout); err != nil {
			return err
		}
		fmt.Printf("Server %q stopped.\n", name)
		return nil
	})
}

func (c command) Restart(names []string, f RestartFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	return forEachName(names, func(name string) error {
		rec, err := mgr.Restart(name, f.Timeout)
		if err != nil {
			return err
		}
		fmt.Printf("Server %q restarted (pid %d).\n", rec.Name, rec.PID)
		return nil
	})
}

func (c command) Rm(names []string, f RmFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	return forEachName(names, func(name string) error {
		if err := mgr.Remove(name, f.Force, f.KeepLogs); err != nil {
			return err
		}
		fmt.Printf("Server %q removed.\n", name)
		return nil
	})
}

func (c command) Logs(name string, f LogsFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	if f.Clear {
		if err := mgr.ClearLog(name); err != nil {
			return err
		}
		fmt.Printf("Log for %q cleared.\n", name)
		return nil
	}

	grep := strings.ToLower(f.Grep)
	emit := func(line string) error {
		if grep != "" && !strings.Contains(strings.ToLower(line), grep) {
			return nil
		}
		_, err := fmt.Println(line)
		return err
	}

	if f.Follow {
		// Print the trailing lines first, then stream until interrupted.
		lines, err := mgr.Tail(name, f.Tail)
		if err != nil && !mcpctl.IsNotFound(err) {
			return err
		}
		for _, l := range lines {
			if err := emit(l); err != nil {
				return err
			}
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = mgr.Follow(ctx, name, emit)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	lines, err := mgr.Tail(name, f.Tail)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := emit(l); err != nil {
			return err
		}
	}
	return nil
}

func (c command) Inspect(name string, f InspectFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	res, err := mgr.Inspect(context.Background(), name, !f.SkipHealth)
	if err != nil {
		return err
	}
	return renderInspect(os.Stdout, res, f.Format)
}

func (c command) Update(name string, changed flagChanged, f UpdateFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	var opts mcpctl.UpdateOptions
	if changed("command") {
		opts.Command = &f.Command
	}
	if changed("config") {
		opts.ConfigFile = &f.ConfigFile
	}
	if changed("health-check") {
		opts.HealthCheck = &f.HealthCheck
	}
	if changed("port") {
		opts.Ports = &f.Ports
	}
	if _, err := mgr.Update(name, opts); err != nil {
		return err
	}
	fmt.Printf("Server %q updated.\n", name)
	return nil
}

// flagChanged reports whether a named flag was set on the command line, so
// update can distinguish "not given" from "set to empty".
type flagChanged func(name string) bool

func (c command) Backup() error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	path, err := mgr.Backup()
	if err != nil {
		return err
	}
	fmt.Printf("Registry backed up to %s\n", path)
	return nil
}

func (c command) Events(f EventsFlags) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	events, err := mgr.Events(context.Background(), f.Name, f.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events recorded.")
		return nil
	}
	return renderEvents(os.Stdout, events)
}
