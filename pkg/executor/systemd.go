/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/hostplan/hostplan/pkg/defaults"
)

// ServiceManager drives service unit operations. The systemd implementation
// talks D-Bus; tests substitute a fake.
type ServiceManager interface {
	// StartUnit ensures the unit is running.
	StartUnit(ctx context.Context, unit string) error

	// RestartUnit restarts the unit, starting it if it is not running.
	RestartUnit(ctx context.Context, unit string) error

	// StopUnit stops the unit.
	StopUnit(ctx context.Context, unit string) error

	// Close releases the underlying connection.
	Close() error
}

// NoopManager is a ServiceManager that performs no unit operations. It
// backs dry runs, where the executor reports service operations without
// reaching systemd.
type NoopManager struct{}

// StartUnit implements ServiceManager.
func (NoopManager) StartUnit(context.Context, string) error { return nil }

// RestartUnit implements ServiceManager.
func (NoopManager) RestartUnit(context.Context, string) error { return nil }

// StopUnit implements ServiceManager.
func (NoopManager) StopUnit(context.Context, string) error { return nil }

// Close implements ServiceManager.
func (NoopManager) Close() error { return nil }

// SystemdManager is the ServiceManager backed by the systemd D-Bus API.
type SystemdManager struct {
	conn *dbus.Conn
}

// NewSystemdManager connects to the system bus.
func NewSystemdManager(ctx context.Context) (*SystemdManager, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	return &SystemdManager{conn: conn}, nil
}

// StartUnit implements ServiceManager.
func (m *SystemdManager) StartUnit(ctx context.Context, unit string) error {
	return m.waitJob(ctx, unit, func(ch chan<- string) (int, error) {
		return m.conn.StartUnitContext(ctx, unit, "replace", ch)
	})
}

// RestartUnit implements ServiceManager. The unit is started if it was not
// running ("restart" job mode on a stopped unit starts it).
func (m *SystemdManager) RestartUnit(ctx context.Context, unit string) error {
	return m.waitJob(ctx, unit, func(ch chan<- string) (int, error) {
		return m.conn.RestartUnitContext(ctx, unit, "replace", ch)
	})
}

// StopUnit implements ServiceManager.
func (m *SystemdManager) StopUnit(ctx context.Context, unit string) error {
	return m.waitJob(ctx, unit, func(ch chan<- string) (int, error) {
		return m.conn.StopUnitContext(ctx, unit, "replace", ch)
	})
}

// Close implements ServiceManager.
func (m *SystemdManager) Close() error {
	m.conn.Close()
	return nil
}

// waitJob enqueues a unit job and waits for its terminal result. systemd
// reports "done" for success; everything else is a failure.
func (m *SystemdManager) waitJob(ctx context.Context, unit string, enqueue func(chan<- string) (int, error)) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.UnitJobTimeout)
	defer cancel()

	ch := make(chan string, 1)
	if _, err := enqueue(ch); err != nil {
		return fmt.Errorf("failed to queue job for %s: %w", unit, err)
	}

	select {
	case result := <-ch:
		if result != "done" {
			return fmt.Errorf("unit %s job finished with result %q", unit, result)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("unit %s job did not finish: %w", unit, ctx.Err())
	}
}
