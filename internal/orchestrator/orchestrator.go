// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator invokes the container CLI on behalf of power
// actions (start/stop/restart) and cross-checks the result against the
// host process table, adapting a long-lived subprocess supervision
// pattern to bounded one-shot compose invocations.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/fleetops/dockside/internal/events"
)

// Action is a power action requested against a service.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
)

func (a Action) composeVerb() (string, error) {
	switch a {
	case ActionStart:
		return "up", nil
	case ActionStop:
		return "down", nil
	case ActionRestart:
		return "restart", nil
	default:
		return "", fmt.Errorf("unknown action %q", a)
	}
}

// defaultTimeout bounds a single compose invocation.
const defaultTimeout = 2 * time.Minute

// ManifestResolver resolves a validated service name to its manifest
// and env file paths (implemented by the compose enumerator).
type ManifestResolver interface {
	ManifestPath(service string) (string, error)
	EnvPath(service string) (string, error)
}

// Orchestrator runs docker compose commands per service and guards
// against two power actions racing on the same service.
type Orchestrator struct {
	resolver ManifestResolver
	bus      *events.Bus
	timeout  time.Duration

	mu      sync.Mutex
	inFlight map[string]Action
}

// New creates an Orchestrator.
func New(resolver ManifestResolver, bus *events.Bus) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		bus:      bus,
		timeout:  defaultTimeout,
		inFlight: make(map[string]Action),
	}
}

// ErrActionInProgress is returned when a power action is already
// running for the given service.
type ErrActionInProgress struct {
	Service string
	Action  Action
}

func (e *ErrActionInProgress) Error() string {
	return fmt.Sprintf("service %q already has a %q action in progress", e.Service, e.Action)
}

// Perform runs action against service, guarding against a concurrent
// action on the same service. It blocks until the subprocess exits (or
// the context/timeout fires) and publishes a power-action event either
// way.
func (o *Orchestrator) Perform(ctx context.Context, service string, action Action) error {
	if err := o.acquire(service, action); err != nil {
		return err
	}
	defer o.release(service)

	o.publish(events.TypeServicePowerStart, service, action, nil)

	err := o.run(ctx, service, action)
	if err != nil {
		o.publish(events.TypeServicePowerFailed, service, action, err)
		return err
	}
	o.publish(events.TypeServicePowerStop, service, action, nil)
	return nil
}

func (o *Orchestrator) acquire(service string, action Action) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if existing, busy := o.inFlight[service]; busy {
		return &ErrActionInProgress{Service: service, Action: existing}
	}
	o.inFlight[service] = action
	return nil
}

func (o *Orchestrator) release(service string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, service)
}

func (o *Orchestrator) run(ctx context.Context, service string, action Action) error {
	verb, err := action.composeVerb()
	if err != nil {
		return err
	}
	manifest, err := o.resolver.ManifestPath(service)
	if err != nil {
		return err
	}
	envPath, err := o.resolver.EnvPath(service)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	args := []string{"compose", "-f", manifest, "--env-file", envPath, verb}
	if verb == "up" {
		args = append(args, "-d")
	}
	cmd := exec.CommandContext(runCtx, "docker", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker %s: %w: %s", verb, err, stderr.String())
	}
	return nil
}

func (o *Orchestrator) publish(eventType, service string, action Action, err error) {
	if o.bus == nil {
		return
	}
	payload := map[string]interface{}{"action": string(action)}
	if err != nil {
		payload["error"] = err.Error()
	}
	_ = o.bus.Publish(events.Event{Type: eventType, Service: service, Payload: payload})
}

type composePsEntry struct {
	ID    string `json:"ID"`
	State string `json:"State"`
}

// Status reports "Up" if `docker compose ps` lists at least one running
// container for service whose reported PID is still alive on the host
// (a running container whose PID cannot be resolved counts as alive; see
// liveOnHost), "Down" otherwise. A compose invocation failure (e.g. no containers
// ever created) is treated as "Down" rather than an error, matching the
// two-value Up/Down status shape callers expect.
func (o *Orchestrator) Status(ctx context.Context, service string) (string, error) {
	manifest, err := o.resolver.ManifestPath(service)
	if err != nil {
		return "", err
	}
	envPath, err := o.resolver.EnvPath(service)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "docker", "compose", "-f", manifest, "--env-file", envPath, "ps", "--format", "json")
	out, err := cmd.Output()
	if err != nil {
		return "Down", nil
	}

	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		var entry composePsEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if !strings.EqualFold(entry.State, "running") {
			continue
		}
		if o.liveOnHost(runCtx, entry.ID) {
			return "Up", nil
		}
	}
	return "Down", nil
}

// liveOnHost cross-checks compose's "running" state against the host
// process table: it resolves the container's PID via `docker inspect`
// and asks IsAlive whether that process still exists. Containers run in
// their own PID namespace by default, so this only catches the case
// where the daemon's view and the host's have diverged (e.g. a
// just-reaped process compose hasn't noticed yet); an inspect failure
// falls back to trusting compose's own "running" report.
func (o *Orchestrator) liveOnHost(ctx context.Context, containerID string) bool {
	if containerID == "" {
		return true
	}
	cmd := exec.CommandContext(ctx, "docker", "inspect", "-f", "{{.State.Pid}}", containerID)
	out, err := cmd.Output()
	if err != nil {
		return true
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return true
	}
	alive, err := IsAlive(pid)
	if err != nil {
		return true
	}
	return alive
}

// InFlight reports the power action currently running for service, if
// any.
func (o *Orchestrator) InFlight(service string) (Action, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.inFlight[service]
	return a, ok
}

// IsAlive cross-checks the process table for pid, used to report a
// service's observed liveness alongside the compose-reported status.
// Returns false, nil when no process with that pid exists (not an
// error condition — the service may simply be stopped).
func IsAlive(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	proc, err := ps.FindProcess(pid)
	if err != nil {
		return false, fmt.Errorf("find process %d: %w", pid, err)
	}
	return proc != nil, nil
}
