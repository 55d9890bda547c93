// Package shell integrates with the host system: model server process
// management, URL/path opening, and clipboard access. It is the native-shell
// collaborator; everything here is best understood as "what the desktop
// wrapper would do".
package shell

import (
	"context"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// ServerStatus reports whether the model server binary is installed and
// whether a serve process is currently running.
type ServerStatus struct {
	Installed bool   `json:"installed"`
	Running   bool   `json:"running"`
	Path      string `json:"path,omitempty"`
}

// Status checks the ollama binary and scans the process table for a running
// server. A process-scan failure downgrades to "not running" rather than an
// error; the HTTP health check is the authoritative signal anyway.
func Status(ctx context.Context) ServerStatus {
	var status ServerStatus

	if path, err := exec.LookPath("ollama"); err == nil {
		status.Installed = true
		status.Path = path
	} else if p := findExecutable(); p != "" {
		status.Installed = true
		status.Path = p
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return status
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), "ollama") {
			status.Running = true
			break
		}
	}
	return status
}
