//go:build !windows

package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// findExecutable locates the ollama binary outside PATH, covering the common
// Unix and macOS install locations.
func findExecutable() string {
	paths := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/ollama/ollama",
		"/Applications/Ollama.app/Contents/Resources/ollama",
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths,
			filepath.Join(home, ".local", "bin", "ollama"),
			filepath.Join(home, "bin", "ollama"),
		)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// StartServer spawns `ollama serve` detached in its own process group so it
// outlives this process. host sets OLLAMA_HOST; empty keeps the server
// default.
func StartServer(ctx context.Context, host string) error {
	path, err := exec.LookPath("ollama")
	if err != nil {
		if path = findExecutable(); path == "" {
			return fmt.Errorf("ollama not found in PATH or common installation directories")
		}
	}

	cmd := exec.Command(path, "serve")
	cmd.Env = append(os.Environ(), "OLLAMA_ORIGINS=*")
	if host != "" {
		cmd.Env = append(cmd.Env, "OLLAMA_HOST="+host)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ollama (path: %s): %w", path, err)
	}
	if cmd.Process != nil {
		cmd.Process.Release()
	}
	return nil
}

// OpenURL opens a URL in the default browser.
func OpenURL(url string) error {
	return open(url)
}

// OpenPath reveals a file or directory in the system file manager.
func OpenPath(path string) error {
	return open(path)
}

func open(target string) error {
	var cmd *exec.Cmd
	if _, err := os.Stat("/usr/bin/open"); err == nil {
		cmd = exec.Command("/usr/bin/open", target) // macOS
	} else {
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
