//go:build windows

package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// findExecutable locates the ollama binary outside PATH on Windows.
func findExecutable() string {
	var paths []string
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		paths = append(paths, filepath.Join(local, "Programs", "Ollama", "ollama.exe"))
	}
	if programFiles := os.Getenv("ProgramFiles"); programFiles != "" {
		paths = append(paths, filepath.Join(programFiles, "Ollama", "ollama.exe"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// StartServer spawns `ollama serve` detached, without a console window.
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
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: 0x00000008 | 0x00000200, // DETACHED_PROCESS | CREATE_NEW_PROCESS_GROUP
	}

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
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
}

// OpenPath reveals a file or directory in Explorer.
func OpenPath(path string) error {
	return exec.Command("explorer", path).Start()
}
