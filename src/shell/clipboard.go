package shell

import "github.com/atotto/clipboard"

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// ReadClipboard reads the current clipboard text.
func ReadClipboard() (string, error) {
	return clipboard.ReadAll()
}
