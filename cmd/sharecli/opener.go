package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

// systemOpener hands links to the desktop's default handler.
type systemOpener struct{}

func (systemOpener) Open(uri string) error {
	name, args := openCommand(runtime.GOOS, uri)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open link: %w", err)
	}
	return nil
}

func openCommand(goos, uri string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{uri}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", uri}
	default:
		return "xdg-open", []string{uri}
	}
}
