// Package editor shells out to an external image viewer.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Opener opens image files in the user's preferred viewer.
type Opener struct{}

// NewOpener creates a new viewer opener
func NewOpener() *Opener {
	return &Opener{}
}

// OpenFile opens an image in the viewer and waits for it to exit.
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd for opening an image in the viewer.
// This is useful for integrating with bubbletea's ExecProcess.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	viewer := o.findViewer()
	if viewer == "" {
		return nil, fmt.Errorf("no image viewer found: set $IMAGE_VIEWER environment variable")
	}

	cmd := exec.Command(viewer, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// findViewer returns the viewer to use
func (o *Opener) findViewer() string {
	if viewer := os.Getenv("IMAGE_VIEWER"); viewer != "" {
		return viewer
	}

	// Platform openers hand off to the default image app.
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	}
	if path, err := exec.LookPath("xdg-open"); err == nil {
		return path
	}

	// Terminal-friendly viewers as a fallback.
	viewers := []string{"feh", "imv", "sxiv", "chafa"}
	for _, viewer := range viewers {
		if path, err := exec.LookPath(viewer); err == nil {
			return path
		}
	}

	return ""
}
