package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"remote-jobs-harvester/internal/browser"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ScreenShotDebugger saves full page screenshots of failed pages
type ScreenShotDebugger struct {
	outputDir string
}

func NewScreenShotDebugger(dir string) *ScreenShotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	return &ScreenShotDebugger{
		outputDir: dir,
	}
}

// FileName turns a label (usually a URL) into name_<timestamp>.png
func (s *ScreenShotDebugger) FileName(name string, at time.Time) string {
	name = unsafeName.ReplaceAllString(name, "-")
	if len(name) > 80 {
		name = name[len(name)-80:]
	}
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, at.Format("2006-01-02_15-04-05")))
}

func (s *ScreenShotDebugger) CaptureAndLog(page browser.Page, name, message string) error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create screenshot directory: %v", err)
		return err
	}
	path := s.FileName(name, time.Now())
	log.Printf("📸 %s", message)

	//take screenshot
	if err := page.Screenshot(path); err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return err
	}

	log.Printf("   Screenshot saved: %s", path)
	return nil
}
