package utils

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// --------------------------------------
// CHROME CHECK
// --------------------------------------

// chromeSearch lists where a browser is looked for: names on PATH, then
// install locations for the OS.
type chromeSearch struct {
	binaries []string
	paths    []string
}

var chromeSearches = map[string]chromeSearch{
	"linux": {
		binaries: []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"},
		paths:    []string{"/usr/bin/chromium", "/snap/bin/chromium", "/opt/google/chrome/chrome"},
	},
	"darwin": {
		binaries: []string{"google-chrome", "chromium"},
		paths: []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		},
	},
	"windows": {
		binaries: []string{"chrome.exe", "chromium.exe"},
		paths: []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		},
	},
}

// CheckChrome finds a Chrome/Chromium binary for the running OS.
func CheckChrome() (bool, string) {
	path := findChrome(chromeSearches[runtime.GOOS], exec.LookPath, fileExists)
	return path != "", path
}

func findChrome(search chromeSearch, lookPath func(string) (string, error), exists func(string) bool) string {
	for _, bin := range search.binaries {
		if path, err := lookPath(bin); err == nil {
			return path
		}
	}
	for _, path := range search.paths {
		if exists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ResolveChrome returns the configured binary when it exists, otherwise the
// first Chrome/Chromium found on the system.
func ResolveChrome(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("configured chrome binary %q: %w", configured, err)
		}
		return configured, nil
	}
	if ok, path := CheckChrome(); ok {
		return path, nil
	}
	return "", fmt.Errorf("chrome/chromium is required for the chrome renderer but not installed. %s", ChromeInstallHint(runtime.GOOS))
}

// ChromeVersion attempts to get the version of Chrome/Chromium
func ChromeVersion(path string) string {
	output, err := exec.Command(path, "--version").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

// ChromeInstallHint is a one-line install instruction for the OS.
func ChromeInstallHint(goos string) string {
	switch goos {
	case "linux":
		return "Install it with your package manager (e.g. apt install chromium) or set pdf.renderer to gofpdf."
	case "darwin":
		return "Install it with: brew install --cask google-chrome, or set pdf.renderer to gofpdf."
	case "windows":
		return "Download Google Chrome from https://www.google.com/chrome/ or set pdf.renderer to gofpdf."
	default:
		return "Install Chrome or Chromium for your OS or set pdf.renderer to gofpdf."
	}
}

// --------------------------------------
// NETWORK
// --------------------------------------

// Probe reports whether a TCP connection to address can be opened.
func Probe(address string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
