package utils

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromeSearches(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		assert.NotEmpty(t, chromeSearches[goos].binaries, goos)
		assert.NotEmpty(t, chromeSearches[goos].paths, goos)
	}
	assert.Empty(t, chromeSearches["plan9"].binaries)
}

func TestFindChrome(t *testing.T) {
	search := chromeSearch{
		binaries: []string{"chromium"},
		paths:    []string{"/missing/chrome", "/opt/chrome"},
	}
	notOnPath := func(string) (string, error) { return "", errors.New("not found") }
	onPath := func(name string) (string, error) { return "/usr/local/bin/" + name, nil }
	exists := func(path string) bool { return path == "/opt/chrome" }

	assert.Equal(t, "/usr/local/bin/chromium", findChrome(search, onPath, exists), "PATH wins")
	assert.Equal(t, "/opt/chrome", findChrome(search, notOnPath, exists))
	assert.Empty(t, findChrome(search, notOnPath, func(string) bool { return false }))
	assert.Empty(t, findChrome(chromeSearch{}, onPath, exists))
}

func TestResolveChrome_Configured(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755))

	path, err := ResolveChrome(bin)
	require.NoError(t, err)
	assert.Equal(t, bin, path)

	_, err = ResolveChrome(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestChromeInstallHint(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows", "plan9"} {
		assert.Contains(t, ChromeInstallHint(goos), "gofpdf")
	}
}

func TestProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	assert.True(t, Probe(addr, time.Second))

	require.NoError(t, ln.Close())
	assert.False(t, Probe(addr, 200*time.Millisecond))
}
