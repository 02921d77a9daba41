package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_Init(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("Loader is nil")
	}
	l.Cleanup()

	if HandshakeConfig.MagicCookieKey != "AUTOSCRUM_PLUGIN" {
		t.Errorf("wrong magic cookie key")
	}
}

func TestLoader_LoadError(t *testing.T) {
	l := NewLoader()
	_, err := l.Load("/invalid/path/999")
	if err == nil {
		t.Error("expected error for invalid plugin path")
	}
}

func TestLoader_LoadDirectory(t *testing.T) {
	tempDir := t.TempDir()
	l := NewLoader()
	_, err := l.Load(tempDir)
	if err == nil {
		t.Error("expected error for directory path")
	}
}

func TestLoader_LoadNonExecutable(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "plugin")
	if err := os.WriteFile(filePath, []byte("not executable"), 0644); err != nil {
		t.Fatalf("create file: %v", err)
	}

	l := NewLoader()
	_, err := l.Load(filePath)
	if err == nil {
		t.Error("expected error for non-executable file")
	}
}
