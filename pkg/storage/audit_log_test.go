package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileAuditLog_AppendAndChain(t *testing.T) {
	dir := t.TempDir()
	log, err := NewFileAuditLog(dir)
	if err != nil {
		t.Fatalf("NewFileAuditLog failed: %v", err)
	}

	if err := log.Log("feature.created", "human", map[string]interface{}{"feature_id": "f1"}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := log.Log("ai.stories", "gateway", map[string]interface{}{"model": "test"}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := log.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].PrevHash != "" {
		t.Error("first event should have empty prev hash")
	}
	if events[1].PrevHash != events[0].Hash {
		t.Error("second event should chain to the first")
	}

	violations, err := log.VerifyIntegrity()
	if err != nil {
		t.Fatalf("VerifyIntegrity failed: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected clean chain, got %v", violations)
	}
}

func TestFileAuditLog_ChainSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	log, _ := NewFileAuditLog(dir)
	if err := log.Log("run.started", "human", nil); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	reopened, err := NewFileAuditLog(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := reopened.Log("run.approved", "human", nil); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	violations, err := reopened.VerifyIntegrity()
	if err != nil {
		t.Fatalf("VerifyIntegrity failed: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("reopened chain should stay intact, got %v", violations)
	}
}

func TestFileAuditLog_DetectsTampering(t *testing.T) {
	dir := t.TempDir()

	log, _ := NewFileAuditLog(dir)
	_ = log.Log("feature.created", "human", nil)
	_ = log.Log("run.started", "human", nil)

	path := filepath.Join(dir, EventsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	tampered := strings.Replace(string(data), "feature.created", "feature.deleted", 1)
	if err := os.WriteFile(path, []byte(tampered), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	violations, err := log.VerifyIntegrity()
	if err != nil {
		t.Fatalf("VerifyIntegrity failed: %v", err)
	}
	if len(violations) == 0 {
		t.Fatal("expected tampering to be detected")
	}
}
