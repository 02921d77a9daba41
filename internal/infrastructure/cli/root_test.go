package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Anajrajeev/AutoScrum/pkg/storage"
)

func inTempWorkspace(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	if err := os.Chdir(tempDir); err != nil {
		t.Fatal(err)
	}
	return tempDir
}

func TestExecute_Help(t *testing.T) {
	inTempWorkspace(t)

	os.Args = []string{"autoscrum", "--help"}
	if err := Execute(); err != nil {
		t.Errorf("Execute failed: %v", err)
	}
}

func TestInitCmd(t *testing.T) {
	tempDir := inTempWorkspace(t)

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)

	RootCmd.SetArgs([]string{"init"})
	if err := RootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, storage.AutoScrumDir, storage.ConfigFile)); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	// Double init should fail
	if err := RootCmd.Execute(); err == nil {
		t.Error("expected error on re-init")
	}
}

func TestTeamCmd_AddAndList(t *testing.T) {
	inTempWorkspace(t)

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)

	RootCmd.SetArgs([]string{"init"})
	if err := RootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	RootCmd.SetArgs([]string{"team", "add", "alice", "Alice", "--skills", "development,testing", "--capacity", "8"})
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("team add failed: %v", err)
	}

	RootCmd.SetArgs([]string{"team", "list"})
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("team list failed: %v", err)
	}

	RootCmd.SetArgs([]string{"team", "remove", "alice"})
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("team remove failed: %v", err)
	}
}

func TestCommandsRequireWorkspace(t *testing.T) {
	inTempWorkspace(t)

	RootCmd.SetArgs([]string{"team", "list"})
	if err := RootCmd.Execute(); err == nil {
		t.Error("expected error without initialized workspace")
	}
}

func TestMapError_PassesThroughUnknown(t *testing.T) {
	if got := MapError(nil); got != nil {
		t.Errorf("MapError(nil) = %v", got)
	}
	err := os.ErrPermission
	if got := MapError(err); got != err {
		t.Errorf("unknown error should pass through, got %v", got)
	}
}
