package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacentio/slotstore/store"
)

// writeConfig writes a settings file pointing the dir backend at a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "slotstore.yaml")
	content := "backend: dir\ndir: " + filepath.Join(dir, "slots") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	want := []string{"delete", "find", "get", "init", "list", "save"}
	var got []string
	for _, c := range cmd.Commands() {
		got = append(got, c.Name())
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected subcommands %v, got %v", want, got)
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "", "--config", cfg, "--format", "xml", "list", "task")
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("expected invalid format error, got %v", err)
	}
}

func TestIsValidFormat(t *testing.T) {
	for _, f := range []string{"text", "json"} {
		if !isValidFormat(f) {
			t.Errorf("expected %q to be valid", f)
		}
	}
	if isValidFormat("yaml") {
		t.Error("expected yaml to be invalid")
	}
}

func TestCLI_Workflow(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "", "--config", cfg, "init", "task", "note")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if strings.TrimSpace(out) != "note\ntask" {
		t.Errorf("unexpected init output %q", out)
	}

	out, err = run(t, "", "--config", cfg, "--format", "json", "save", "task", `{"title":"a","status":"done"}`)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	var saved store.Record
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatalf("decode save output %q: %v", out, err)
	}
	id, _ := saved["id"].(string)
	if id == "" {
		t.Fatalf("expected minted id, got %v", saved)
	}

	if _, err := run(t, `{"title":"b","status":"open"}`, "--config", cfg, "save", "--id", "fixed", "task", "-"); err != nil {
		t.Fatalf("save from stdin: %v", err)
	}

	out, err = run(t, "", "--config", cfg, "list", "task")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 2 {
		t.Errorf("expected 2 records, got %q", out)
	}

	out, err = run(t, "", "--config", cfg, "get", "task", "fixed")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.HasPrefix(out, "fixed\t") || !strings.Contains(out, `"title":"b"`) {
		t.Errorf("unexpected get output %q", out)
	}

	out, err = run(t, "", "--config", cfg, "--format", "json", "find", "task", "status", "done")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	var found []store.Record
	if err := json.Unmarshal([]byte(out), &found); err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0]["id"] != id {
		t.Errorf("expected only %s, got %v", id, found)
	}

	out, err = run(t, "", "--config", cfg, "delete", "task", id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if strings.TrimSpace(out) != "deleted "+id {
		t.Errorf("unexpected delete output %q", out)
	}

	_, err = run(t, "", "--config", cfg, "get", "task", id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCLI_UnknownTypeNotCreated(t *testing.T) {
	cfg := writeConfig(t)
	slots := filepath.Join(filepath.Dir(cfg), "slots")

	tests := [][]string{
		{"list", "typo"},
		{"get", "typo", "1"},
		{"delete", "typo", "1"},
		{"find", "typo", "status", "done"},
		{"save", "typo", `{"title":"a"}`},
	}
	for _, args := range tests {
		full := append([]string{"--config", cfg}, args...)
		_, err := run(t, "", full...)
		if !errors.Is(err, store.ErrStoreNotInitialized) {
			t.Errorf("%v: expected ErrStoreNotInitialized, got %v", args, err)
		}
	}

	if _, err := os.Stat(filepath.Join(slots, "typo.json")); !os.IsNotExist(err) {
		t.Errorf("expected no slot file for typo, stat err = %v", err)
	}
}

func TestCLI_InitPersistsAcrossRuns(t *testing.T) {
	cfg := writeConfig(t)

	if _, err := run(t, "", "--config", cfg, "init", "note"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := run(t, "", "--config", cfg, "save", "--id", "n1", "note", `{"body":"x"}`); err != nil {
		t.Fatalf("save after init: %v", err)
	}
	out, err := run(t, "", "--config", cfg, "get", "note", "n1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.HasPrefix(out, "n1\t") {
		t.Errorf("unexpected get output %q", out)
	}
}

func TestCLI_SaveInvalidJSON(t *testing.T) {
	cfg := writeConfig(t)
	for _, body := range []string{"{", "null", "[1]"} {
		if _, err := run(t, "", "--config", cfg, "save", "task", body); err == nil {
			t.Errorf("expected error for body %q", body)
		}
	}
}

func TestCLI_UnknownBackend(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "", "--config", cfg, "--backend", "redis", "list", "task")
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("expected unknown backend error, got %v", err)
	}
}

func TestCLI_ArgValidation(t *testing.T) {
	cfg := writeConfig(t)
	tests := [][]string{
		{"init"},
		{"list"},
		{"get", "task"},
		{"delete", "task"},
		{"find", "task", "status"},
	}
	for _, args := range tests {
		full := append([]string{"--config", cfg}, args...)
		if _, err := run(t, "", full...); err == nil {
			t.Errorf("expected arg error for %v", args)
		}
	}
}

func TestWriteOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	recs := []store.Record{{"id": "1", "a": "x"}, {"id": float64(2)}}
	if err := writeOutput(&buf, "text", recs); err != nil {
		t.Fatal(err)
	}
	want := "1\t{\"a\":\"x\",\"id\":\"1\"}\n2\t{\"id\":2}\n"
	if buf.String() != want {
		t.Errorf("unexpected output\nwant %q\ngot  %q", want, buf.String())
	}
}
