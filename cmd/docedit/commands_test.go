package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/doctree"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const helloDoc = `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Hello world"}]}]}`

func TestToolsCmd(t *testing.T) {
	out, err := execute(t, "", "tools")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"readChunk", "insertColumns", "deleteBySearch"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s in listing", name)
		}
	}
}

func TestMD2NodesCmd_Stdin(t *testing.T) {
	out, err := execute(t, "# Title\n\nBody", "md2nodes", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var nodes []*doctree.Node
	if err := json.Unmarshal([]byte(out), &nodes); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Type != doctree.TypeHeading || nodes[1].TextContent() != "Body" {
		t.Errorf("unexpected nodes %s", out)
	}
}

func TestExportCmd(t *testing.T) {
	path := writeDoc(t, helloDoc)
	out, err := execute(t, "", "export", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hello world\n" {
		t.Errorf("expected %q, got %q", "Hello world\n", out)
	}
}

func TestStructureCmd(t *testing.T) {
	path := writeDoc(t, helloDoc)
	out, err := execute(t, "", "structure", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s struct {
		TotalSize int `json:"totalSize"`
	}
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if s.TotalSize != 15 {
		t.Errorf("expected totalSize 15, got %d", s.TotalSize)
	}
}

func TestRunCmd_WriteBack(t *testing.T) {
	path := writeDoc(t, helloDoc)
	out, err := execute(t, "", "run", "insertAtEnd", "--doc", path, "--args", `{"content":"## Next"}`, "--write", "--diff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"version":1`) || !strings.Contains(out, `"added"`) {
		t.Errorf("unexpected output %s", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := doctree.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Content) != 2 || doc.Content[1].Type != doctree.TypeHeading {
		t.Errorf("expected appended heading in written file, got %s", raw)
	}
}

func TestRunCmd_ToolError(t *testing.T) {
	path := writeDoc(t, helloDoc)
	_, err := execute(t, "", "run", "deleteRange", "--doc", path, "--args", `{"from":5,"to":2}`, "--write")
	if err == nil || !strings.Contains(err.Error(), "OUT_OF_RANGE") {
		t.Fatalf("expected OUT_OF_RANGE error, got %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != helloDoc {
		t.Errorf("expected file untouched, got %s", raw)
	}
}

func TestRunCmd_Rejects(t *testing.T) {
	path := writeDoc(t, helloDoc)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown tool", []string{"run", "nope", "--doc", path}},
		{"bad args", []string{"run", "readChunk", "--doc", path, "--args", "{"}},
		{"missing doc flag", []string{"run", "readChunk"}},
		{"bad doc", []string{"run", "readChunk", "--doc", writeDoc(t, `{"type":"paragraph"}`)}},
	}
	for _, tt := range tests {
		if _, err := execute(t, "", tt.args...); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestImportCmd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(src, []byte("# Notes\n\nSome *text*."), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "notes.json")
	if _, err := execute(t, "", "import", src, "-o", dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := doctree.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Content) != 2 || doc.Content[0].TextContent() != "Notes" {
		t.Errorf("unexpected document %s", raw)
	}
}
