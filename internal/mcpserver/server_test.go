package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fpang/vision-rename/internal/rename"
	"github.com/fpang/vision-rename/internal/vision"
)

type fakeService struct {
	reachable bool
	models    []vision.ModelDescriptor
	names     map[string]string
	usedModel string
}

func (f *fakeService) CheckConnection(context.Context) bool { return f.reachable }

func (f *fakeService) ListModels(context.Context) ([]vision.ModelDescriptor, error) {
	return f.models, nil
}

func (f *fakeService) DescribeImage(_ context.Context, image []byte, _ string, modelID string) (string, error) {
	f.usedModel = modelID
	return f.names[string(image)], nil
}

type namePreparer struct{}

func (namePreparer) Prepare(_ context.Context, path string) ([]byte, string, error) {
	return []byte(filepath.Base(path)), "image/jpeg", nil
}

func connect(t *testing.T, deps *Dependencies) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	srv := New("test", deps)
	go func() {
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): no content", name)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): content is %T", name, result.Content[0])
	}
	if out != nil && !result.IsError {
		if err := json.Unmarshal([]byte(text.Text), out); err != nil {
			t.Fatalf("decode %s result: %v\n%s", name, err, text.Text)
		}
	}
	return result
}

func TestListTools(t *testing.T) {
	session := connect(t, &Dependencies{Service: &fakeService{}, Preparer: namePreparer{}})

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	want := []string{"check_connection", "list_models", "rename_images"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckAndListModels(t *testing.T) {
	svc := &fakeService{reachable: true, models: []vision.ModelDescriptor{{ID: "llava", OwnedBy: "local"}}}
	session := connect(t, &Dependencies{Service: svc, Preparer: namePreparer{}})

	var check CheckOutput
	callTool(t, session, "check_connection", map[string]any{}, &check)
	if !check.Reachable {
		t.Error("expected reachable")
	}

	var list ListModelsOutput
	callTool(t, session, "list_models", map[string]any{}, &list)
	if diff := cmp.Diff(svc.models, list.Models); diff != "" {
		t.Errorf("models mismatch (-want +got):\n%s", diff)
	}
}

func TestRenameImages(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.png", "b.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	svc := &fakeService{
		reachable: true,
		models:    []vision.ModelDescriptor{{ID: "llava"}, {ID: "qwen"}},
		names:     map[string]string{"a.png": "Red Barn", "b.png": ""},
	}
	session := connect(t, &Dependencies{Service: svc, Preparer: namePreparer{}})

	var out RenameOutput
	callTool(t, session, "rename_images", map[string]any{"paths": []string{dir}}, &out)

	want := RenameOutput{
		Model: "llava",
		Outcomes: []rename.Outcome{
			{Success: true, OldName: "a.png", NewName: "Red Barn.png"},
			{Success: false, OldName: "b.png", Error: "Empty name returned"},
		},
		Summary: rename.Summary{SuccessCount: 1, Total: 2},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "Red Barn.png")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestRenameImagesModelOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	if err := os.WriteFile(p, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := &fakeService{reachable: true, models: []vision.ModelDescriptor{{ID: "llava"}}, names: map[string]string{"a.png": "x"}}
	session := connect(t, &Dependencies{Service: svc, Preparer: namePreparer{}, DefaultModel: "configured"})

	var out RenameOutput
	callTool(t, session, "rename_images", map[string]any{"paths": []string{p}, "model": "explicit"}, &out)
	if out.Model != "explicit" || svc.usedModel != "explicit" {
		t.Errorf("model = %q, used %q", out.Model, svc.usedModel)
	}
}

func TestRenameImagesPreconditionFailure(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	if err := os.WriteFile(p, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	session := connect(t, &Dependencies{Service: &fakeService{reachable: false}, Preparer: namePreparer{}})

	res := callTool(t, session, "rename_images", map[string]any{"paths": []string{p}}, nil)
	if !res.IsError {
		t.Error("expected an error result when the server is unreachable")
	}
	if _, err := os.Stat(p); err != nil {
		t.Errorf("file should be untouched: %v", err)
	}
}
