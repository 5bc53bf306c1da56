package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/vision-rename/internal/filehandler"
	"github.com/fpang/vision-rename/internal/rename"
	"github.com/fpang/vision-rename/internal/vision"
)

// CheckInput takes no arguments.
type CheckInput struct{}

// CheckOutput reports reachability.
type CheckOutput struct {
	Reachable bool `json:"reachable"`
}

// ListModelsInput takes no arguments.
type ListModelsInput struct{}

// ListModelsOutput lists the available models.
type ListModelsOutput struct {
	Models []vision.ModelDescriptor `json:"models"`
}

// RenameInput selects images and, optionally, the model.
type RenameInput struct {
	Paths     []string `json:"paths" jsonschema:"Absolute paths of images or directories to rename"`
	Model     string   `json:"model,omitempty" jsonschema:"Model id; defaults to the configured or first listed model"`
	Recursive bool     `json:"recursive,omitempty" jsonschema:"Walk directories recursively"`
}

// RenameOutput is one outcome per image, in input order, plus the tally.
type RenameOutput struct {
	Model    string           `json:"model"`
	Outcomes []rename.Outcome `json:"outcomes"`
	Summary  rename.Summary   `json:"summary"`
}

func registerTools(s *mcp.Server, deps *Dependencies) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "check_connection",
		Description: "Check whether the vision model server is reachable",
	}, newCheckHandler(deps))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_models",
		Description: "List the models offered by the vision model server",
	}, newListModelsHandler(deps))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "rename_images",
		Description: "Rename images on disk to short descriptive names suggested by the vision model",
	}, newRenameHandler(deps))
}

func newCheckHandler(deps *Dependencies) mcp.ToolHandlerFor[CheckInput, CheckOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CheckInput) (*mcp.CallToolResult, CheckOutput, error) {
		out := CheckOutput{Reachable: deps.Service.CheckConnection(ctx)}
		return jsonResult(out), out, nil
	}
}

func newListModelsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListModelsInput, ListModelsOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListModelsInput) (*mcp.CallToolResult, ListModelsOutput, error) {
		models, err := deps.Service.ListModels(ctx)
		if err != nil {
			return errorResult(err.Error(), "Is the model server running?"), ListModelsOutput{Models: []vision.ModelDescriptor{}}, nil
		}
		out := ListModelsOutput{Models: models}
		return jsonResult(out), out, nil
	}
}

func newRenameHandler(deps *Dependencies) mcp.ToolHandlerFor[RenameInput, RenameOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in RenameInput) (*mcp.CallToolResult, RenameOutput, error) {
		paths, err := filehandler.ExpandPaths(in.Paths, filehandler.ScanOptions{Recursive: in.Recursive})
		if err != nil {
			return errorResult(err.Error(), "Pass existing absolute paths"), emptyRenameOutput(), nil
		}
		tasks := rename.NewTasks(paths)

		models, err := rename.CheckPreconditions(ctx, deps.Service, tasks)
		if err != nil {
			return errorResult(err.Error(), ""), emptyRenameOutput(), nil
		}

		model := in.Model
		if model == "" {
			model = deps.DefaultModel
		}
		if model == "" {
			model = models[0].ID
		}

		renamer := rename.NewRenamer(deps.Preparer, deps.Service, model, deps.Options)
		outcomes, summary := rename.NewRunner(renamer).Run(ctx, tasks)

		log.Info().Str("model", model).Int("renamed", summary.SuccessCount).Int("total", summary.Total).Msg("MCP rename complete")
		out := RenameOutput{Model: model, Outcomes: outcomes, Summary: summary}
		return jsonResult(out), out, nil
	}
}

func emptyRenameOutput() RenameOutput {
	return RenameOutput{Outcomes: []rename.Outcome{}}
}

// errorResult returns a tool error the calling model can read and act on.
func errorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err), "")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
