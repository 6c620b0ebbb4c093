// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/checklist/internal/checklist"
	"github.com/gemaraproj/checklist/internal/evidence"
	"github.com/gemaraproj/checklist/internal/evidence/parsers"
	"github.com/gemaraproj/checklist/internal/fsread"
	"github.com/gemaraproj/checklist/internal/match"
	"github.com/gemaraproj/checklist/internal/output"
	"github.com/gemaraproj/checklist/internal/pipeline"
	"github.com/gemaraproj/checklist/internal/report"
)

// MetadataEvaluateChecklistItem describes the evaluate_checklist_item tool.
var MetadataEvaluateChecklistItem = &mcp.Tool{
	Name: "evaluate_checklist_item",
	Description: "Evaluate one checklist item against in-memory evidence files. " +
		"The item is given as YAML with id, requirements {value, pattern_items}, " +
		"waivers {value, waive_items} and input_files. Files named by input_files " +
		"(and any file they reference) must be present in the files map. " +
		"Returns PASS/FAIL status, the mode-filtered result, a text log and a summary " +
		"of failures and warnings.",
}

// InputEvaluateChecklistItem is the input for the EvaluateChecklistItem tool.
type InputEvaluateChecklistItem struct {
	Config    string            `json:"config" jsonschema:"checklist item configuration as YAML"`
	Files     map[string]string `json:"files" jsonschema:"evidence file contents keyed by path"`
	Extractor string            `json:"extractor,omitempty" jsonschema:"override extractor: auto, line, yaml, markdown or kubernetes"`
}

// OutputEvaluateChecklistItem is the output for the EvaluateChecklistItem tool.
type OutputEvaluateChecklistItem struct {
	ItemID string `json:"item_id"`
	Mode   string `json:"mode"`
	Status string `json:"status"`
	// Result holds exactly the keys of the item's mode.
	Result        output.Record  `json:"result"`
	SearchedFiles []string       `json:"searched_files"`
	Log           string         `json:"log"`
	Summary       report.Summary `json:"summary"`
}

// EvaluateChecklistItem runs the checklist pipeline over in-memory files.
// A failing item is a normal result, not a tool error.
func EvaluateChecklistItem(_ context.Context, _ *mcp.CallToolRequest, input InputEvaluateChecklistItem) (*mcp.CallToolResult, OutputEvaluateChecklistItem, error) {
	if input.Config == "" {
		return nil, OutputEvaluateChecklistItem{}, fmt.Errorf("config is required")
	}
	items, err := checklist.Parse([]byte(input.Config), "")
	if err != nil {
		return nil, OutputEvaluateChecklistItem{}, err
	}
	if len(items) != 1 {
		return nil, OutputEvaluateChecklistItem{}, fmt.Errorf("config must hold exactly one item, got %d", len(items))
	}
	item := items[0]
	if input.Extractor != "" {
		item.Extractor = input.Extractor
	}

	dispatcher := parsers.Default()
	evaluator, err := pipeline.NewEvaluator(pipeline.Collaborators{
		Read: fsread.NewMemory(input.Files).Read,
		Extractor: func(it *checklist.Item) (evidence.ExtractFunc, error) {
			return dispatcher.Extractor(it.Extractor)
		},
		Match:  match.NewMatcher().Match,
		Exists: pipeline.ExistsByConfig,
	}, nil)
	if err != nil {
		return nil, OutputEvaluateChecklistItem{}, err
	}

	ev, err := evaluator.Evaluate(item)
	if err != nil {
		return nil, OutputEvaluateChecklistItem{}, err
	}
	return nil, OutputEvaluateChecklistItem{
		ItemID:        ev.ItemID,
		Mode:          ev.Mode.String(),
		Status:        string(ev.Output.Status()),
		Result:        ev.Output,
		SearchedFiles: ev.SearchedFiles,
		Log:           ev.Log,
		Summary:       ev.Summary,
	}, nil
}

// NewServer builds an MCP server with the checklist tools registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "checklist", Version: version}, nil)
	mcp.AddTool(server, MetadataEvaluateChecklistItem, EvaluateChecklistItem)
	return server
}
