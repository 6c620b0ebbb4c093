// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/checklist/internal/output"
	"github.com/gemaraproj/checklist/internal/result"
)

func TestEvaluateChecklistItem(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name           string
		input          InputEvaluateChecklistItem
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, out OutputEvaluateChecklistItem)
	}{
		{
			name:        "empty config returns error",
			input:       InputEvaluateChecklistItem{},
			wantErr:     true,
			errContains: "config is required",
		},
		{
			name:        "invalid config returns error",
			input:       InputEvaluateChecklistItem{Config: "id: A\n"},
			wantErr:     true,
			errContains: "invalid checklist configuration",
		},
		{
			name: "batch config is rejected",
			input: InputEvaluateChecklistItem{
				Config: "items:\n  - id: A\n    input_files: [a.log]\n  - id: B\n    input_files: [b.log]\n",
			},
			wantErr:     true,
			errContains: "exactly one item",
		},
		{
			name: "missing evidence file returns error",
			input: InputEvaluateChecklistItem{
				Config: "id: A\ninput_files: [run.log]\n",
				Files:  map[string]string{},
			},
			wantErr:     true,
			errContains: "run.log",
		},
		{
			name: "pattern check passes",
			input: InputEvaluateChecklistItem{
				Config: `id: IMP-1
description: Confirm netlist version
requirements:
  value: 1
  pattern_items: ["netlist v1.2"]
input_files: [run.log]
`,
				Files: map[string]string{"run.log": "Loading netlist v1.2\n"},
			},
			validateOutput: func(t *testing.T, out OutputEvaluateChecklistItem) {
				assert.Equal(t, "IMP-1", out.ItemID)
				assert.Equal(t, "type2", out.Mode)
				assert.Equal(t, "PASS", out.Status)
				assert.Equal(t, []string{"run.log"}, out.SearchedFiles)
				assert.Len(t, out.Result, 4)
				assert.Contains(t, out.Log, "Description: Confirm netlist version")
				assert.Empty(t, out.Summary.Failures)
			},
		},
		{
			name: "failing item is a normal result",
			input: InputEvaluateChecklistItem{
				Config: `id: IMP-2
requirements: {value: 1, pattern_items: [gamma]}
waivers: {value: 1, waive_items: [{pattern: "zeta", reason: "known"}]}
input_files: [run.log]
`,
				Files: map[string]string{"run.log": "zeta\n"},
			},
			validateOutput: func(t *testing.T, out OutputEvaluateChecklistItem) {
				assert.Equal(t, "type3", out.Mode)
				assert.Equal(t, "FAIL", out.Status)
				missing := out.Result.Items(output.KeyMissing)
				require.Len(t, missing, 1)
				assert.Equal(t, "gamma", missing[0].Expected)
				waived := out.Result.Items(output.KeyWaived)
				require.Len(t, waived, 1)
				assert.Equal(t, "known", waived[0].Reason)
				assert.Equal(t, result.TagWaiver, waived[0].Tag)
			},
		},
		{
			name: "extractor override",
			input: InputEvaluateChecklistItem{
				Config:    "id: IMP-3\nrequirements: {value: 1, pattern_items: [\"# Title\"]}\ninput_files: [doc.md]\n",
				Files:     map[string]string{"doc.md": "# Title\n"},
				Extractor: "line",
			},
			validateOutput: func(t *testing.T, out OutputEvaluateChecklistItem) {
				assert.Equal(t, "PASS", out.Status)
			},
		},
		{
			name: "unknown extractor override returns error",
			input: InputEvaluateChecklistItem{
				Config:    "id: IMP-4\ninput_files: [run.log]\n",
				Files:     map[string]string{"run.log": "x\n"},
				Extractor: "pdf",
			},
			wantErr:     true,
			errContains: "unknown extractor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := EvaluateChecklistItem(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, out)
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer("test"))
}
