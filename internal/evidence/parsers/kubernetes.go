// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"fmt"
	"strings"

	"github.com/gemaraproj/checklist/internal/evidence"
	"github.com/goccy/go-yaml"
)

// kubeManifest holds the identity fields of a Kubernetes manifest.
type kubeManifest struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		Name      string `yaml:"name"`
		Namespace string `yaml:"namespace"`
	} `yaml:"metadata"`
}

// KubernetesParser emits one identity record per manifest document, such as
// "Deployment/default/my-app".
type KubernetesParser struct{}

// NewKubernetesParser creates a new KubernetesParser.
func NewKubernetesParser() *KubernetesParser {
	return &KubernetesParser{}
}

func (p *KubernetesParser) Name() string {
	return "kubernetes"
}

// CanHandle accepts YAML files containing the characteristic apiVersion and
// kind fields.
func (p *KubernetesParser) CanHandle(sourceFile, text string) bool {
	if !hasExt(sourceFile, ".yaml", ".yml") {
		return false
	}
	return strings.Contains(text, "apiVersion:") && strings.Contains(text, "kind:")
}

// Extract splits multi-document YAML on '---' lines. Documents that fail to
// decode or carry no kind are skipped.
func (p *KubernetesParser) Extract(text, sourceFile string) ([]evidence.Record, error) {
	var records []evidence.Record
	for _, doc := range splitDocuments(text) {
		var manifest kubeManifest
		if err := yaml.Unmarshal([]byte(doc.body), &manifest); err != nil || manifest.Kind == "" {
			continue
		}
		ref := manifest.Kind + "/" + manifest.Metadata.Name
		if manifest.Metadata.Namespace != "" {
			ref = manifest.Kind + "/" + manifest.Metadata.Namespace + "/" + manifest.Metadata.Name
		}
		records = append(records, evidence.Record{
			Value:          ref,
			SourceFile:     sourceFile,
			LineNumber:     evidence.Line(doc.start),
			MatchedContent: fmt.Sprintf("kind: %s", manifest.Kind),
			Fields: map[string]any{
				"apiVersion": manifest.APIVersion,
				"kind":       manifest.Kind,
				"name":       manifest.Metadata.Name,
			},
		})
	}
	return records, nil
}

type document struct {
	body  string
	start int
}

// splitDocuments returns each non-empty document with the 1-based line of
// its first non-blank line.
func splitDocuments(text string) []document {
	var docs []document
	var current []string
	start := 0
	flush := func() {
		body := strings.TrimSpace(strings.Join(current, "\n"))
		if body != "" {
			docs = append(docs, document{body: body, start: start})
		}
		current = nil
		start = 0
	}
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		if start == 0 && strings.TrimSpace(line) != "" {
			start = i + 1
		}
		current = append(current, line)
	}
	flush()
	return docs
}
