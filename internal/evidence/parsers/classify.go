// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"strings"
)

// FieldCategory is the record field holding a line's message category.
const FieldCategory = "category"

// categoryRule maps a set of trigger keywords to a message category.
type categoryRule struct {
	keywords []string
	category string
}

// categoryRules is evaluated in order; the first match wins.
var categoryRules = []categoryRule{
	{keywords: []string{"fatal", "error", "failed", "failure", "violation"}, category: "error"},
	{keywords: []string{"warning", "warn:", "critical warning"}, category: "warning"},
	{keywords: []string{"info:", "note:"}, category: "info"},
}

func classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return ""
}
