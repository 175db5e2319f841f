// Copyright 2024 Workflow Generator Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fallback

import (
	"strings"

	"github.com/your-org/workflow-generator/internal/workflow"
)

// topic is a keyword bucket with canned workflow content
type topic struct {
	Name             string                        `yaml:"name"`
	Keywords         []string                      `yaml:"keywords"`
	Steps            []workflow.Step               `yaml:"steps"`
	RecommendedTools []workflow.ToolRecommendation `yaml:"recommended_tools"`
}

// matches reports whether any keyword occurs in the lowercased query
func (t *topic) matches(query string) bool {
	for _, keyword := range t.Keywords {
		if strings.Contains(query, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// classify returns the first topic with a keyword in the query, or the
// general topic when nothing matches.
func (c *catalog) classify(query string) *topic {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return &c.General
	}

	for i := range c.Topics {
		if c.Topics[i].matches(query) {
			return &c.Topics[i]
		}
	}
	return &c.General
}
