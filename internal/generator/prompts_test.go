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

package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/workflow-generator/internal/workflow"
)

func TestBuildWorkflowPrompt(t *testing.T) {
	withContext := BuildWorkflowPrompt("Launch a podcast", "  weekly, two hosts ")
	assert.Contains(t, withContext, `"Launch a podcast"`)
	assert.Contains(t, withContext, "Additional context: weekly, two hosts\n")

	without := BuildWorkflowPrompt("Launch a podcast", "   ")
	assert.NotContains(t, without, "Additional context")
}

func TestDescribeTabs(t *testing.T) {
	tabs := []workflow.TabInfo{
		{Title: "Inbox", Category: "Communication"},
		{Title: "Jira", Category: "Productivity"},
	}
	assert.Equal(t, "Inbox (Communication), Jira (Productivity)", DescribeTabs(tabs))
	assert.Equal(t, "", DescribeTabs(nil))
}

func TestSummarizePlan(t *testing.T) {
	assert.Equal(t, "", SummarizePlan(nil))
	assert.Equal(t, "Title: Description", SummarizePlan(&workflow.Plan{Title: "Title", Description: "Description"}))
	assert.Equal(t, "Title", SummarizePlan(&workflow.Plan{Title: " Title "}))
	assert.Equal(t, "Description", SummarizePlan(&workflow.Plan{Description: "Description"}))
}

func TestSystemPromptsListEnums(t *testing.T) {
	for _, value := range []string{"free, freemium, paid", "beginner, intermediate, advanced", "high, medium, low", "simple, moderate, complex"} {
		assert.Contains(t, workflowSystemPrompt, value)
	}
	assert.Contains(t, toolsSystemPrompt, "free, freemium, paid")
}
