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
	"fmt"
	"strings"

	"github.com/your-org/workflow-generator/internal/workflow"
)

const toolsSystemPrompt = `You are an AI assistant that suggests the best tools and resources for any given task or query.
Return ONLY a JSON array of tools with the following structure (no markdown, no extra text):
[
  {
    "name": "Tool Name",
    "description": "Brief description of what the tool does",
    "category": "Category (e.g., Design, Development, Research)",
    "url": "https://example.com",
    "pricing": "free",
    "difficulty": "beginner"
  }
]

"pricing" must be one of: free, freemium, paid.
"difficulty" must be one of: beginner, intermediate, advanced.
Suggest 3-6 relevant tools that would be most helpful for the user's query. Make sure the tools are real and the URLs are absolute and accurate.`

const tabsSystemPrompt = `You are a helpful AI assistant that analyzes browser tabs to provide casual, friendly insights about the user's workflow.
Keep your response conversational and under 60 words. Focus on being helpful and encouraging. Reply with plain text only.`

const workflowSystemPrompt = `You are an expert workflow architect and efficiency consultant. Your task is to create precise, step-by-step workflows that maximize efficiency and minimize wasted effort.

You must analyze the user's request and create a comprehensive workflow with:
1. Clear, actionable steps in logical order
2. Time estimates for each step
3. Tool recommendations with specific use cases
4. Dependencies between steps
5. Efficiency optimization tips
6. Alternative approaches

IMPORTANT: Return ONLY a valid JSON object with this exact structure (no markdown, no extra text):
{
  "title": "Workflow Title",
  "description": "Brief overview of what this workflow accomplishes",
  "totalEstimatedTime": "X hours/days",
  "complexity": "simple",
  "steps": [
    {
      "id": "step-1",
      "title": "Step Title",
      "description": "Detailed description of what to do in this step",
      "estimatedTime": "X minutes/hours",
      "tools": [
        {
          "name": "Tool Name",
          "description": "Why this tool is perfect for this step",
          "category": "Category",
          "url": "https://example.com",
          "pricing": "free",
          "difficulty": "beginner"
        }
      ],
      "dependencies": [],
      "priority": "high",
      "category": "Planning",
      "completed": false
    }
  ],
  "recommendedTools": [
    {
      "name": "Primary Tool",
      "description": "Core tool for the entire workflow",
      "category": "Category",
      "url": "https://example.com",
      "pricing": "free",
      "difficulty": "beginner"
    }
  ],
  "efficiencyTips": ["Specific tip to save time or improve quality"],
  "alternatives": ["Alternative approach or tool if primary doesn't work"]
}

Allowed values:
- "complexity": simple, moderate, complex
- "priority": high, medium, low
- "pricing": free, freemium, paid
- "difficulty": beginner, intermediate, advanced

Guidelines:
- Create 4-8 logical steps that build upon each other
- Step ids must be unique; "dependencies" may only list ids of earlier steps
- Be specific about time estimates (realistic, not optimistic)
- Recommend tools that actually integrate well together
- Include both free and premium options
- Consider different skill levels
- Prioritize efficiency and quality outcomes`

const optimizeSystemPrompt = `You are a workflow optimization expert. Analyze existing workflows and provide specific, actionable improvements.

Return your response as a JSON array of optimization suggestions (no markdown, no extra text):
[
  "Specific optimization tip with clear action",
  "Another concrete improvement suggestion"
]

Focus on:
- Eliminating bottlenecks
- Reducing context switching
- Improving tool integration
- Automating repetitive tasks
- Enhancing quality control`

// BuildToolsPrompt embeds the user query in the tool suggestion request
func BuildToolsPrompt(query string) string {
	return fmt.Sprintf("User query: %q. Please suggest the best tools and resources for this task.", query)
}

// DescribeTabs joins tabs into a "title (category)" list
func DescribeTabs(tabs []workflow.TabInfo) string {
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		parts = append(parts, fmt.Sprintf("%s (%s)", tab.Title, tab.Category))
	}
	return strings.Join(parts, ", ")
}

// BuildTabsPrompt asks for a short insight about the open tabs
func BuildTabsPrompt(tabs []workflow.TabInfo) string {
	return fmt.Sprintf("The user has these tabs open: %s. Provide a brief, casual notification about their workflow or suggest how they might be more productive.",
		DescribeTabs(tabs))
}

// BuildWorkflowPrompt embeds the query and optional context in the plan request
func BuildWorkflowPrompt(query, userContext string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Create a precise, step-by-step workflow for: %q\n\n", query))

	if extra := strings.TrimSpace(userContext); extra != "" {
		prompt.WriteString(fmt.Sprintf("Additional context: %s\n\n", extra))
	}

	prompt.WriteString("Focus on:\n")
	prompt.WriteString("1. Maximum efficiency - eliminate unnecessary steps\n")
	prompt.WriteString("2. Tool integration - recommend tools that work well together\n")
	prompt.WriteString("3. Clear dependencies - what must be done before each step\n")
	prompt.WriteString("4. Realistic time estimates\n")
	prompt.WriteString("5. Quality outcomes - not just speed\n\n")
	prompt.WriteString("Make this workflow actionable and specific enough that someone could follow it immediately.")

	return prompt.String()
}

// BuildOptimizePrompt asks for 4-6 optimizations of the summarized plan
func BuildOptimizePrompt(summary string) string {
	return fmt.Sprintf("Analyze this workflow and suggest 4-6 specific optimizations: %q\n\n"+
		"Provide concrete, actionable suggestions that would measurably improve efficiency or quality.", summary)
}

// SummarizePlan condenses a plan into the title and description used as
// optimization context.
func SummarizePlan(plan *workflow.Plan) string {
	if plan == nil {
		return ""
	}
	title := strings.TrimSpace(plan.Title)
	description := strings.TrimSpace(plan.Description)
	switch {
	case title == "":
		return description
	case description == "":
		return title
	default:
		return title + ": " + description
	}
}
