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

package workflow

const schemaBaseURL = "https://workflow-generator.local/schemas/"

// definitionsJSON holds the shared tool definition referenced by the other schemas.
const definitionsJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "tool": {
      "type": "object",
      "required": ["name", "description", "category", "url", "pricing", "difficulty"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "category": {"type": "string"},
        "url": {"type": "string", "format": "uri"},
        "pricing": {"enum": ["free", "freemium", "paid"]},
        "difficulty": {"enum": ["beginner", "intermediate", "advanced"]}
      }
    }
  }
}`

const planSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "totalEstimatedTime", "complexity", "steps"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "totalEstimatedTime": {"type": "string", "minLength": 1},
    "complexity": {"enum": ["simple", "moderate", "complex"]},
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "title", "priority"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "estimatedTime": {"type": "string"},
          "tools": {"type": "array", "items": {"$ref": "definitions.json#/$defs/tool"}},
          "dependencies": {"type": "array", "items": {"type": "string"}},
          "priority": {"enum": ["high", "medium", "low"]},
          "category": {"type": "string"},
          "completed": {"type": "boolean"}
        }
      }
    },
    "recommendedTools": {"type": "array", "items": {"$ref": "definitions.json#/$defs/tool"}},
    "efficiencyTips": {"type": "array", "items": {"type": "string"}},
    "alternatives": {"type": "array", "items": {"type": "string"}}
  }
}`

const toolsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {"$ref": "definitions.json#/$defs/tool"}
}`

const stringsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {"type": "string", "minLength": 1}
}`
