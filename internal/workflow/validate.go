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

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid workflow data")

// ValidationError lists the violations found in a value
type ValidationError struct {
	Subject    string
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("invalid %s: %s", e.Subject, e.Violations[0])
	}
	return fmt.Sprintf("invalid %s: %d violations: %s", e.Subject, len(e.Violations), strings.Join(e.Violations, "; "))
}

// Unwrap lets errors.Is match ErrInvalid
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(subject string, violations ...string) *ValidationError {
	return &ValidationError{Subject: subject, Violations: violations}
}

// Validator checks plans, tool lists and string lists against the fixed
// JSON Schemas and the structural rules a schema cannot express.
// It is safe for concurrent use.
type Validator struct {
	plan    *jsonschema.Schema
	tools   *jsonschema.Schema
	strings *jsonschema.Schema
}

// NewValidator compiles the embedded schemas
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	resources := map[string]string{
		"definitions.json": definitionsJSON,
		"plan.json":        planSchemaJSON,
		"tools.json":       toolsSchemaJSON,
		"strings.json":     stringsSchemaJSON,
	}
	for name, src := range resources {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", name, err)
		}
		if err := c.AddResource(schemaBaseURL+name, doc); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", name, err)
		}
	}

	v := &Validator{}
	for name, target := range map[string]**jsonschema.Schema{
		"plan.json":    &v.plan,
		"tools.json":   &v.tools,
		"strings.json": &v.strings,
	} {
		compiled, err := c.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		*target = compiled
	}

	return v, nil
}

// DecodePlan validates raw JSON against the plan schema, decodes it and
// checks step ids, dependency references and acyclicity.
func (v *Validator) DecodePlan(raw []byte) (*Plan, error) {
	if err := validateRaw(v.plan, "workflow plan", raw); err != nil {
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, invalid("workflow plan", err.Error())
	}
	plan.Normalize()

	if err := checkPlanStructure(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// DecodeTools validates raw JSON as a non-empty array of tool recommendations
func (v *Validator) DecodeTools(raw []byte) ([]ToolRecommendation, error) {
	if err := validateRaw(v.tools, "tool list", raw); err != nil {
		return nil, err
	}

	var tools []ToolRecommendation
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, invalid("tool list", err.Error())
	}
	if violations := checkTools("", tools); len(violations) > 0 {
		return nil, invalid("tool list", violations...)
	}
	return tools, nil
}

// DecodeStrings validates raw JSON as a non-empty array of non-empty strings
func (v *Validator) DecodeStrings(raw []byte) ([]string, error) {
	if err := validateRaw(v.strings, "string list", raw); err != nil {
		return nil, err
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, invalid("string list", err.Error())
	}
	return out, nil
}

// ValidatePlan runs the full plan validation on an already-built plan
func (v *Validator) ValidatePlan(plan *Plan) error {
	if plan == nil {
		return invalid("workflow plan", "plan is nil")
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return invalid("workflow plan", err.Error())
	}
	_, err = v.DecodePlan(raw)
	return err
}

// ValidateTools runs the full tool list validation on already-built tools
func (v *Validator) ValidateTools(tools []ToolRecommendation) error {
	raw, err := json.Marshal(tools)
	if err != nil {
		return invalid("tool list", err.Error())
	}
	_, err = v.DecodeTools(raw)
	return err
}

func validateRaw(schema *jsonschema.Schema, subject string, raw []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid(subject, fmt.Sprintf("not valid JSON: %v", err))
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return invalid(subject, collectViolations(verr)...)
		}
		return invalid(subject, err.Error())
	}
	return nil
}

// collectViolations walks a ValidationError tree and returns the leaf messages
// prefixed with their instance location.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/" + strings.Join(verr.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}

// checkPlanStructure enforces the rules the schema cannot express
func checkPlanStructure(plan *Plan) error {
	var violations []string

	seen := make(map[string]bool, len(plan.Steps))
	for _, step := range plan.Steps {
		if seen[step.ID] {
			violations = append(violations, fmt.Sprintf("duplicate step id %q", step.ID))
		}
		seen[step.ID] = true
	}

	for _, step := range plan.Steps {
		for _, dep := range step.Dependencies {
			switch {
			case dep == step.ID:
				violations = append(violations, fmt.Sprintf("step %q depends on itself", step.ID))
			case !seen[dep]:
				violations = append(violations, fmt.Sprintf("step %q depends on unknown step %q", step.ID, dep))
			}
		}
		violations = append(violations, checkTools("step "+step.ID+" ", step.Tools)...)
	}
	violations = append(violations, checkTools("recommended ", plan.RecommendedTools)...)

	if len(violations) > 0 {
		return invalid("workflow plan", violations...)
	}

	if cycle := findCycle(plan.Steps); len(cycle) > 0 {
		return invalid("workflow plan", "dependency cycle: "+strings.Join(cycle, " -> "))
	}
	return nil
}

// checkTools verifies that every tool URL is absolute with a host
func checkTools(prefix string, tools []ToolRecommendation) []string {
	var violations []string
	for i, tool := range tools {
		if !IsAbsoluteURL(tool.URL) {
			violations = append(violations, fmt.Sprintf("%stool %d (%s): url %q is not an absolute URL", prefix, i, tool.Name, tool.URL))
		}
	}
	return violations
}

// IsAbsoluteURL reports whether raw parses as a URL with a scheme and a host
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// findCycle returns the step ids forming a dependency cycle, or nil.
// Edges run from a step to each of its dependencies.
func findCycle(steps []Step) []string {
	const (
		unvisited = iota
		visiting
		done
	)

	deps := make(map[string][]string, len(steps))
	for _, s := range steps {
		deps[s.ID] = s.Dependencies
	}

	state := make(map[string]int, len(steps))
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		state[id] = visiting
		path = append(path, id)
		for _, dep := range deps[id] {
			switch state[dep] {
			case visiting:
				for i, p := range path {
					if p == dep {
						cycle := append([]string{}, path[i:]...)
						return append(cycle, dep)
					}
				}
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, s := range steps {
		if state[s.ID] == unvisited {
			if cycle := visit(s.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
