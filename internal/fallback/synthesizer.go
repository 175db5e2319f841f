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

// Package fallback produces deterministic substitute results when the
// completion provider cannot. Content is tailored to the topic of the query
// and to the reason generation failed.
package fallback

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/your-org/workflow-generator/internal/workflow"
)

//go:embed catalog.yaml
var catalogYAML []byte

const defaultAdvisoryKey = "default"

// advisory is the reason-specific text woven into a fallback plan
type advisory struct {
	Description string `yaml:"description"`
	Tip         string `yaml:"tip"`
	Alternative string `yaml:"alternative"`
}

type planDefaults struct {
	TotalEstimatedTime string   `yaml:"total_estimated_time"`
	Complexity         string   `yaml:"complexity"`
	EfficiencyTips     []string `yaml:"efficiency_tips"`
	Alternatives       []string `yaml:"alternatives"`
}

type optimizationContent struct {
	Base       []string            `yaml:"base"`
	Advisories map[string][]string `yaml:"advisories"`
}

type catalog struct {
	Topics           []topic                       `yaml:"topics"`
	General          topic                         `yaml:"general"`
	RecommendedTools []workflow.ToolRecommendation `yaml:"recommended_tools"`
	Plan             planDefaults                  `yaml:"plan"`
	Advisories       map[string]advisory           `yaml:"advisories"`
	Tools            []workflow.ToolRecommendation `yaml:"tools"`
	Optimizations    optimizationContent           `yaml:"optimizations"`
	TabInsight       string                        `yaml:"tab_insight"`
}

// Synthesizer builds fallback results from an immutable content catalog.
// It is safe for concurrent use; every call returns freshly allocated values.
type Synthesizer struct {
	catalog *catalog
}

// NewSynthesizer loads the embedded catalog and checks that every plan it
// can produce passes workflow validation.
func NewSynthesizer() (*Synthesizer, error) {
	return newSynthesizer(catalogYAML)
}

func newSynthesizer(raw []byte) (*Synthesizer, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse fallback catalog: %w", err)
	}

	s := &Synthesizer{catalog: &c}
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("invalid fallback catalog: %w", err)
	}
	return s, nil
}

// check validates the catalog against the same rules applied to provider output
func (s *Synthesizer) check() error {
	c := s.catalog

	if len(c.General.Steps) == 0 {
		return errors.New("general topic has no steps")
	}
	if _, ok := c.Advisories[defaultAdvisoryKey]; !ok {
		return errors.New("missing default advisory")
	}
	if len(c.Tools) != 3 {
		return fmt.Errorf("expected 3 fallback tools, got %d", len(c.Tools))
	}
	if len(c.Optimizations.Base) == 0 {
		return errors.New("no base optimizations")
	}
	if c.TabInsight == "" {
		return errors.New("tab insight is empty")
	}

	validator, err := workflow.NewValidator()
	if err != nil {
		return err
	}
	if err := validator.ValidateTools(c.Tools); err != nil {
		return fmt.Errorf("fallback tools: %w", err)
	}

	topics := append(slices.Clone(c.Topics), c.General)
	for i := range topics {
		for _, reason := range append([]workflow.FailureReason{workflow.ReasonNone}, workflow.AllFailureReasons...) {
			plan := s.buildPlan(&topics[i], "catalog check", reason)
			if err := validator.ValidatePlan(plan); err != nil {
				return fmt.Errorf("topic %s (%s): %w", topics[i].Name, reason, err)
			}
		}
	}
	return nil
}

// Topic returns the name of the topic bucket the query falls into
func (s *Synthesizer) Topic(query string) string {
	return s.catalog.classify(query).Name
}

// WorkflowPlan returns a canned plan for the topic of query, annotated for
// the given failure reason.
func (s *Synthesizer) WorkflowPlan(query string, reason workflow.FailureReason) *workflow.Plan {
	return s.buildPlan(s.catalog.classify(query), query, reason)
}

func (s *Synthesizer) buildPlan(t *topic, query string, reason workflow.FailureReason) *workflow.Plan {
	c := s.catalog
	adv := s.advisoryFor(reason)

	recommended := t.RecommendedTools
	if len(recommended) == 0 {
		recommended = c.RecommendedTools
	}

	plan := &workflow.Plan{
		Title:              "Workflow: " + query,
		Description:        adv.Description,
		TotalEstimatedTime: c.Plan.TotalEstimatedTime,
		Complexity:         c.Plan.Complexity,
		Steps:              cloneSteps(t.Steps),
		RecommendedTools:   slices.Clone(recommended),
		EfficiencyTips:     append(slices.Clone(c.Plan.EfficiencyTips), adv.Tip),
		Alternatives:       append(slices.Clone(c.Plan.Alternatives), adv.Alternative),
	}
	plan.Normalize()
	return plan
}

func (s *Synthesizer) advisoryFor(reason workflow.FailureReason) advisory {
	if adv, ok := s.catalog.Advisories[string(reason)]; ok {
		return adv
	}
	return s.catalog.Advisories[defaultAdvisoryKey]
}

// Tools returns the fixed three general-purpose tool recommendations
func (s *Synthesizer) Tools() []workflow.ToolRecommendation {
	return slices.Clone(s.catalog.Tools)
}

// Optimizations returns the generic optimization tips followed by any tips
// specific to reason.
func (s *Synthesizer) Optimizations(reason workflow.FailureReason) []string {
	tips := slices.Clone(s.catalog.Optimizations.Base)
	return append(tips, s.catalog.Optimizations.Advisories[string(reason)]...)
}

// TabInsight returns the fixed insight used when tab analysis fails
func (s *Synthesizer) TabInsight() string {
	return s.catalog.TabInsight
}

func cloneSteps(steps []workflow.Step) []workflow.Step {
	out := make([]workflow.Step, len(steps))
	for i, step := range steps {
		out[i] = step
		out[i].Tools = slices.Clone(step.Tools)
		out[i].Dependencies = slices.Clone(step.Dependencies)
	}
	return out
}
