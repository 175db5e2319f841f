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

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayWithProseAndFence(t *testing.T) {
	text := "Here is your result:\n```json\n[{\"name\":\"X\"}]\n```\nThanks!"

	var got []map[string]any
	require.NoError(t, Array(text, &got))
	assert.Equal(t, []map[string]any{{"name": "X"}}, got)
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
		want string
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			kind: KindObject,
			want: `{"a": 1}`,
		},
		{
			name: "labeled fence",
			text: "```json\n{\"a\": 1}\n```",
			kind: KindObject,
			want: `{"a": 1}`,
		},
		{
			name: "unlabeled fence",
			text: "```\n{\"a\": 1}\n```",
			kind: KindObject,
			want: `{"a": 1}`,
		},
		{
			name: "nested object with trailing prose",
			text: `Sure! {"a": {"b": [1, 2]}, "c": 3} Let me know if you need more.`,
			kind: KindObject,
			want: `{"a": {"b": [1, 2]}, "c": 3}`,
		},
		{
			name: "braces inside strings",
			text: `{"title": "use } and { carefully", "escaped": "quote \" }"}`,
			kind: KindObject,
			want: `{"title": "use } and { carefully", "escaped": "quote \" }"}`,
		},
		{
			name: "first of two arrays",
			text: `["one"] and then ["two"]`,
			kind: KindArray,
			want: `["one"]`,
		},
		{
			name: "array inside object text is found for array kind",
			text: `{"items": ["x", "y"]}`,
			kind: KindArray,
			want: `["x", "y"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := Span(tt.text, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(span))
		})
	}
}

func TestSpanFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
	}{
		{name: "unbalanced object", text: `{ "a": 1`, kind: KindObject},
		{name: "no object", text: `I could not produce a plan.`, kind: KindObject},
		{name: "no array", text: `{"a": 1}`, kind: KindArray},
		{name: "trailing comma is not repaired", text: `{"a": 1,}`, kind: KindObject},
		{name: "single quotes", text: `{'a': 1}`, kind: KindObject},
		{name: "empty", text: ``, kind: KindArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Span(tt.text, tt.kind)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestObjectTypeMismatch(t *testing.T) {
	var target struct {
		Count int `json:"count"`
	}
	err := Object(`{"count": "many"}`, &target)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	require.NoError(t, Object(`result: {"count": 3}`, &target))
	assert.Equal(t, 3, target.Count)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `[1]`, StripFences("```json\n[1]\n```"))
	assert.Equal(t, `[1]`, StripFences("```\n[1]\n```"))
	assert.Equal(t, `[1]`, StripFences("  [1]  "))
	assert.Equal(t, `text`, StripFences("text"))
}
