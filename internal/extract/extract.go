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

// Package extract recovers a JSON value from completion text that may be
// wrapped in prose or markdown code fences.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when no parseable JSON span is found
var ErrMalformedResponse = errors.New("malformed response")

// Kind selects the JSON shape to look for
type Kind int

const (
	// KindObject looks for a {...} span
	KindObject Kind = iota
	// KindArray looks for a [...] span
	KindArray
)

func (k Kind) delimiters() (byte, byte) {
	if k == KindArray {
		return '[', ']'
	}
	return '{', '}'
}

func (k Kind) String() string {
	if k == KindArray {
		return "array"
	}
	return "object"
}

// Span returns the first balanced JSON span of the given kind. The span is
// guaranteed to be syntactically valid JSON.
func Span(text string, kind Kind) ([]byte, error) {
	cleaned := StripFences(text)

	openCh, closeCh := kind.delimiters()
	start := strings.IndexByte(cleaned, openCh)
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON %s found", ErrMalformedResponse, kind)
	}

	end := matchingClose(cleaned, start, openCh, closeCh)
	if end < 0 {
		return nil, fmt.Errorf("%w: unbalanced JSON %s", ErrMalformedResponse, kind)
	}

	span := []byte(cleaned[start : end+1])
	if !json.Valid(span) {
		return nil, fmt.Errorf("%w: JSON %s does not parse", ErrMalformedResponse, kind)
	}
	return span, nil
}

// Object decodes the first balanced {...} span of text into v
func Object(text string, v any) error {
	return decode(text, KindObject, v)
}

// Array decodes the first balanced [...] span of text into v
func Array(text string, v any) error {
	return decode(text, KindArray, v)
}

func decode(text string, kind Kind, v any) error {
	span, err := Span(text, kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(span, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// StripFences removes a leading ```json or ``` fence line and a trailing ```
// fence from text. Text without fences is returned trimmed.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```") {
		if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
			cleaned = cleaned[nl+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")

	return strings.TrimSpace(cleaned)
}

// matchingClose returns the index of the delimiter closing the one at start,
// skipping over JSON string literals. It returns -1 when the span never closes.
func matchingClose(s string, start int, openCh, closeCh byte) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
