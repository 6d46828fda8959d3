package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Submission is what a browser would post for the page: the action URL and
// the form fields, in the order they were collected.
type Submission struct {
	Action string
	Fields url.Values

	order   []string
	secrets map[string]bool
}

func newSubmission(action string) *Submission {
	return &Submission{Action: action, Fields: url.Values{}}
}

// Set replaces the values of name.
func (s *Submission) Set(name string, values ...string) {
	if _, ok := s.Fields[name]; !ok {
		s.order = append(s.order, name)
	}
	s.Fields[name] = append([]string(nil), values...)
}

// Secret marks name as sensitive so pretty output masks it.
func (s *Submission) Secret(name string) {
	if s.secrets == nil {
		s.secrets = make(map[string]bool)
	}
	s.secrets[name] = true
}

// Merge copies values into the submission, keeping the key order stable.
func (s *Submission) Merge(values url.Values) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Set(name, values[name]...)
	}
}

func (s *Submission) names() []string {
	out := make([]string, 0, len(s.Fields))
	seen := make(map[string]bool, len(s.Fields))
	for _, name := range s.order {
		if _, ok := s.Fields[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range s.Fields {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

type submissionJSON struct {
	Method string         `json:"method"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields"`
}

func (s *Submission) jsonBytes() ([]byte, error) {
	fields := make(map[string]any, len(s.Fields))
	for name, values := range s.Fields {
		if len(values) == 1 {
			fields[name] = values[0]
			continue
		}
		fields[name] = values
	}
	data, err := json.MarshalIndent(submissionJSON{Method: "POST", Action: s.Action, Fields: fields}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: marshal submission: %w", err)
	}
	return data, nil
}

func (s *Submission) pretty() string {
	var b strings.Builder
	fmt.Fprintf(&b, "POST %s\n", s.Action)
	for _, name := range s.names() {
		for _, value := range s.Fields[name] {
			if s.secrets[name] && value != "" {
				value = strings.Repeat("*", 8)
			}
			fmt.Fprintf(&b, "  %s: %s\n", name, value)
		}
	}
	return b.String()
}
