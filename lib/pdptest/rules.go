// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package pdptest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pagegate/pagegate/lib/decision"
)

// Rule maps matching queries to a result.
type Rule struct {
	// Path is a glob over policy paths.
	Path string `yaml:"path"`

	// When constrains the query input: every key must be present in an
	// object input and its value must format (fmt %v) to the given
	// string. Empty matches any input.
	When map[string]string `yaml:"when,omitempty"`

	// Result is returned as the decision's result. A nil Result yields
	// an empty decision.
	Result any `yaml:"result"`
}

// Allow is a rule whose matching queries are allowed.
func Allow(pattern string) Rule {
	return Rule{Path: pattern, Result: true}
}

// Deny is a rule whose matching queries get result false.
func Deny(pattern string) Rule {
	return Rule{Path: pattern, Result: false}
}

// Matches reports whether the rule applies to query.
func (rule Rule) Matches(query decision.Query) bool {
	if !MatchPath(rule.Path, query.Path) {
		return false
	}
	if len(rule.When) == 0 {
		return true
	}
	input, ok := query.Input.(map[string]any)
	if !ok {
		return false
	}
	for key, want := range rule.When {
		value, present := input[key]
		if !present || fmt.Sprint(value) != want {
			return false
		}
	}
	return true
}

// Evaluate returns the decision of the first matching rule, or an empty
// decision when none matches.
func Evaluate(rules []Rule, query decision.Query) decision.Decision {
	for _, rule := range rules {
		if rule.Matches(query) {
			return decision.Decision{Result: rule.Result}
		}
	}
	return decision.Decision{}
}

// rulesFile is the YAML layout read by LoadRules.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule file:
//
//	rules:
//	  - path: /tickets/*
//	    when: {role: admin}
//	    result: true
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	for index, rule := range file.Rules {
		if rule.Path == "" {
			return nil, fmt.Errorf("parsing rules %s: rule %d has no path", path, index)
		}
	}
	return file.Rules, nil
}
