// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package pdptest

import (
	"path"
	"strings"
)

// MatchPath reports whether a policy path matches a glob pattern.
// Malformed patterns never match.
func MatchPath(pattern, policyPath string) bool {
	if pattern == "**" {
		return true
	}

	if !strings.Contains(pattern, "**") {
		return matchGlob(pattern, policyPath)
	}

	// Trailing: "/admin/**" matches "/admin" and anything below it.
	if strings.HasSuffix(pattern, "/**") {
		prefix := pattern[:len(pattern)-3]
		if matchGlob(prefix, policyPath) {
			return true
		}
		return hasMatchingPrefix(prefix, policyPath)
	}

	// Leading: "**/read" matches "read" at any depth.
	if strings.HasPrefix(pattern, "**/") {
		suffix := pattern[3:]
		if matchGlob(suffix, policyPath) {
			return true
		}
		return hasMatchingSuffix(suffix, policyPath)
	}

	// Interior: "/docs/**/read". Only the first /**/ is special.
	separatorIndex := strings.Index(pattern, "/**/")
	if separatorIndex < 0 {
		return false
	}
	prefix := pattern[:separatorIndex]
	suffix := pattern[separatorIndex+4:]
	if matchGlob(prefix+"/"+suffix, policyPath) {
		return true
	}

	prefixDepth := strings.Count(prefix, "/") + 1
	suffixDepth := strings.Count(suffix, "/") + 1
	segments := strings.Split(policyPath, "/")
	if len(segments) < prefixDepth+1+suffixDepth {
		return false
	}
	if !matchGlob(prefix, strings.Join(segments[:prefixDepth], "/")) {
		return false
	}
	if !matchGlob(suffix, strings.Join(segments[len(segments)-suffixDepth:], "/")) {
		return false
	}
	for _, segment := range segments[prefixDepth : len(segments)-suffixDepth] {
		if segment == "" {
			return false
		}
	}
	return true
}

func matchGlob(pattern, s string) bool {
	matched, err := path.Match(pattern, s)
	return err == nil && matched
}

// hasMatchingPrefix reports whether policyPath starts with segments that
// match pattern and has at least one more segment after them.
func hasMatchingPrefix(pattern, policyPath string) bool {
	depth := strings.Count(pattern, "/") + 1
	segments := strings.SplitN(policyPath, "/", depth+1)
	if len(segments) <= depth {
		return false
	}
	return matchGlob(pattern, strings.Join(segments[:depth], "/"))
}

// hasMatchingSuffix reports whether policyPath ends with segments that
// match pattern and has at least one more segment before them.
func hasMatchingSuffix(pattern, policyPath string) bool {
	depth := strings.Count(pattern, "/") + 1
	segments := strings.Split(policyPath, "/")
	if len(segments) <= depth {
		return false
	}
	return matchGlob(pattern, strings.Join(segments[len(segments)-depth:], "/"))
}
