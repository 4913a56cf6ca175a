// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdi

import "strings"

// MatchesClassPattern reports whether className matches pattern.
// Patterns may carry a single leading or trailing '*' (spec §4.3); any
// other pattern is matched for exact equality.
func MatchesClassPattern(className, pattern string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(className, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(className, pattern[:len(pattern)-1])
	default:
		return className == pattern
	}
}

// MatchesClassFilter reports whether className passes a request's
// class inclusion/exclusion filters (spec §4.3's "built-in filter
// semantics"): it must match at least one include pattern (vacuously
// true when there are none) and must not match any exclude pattern.
// This is the one piece of filter logic shared by two layers in this
// module: a real debuggee would enforce it when deciding whether to
// report the event at all, so the mock connection in this package
// applies it there too, which is also where the event manager would
// apply it if it ever needed to re-validate an event against a
// request it didn't create itself.
func MatchesClassFilter(className string, include, exclude []string) bool {
	if len(include) > 0 {
		matched := false
		for _, pattern := range include {
			if MatchesClassPattern(className, pattern) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range exclude {
		if MatchesClassPattern(className, pattern) {
			return false
		}
	}
	return true
}
