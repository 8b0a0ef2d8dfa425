package keyed

import (
	"strings"

	"spotit/src/filter"
	"spotit/src/library"
)

type rule interface {
	// match checks the track and records what was matched in the result.
	match(track *library.Track, result *filter.SearchResult) bool
}

type stringContainsRule struct {
	property string
	needle   string
}

func (r stringContainsRule) match(track *library.Track, result *filter.SearchResult) bool {
	return containsMatch(track, result, r.property, r.needle)
}

type stringEqualsRule struct {
	property string
	needle   string
}

func (r stringEqualsRule) match(track *library.Track, result *filter.SearchResult) bool {
	val, ok := track.Attr(r.property).(string)
	if !ok || !strings.EqualFold(val, r.needle) {
		return false
	}
	result.AddMatch(r.property, 0, len(val))
	return true
}

type ordEqualsRule struct {
	property string
	ref      int
}

func (r ordEqualsRule) match(track *library.Track, result *filter.SearchResult) bool {
	return ordMatch(track, result, r.property, func(v int) bool { return v == r.ref })
}

type ordLessThanRule struct {
	property string
	ref      int
}

func (r ordLessThanRule) match(track *library.Track, result *filter.SearchResult) bool {
	return ordMatch(track, result, r.property, func(v int) bool { return v < r.ref })
}

type ordGreaterThanRule struct {
	property string
	ref      int
}

func (r ordGreaterThanRule) match(track *library.Track, result *filter.SearchResult) bool {
	return ordMatch(track, result, r.property, func(v int) bool { return v > r.ref })
}

type unkeyedRule struct {
	properties []string
	needle     string
}

func (r unkeyedRule) match(track *library.Track, result *filter.SearchResult) bool {
	found := false
	for _, prop := range r.properties {
		if containsMatch(track, result, prop, r.needle) {
			found = true
		}
	}
	return found
}

func containsMatch(track *library.Track, result *filter.SearchResult, property, needle string) bool {
	val, ok := track.Attr(property).(string)
	if !ok {
		return false
	}
	i := strings.Index(strings.ToLower(val), strings.ToLower(needle))
	if i < 0 {
		return false
	}
	result.AddMatch(property, i, i+len(needle))
	return true
}

// ordMatch compares the numeric value of a property. The duration is compared
// in seconds.
func ordMatch(track *library.Track, result *filter.SearchResult, property string, cmp func(int) bool) bool {
	val, ok := track.Attr(property).(string)
	if !ok || val == "" {
		return false
	}
	d, err := library.ParseDuration(val)
	if err != nil {
		return false
	}
	if !cmp(int(d.Seconds())) {
		return false
	}
	result.AddMatch(property, 0, len(val))
	return true
}
