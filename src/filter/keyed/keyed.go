// Package keyed implements a search query language for tracks.
package keyed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"spotit/src/filter"
	"spotit/src/library"
)

// Properties that are compared as numbers by the <, > and = operators.
var ordinalProperties = map[string]bool{
	"duration": true,
}

type nojsonQuery struct {
	Query    string   `json:"query"`
	Untagged []string `json:"untagged"`

	rules []rule
}

// A Query is a compiled query string.
type Query nojsonQuery

// CompileQuery compiles a search query so that it may be used to discriminate
// tracks.
//
// The query is made up of keywords of the following format:
//
//	[property(:|=|<|>)]<value>
//
// A track should match all the keywords to pass selection. If no property is
// set, the value is searched for in the fields specified by untaggedFields.
//
// A colon matches tracks of which the property contains the value, an equals
// sign requires the property to be equal. The duration can be compared using
// <, > and = followed by a number of seconds. All string comparisons are case
// insensitive. A literal whitespace character may be specified by a leading
// backslash.
//
// The query could look something like this:
//
//	foo bar title:something artist:deep\ purple duration<300
func CompileQuery(query string, untaggedFields []string) (*Query, error) {
	rules, err := compileRules(query, untaggedFields)
	if err != nil {
		return nil, err
	}
	return &Query{
		Query:    query,
		Untagged: untaggedFields,
		rules:    rules,
	}, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (sq *Query) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, (*nojsonQuery)(sq)); err != nil {
		return err
	}
	rules, err := compileRules(sq.Query, sq.Untagged)
	if err != nil {
		return err
	}
	sq.rules = rules
	return nil
}

// Filter implements the filter.Filter interface.
func (sq *Query) Filter(track library.Track) (filter.SearchResult, bool) {
	if sq == nil || len(sq.rules) == 0 {
		return filter.SearchResult{}, false
	}
	result := filter.SearchResult{
		Track:   track,
		Matches: map[string][]filter.SearchMatch{},
	}
	for _, r := range sq.rules {
		if !r.match(&track, &result) {
			return filter.SearchResult{}, false
		}
	}
	return result, true
}

func compileRules(query string, untagged []string) ([]rule, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	rules, r := parser(untagged)(query)
	if r != len(query) {
		return nil, fmt.Errorf("query does not match the expected format")
	}
	for _, r := range rules {
		if _, ok := r.(unkeyedRule); ok && len(untagged) == 0 {
			return nil, fmt.Errorf("keywords without property indicators require untaggedFields to be set")
		}
	}
	return rules, nil
}

// parser builds the parser of a complete query. Keywords are separated by
// whitespace, which may also lead and trail.
func parser(untagged []string) parseFunc[[]rule] {
	white := pMany1(pOneOf(" ", "\t", "\n"))
	keyword := pFirst[rule](pKeyedRule, pMap[string, rule](pValue, func(needle string) rule {
		return unkeyedRule{properties: untagged, needle: needle}
	}))
	subsequent := pMany1(pSkip(white, keyword))

	return func(source string) ([]rule, int) {
		_, consumed := pOpt(white)(source)
		first, n := keyword(source[consumed:])
		if n < 0 {
			return nil, -1
		}
		consumed += n
		rest, n := pOpt(subsequent)(source[consumed:])
		consumed += n
		_, n = pOpt(white)(source[consumed:])
		return append([]rule{first}, rest...), consumed + n
	}
}

func pKeyedRule(source string) (rule, int) {
	property, n := pProperty(source)
	if n < 0 {
		return nil, -1
	}
	op, m := pOneOf(":", "=", "<", ">")(source[n:])
	if m < 0 {
		return nil, -1
	}
	value, k := pValue(source[n+m:])
	if k < 0 {
		return nil, -1
	}
	r := n + m + k

	if ordinalProperties[property] && op != ":" {
		ref, err := strconv.Atoi(value)
		if err != nil {
			return nil, -1
		}
		switch op {
		case "=":
			return ordEqualsRule{property: property, ref: ref}, r
		case "<":
			return ordLessThanRule{property: property, ref: ref}, r
		case ">":
			return ordGreaterThanRule{property: property, ref: ref}, r
		}
	}
	switch op {
	case ":":
		return stringContainsRule{property: property, needle: value}, r
	case "=":
		return stringEqualsRule{property: property, needle: value}, r
	}
	return nil, -1
}
