package keyed

import (
	"strings"
	"unicode"
)

// A parseFunc consumes a prefix of source. It returns the parsed value and
// the number of bytes consumed, or -1 if source does not match.
type parseFunc[T any] func(source string) (T, int)

func pLit(lit string) parseFunc[string] {
	return func(source string) (string, int) {
		if strings.HasPrefix(source, lit) {
			return lit, len(lit)
		}
		return "", -1
	}
}

// pOneOf matches the first of the literals that prefixes the source.
func pOneOf(literals ...string) parseFunc[string] {
	parsers := make([]parseFunc[string], len(literals))
	for i, lit := range literals {
		parsers[i] = pLit(lit)
	}
	return pFirst(parsers...)
}

func pFirst[T any](parsers ...parseFunc[T]) parseFunc[T] {
	return func(source string) (T, int) {
		for _, p := range parsers {
			if v, n := p(source); n >= 0 {
				return v, n
			}
		}
		var zero T
		return zero, -1
	}
}

func pMany1[T any](p parseFunc[T]) parseFunc[[]T] {
	return func(source string) ([]T, int) {
		var values []T
		consumed := 0
		for {
			v, n := p(source[consumed:])
			if n <= 0 {
				break
			}
			values = append(values, v)
			consumed += n
		}
		if consumed == 0 {
			return nil, -1
		}
		return values, consumed
	}
}

// pSkip runs skip and then p, keeping only the value of p.
func pSkip[S, T any](skip parseFunc[S], p parseFunc[T]) parseFunc[T] {
	return func(source string) (T, int) {
		var zero T
		_, n := skip(source)
		if n < 0 {
			return zero, -1
		}
		v, m := p(source[n:])
		if m < 0 {
			return zero, -1
		}
		return v, n + m
	}
}

// pOpt never fails, an absent match consumes nothing.
func pOpt[T any](p parseFunc[T]) parseFunc[T] {
	return func(source string) (T, int) {
		v, n := p(source)
		if n < 0 {
			var zero T
			return zero, 0
		}
		return v, n
	}
}

func pMap[T, U any](p parseFunc[T], fn func(T) U) parseFunc[U] {
	return func(source string) (U, int) {
		v, n := p(source)
		if n < 0 {
			var zero U
			return zero, -1
		}
		return fn(v), n
	}
}

// pValue parses a value that ends at the first unescaped whitespace.
func pValue(source string) (string, int) {
	var b strings.Builder
	i := 0
	for i < len(source) {
		c := source[i]
		if c == '\\' && i+1 < len(source) && unicode.IsSpace(rune(source[i+1])) {
			b.WriteByte(source[i+1])
			i += 2
			continue
		}
		if unicode.IsSpace(rune(c)) {
			break
		}
		b.WriteByte(c)
		i++
	}
	if b.Len() == 0 {
		return "", -1
	}
	return b.String(), i
}

func pProperty(source string) (string, int) {
	i := 0
	for i < len(source) && (source[i] == '_' || unicode.IsLetter(rune(source[i])) || unicode.IsDigit(rune(source[i]))) {
		i++
	}
	if i == 0 {
		return "", -1
	}
	return source[:i], i
}
