package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// forbiddenKeywords may not appear as bare words anywhere in a guarded query.
var forbiddenKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "UPSERT": {},
	"DROP": {}, "CREATE": {}, "ALTER": {}, "TRUNCATE": {},
	"ATTACH": {}, "DETACH": {}, "PRAGMA": {}, "VACUUM": {}, "REINDEX": {},
	"GRANT": {}, "REVOKE": {},
}

// GuardSQL accepts a single read-only SELECT or WITH statement and rejects
// everything else with domain.ErrUnsafeStatement. String literals, quoted
// identifiers and comments are ignored when scanning for keywords.
func GuardSQL(query string) error {
	words, statements := scanSQL(query)
	if len(words) == 0 {
		return fmt.Errorf("empty query: %w", domain.ErrUnsafeStatement)
	}
	if statements > 1 {
		return fmt.Errorf("multiple statements: %w", domain.ErrUnsafeStatement)
	}
	if first := words[0]; first != "SELECT" && first != "WITH" {
		return fmt.Errorf("%s statements are not allowed: %w", first, domain.ErrUnsafeStatement)
	}
	for i, w := range words {
		if _, bad := forbiddenKeywords[w]; bad {
			return fmt.Errorf("%s is not allowed: %w", w, domain.ErrUnsafeStatement)
		}
		// replace() is a scalar function; REPLACE INTO is a write.
		if w == "REPLACE" && i+1 < len(words) && words[i+1] == "INTO" {
			return fmt.Errorf("REPLACE INTO is not allowed: %w", domain.ErrUnsafeStatement)
		}
	}
	return nil
}

// scanSQL returns the upper-cased bare words of query and the number of
// non-empty statements separated by semicolons.
func scanSQL(query string) ([]string, int) {
	var (
		words      []string
		word       strings.Builder
		statements int
		pending    bool // current statement has content
	)
	flush := func() {
		if word.Len() > 0 {
			words = append(words, strings.ToUpper(word.String()))
			word.Reset()
		}
	}

	rs := []rune(query)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\'' || c == '"' || c == '`' || c == '[':
			flush()
			closer := c
			if c == '[' {
				closer = ']'
			}
			for i++; i < len(rs); i++ {
				if rs[i] == closer {
					if i+1 < len(rs) && rs[i+1] == closer && closer != ']' {
						i++
						continue
					}
					break
				}
			}
			pending = true
		case c == '-' && i+1 < len(rs) && rs[i+1] == '-':
			flush()
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(rs) && rs[i+1] == '*':
			flush()
			for i += 2; i < len(rs); i++ {
				if rs[i] == '*' && i+1 < len(rs) && rs[i+1] == '/' {
					i++
					break
				}
			}
		case c == ';':
			flush()
			if pending {
				statements++
				pending = false
			}
		case unicode.IsLetter(c) || c == '_' || (word.Len() > 0 && unicode.IsDigit(c)):
			word.WriteRune(c)
			pending = true
		default:
			flush()
			if !unicode.IsSpace(c) {
				pending = true
			}
		}
	}
	flush()
	if pending {
		statements++
	}
	return words, statements
}
