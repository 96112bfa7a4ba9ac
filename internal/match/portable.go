package match

import (
	"fmt"
	"strings"
)

// Escapes outside the portable subset. Digits are backreferences.
var unportableEscapes = map[byte]string{
	'1': "backreference", '2': "backreference", '3': "backreference",
	'4': "backreference", '5': "backreference", '6': "backreference",
	'7': "backreference", '8': "backreference", '9': "backreference",
	'k': "named backreference",
	'Q': "quoted literal block", 'E': "quoted literal block",
	'A': "text anchor", 'z': "text anchor", 'Z': "text anchor", 'G': "text anchor",
	'p': "unicode class", 'P': "unicode class",
	'X': "grapheme cluster", 'R': "linebreak escape",
}

// CheckPortable rejects pattern constructs that behave differently (or not at
// all) across regex engines. Allowed: literals, character classes, anchors,
// alternation, groups and quantifiers.
func CheckPortable(pattern string) error {
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		if c == '\\' {
			if i+1 >= len(pattern) {
				return fmt.Errorf("trailing backslash")
			}
			next := pattern[i+1]
			if what, bad := unportableEscapes[next]; bad && !(inClass && isDigit(next)) {
				return fmt.Errorf("unsupported %s \\%c at offset %d", what, next, i)
			}
			i++
			continue
		}

		if inClass {
			if c == '[' && strings.HasPrefix(pattern[i:], "[:") {
				return fmt.Errorf("unsupported POSIX class at offset %d", i)
			}
			if c == ']' {
				inClass = false
			}
			continue
		}

		switch c {
		case '[':
			inClass = true
			// A leading ']' (or '^]') is a literal member of the class
			if strings.HasPrefix(pattern[i+1:], "]") {
				i++
			} else if strings.HasPrefix(pattern[i+1:], "^]") {
				i += 2
			}
		case '(':
			if strings.HasPrefix(pattern[i:], "(?") && !strings.HasPrefix(pattern[i:], "(?:") {
				return fmt.Errorf("unsupported group syntax %q at offset %d", groupPrefix(pattern[i:]), i)
			}
		case '*', '+', '?', '}':
			if i+1 < len(pattern) && pattern[i+1] == '+' {
				return fmt.Errorf("unsupported possessive quantifier at offset %d", i)
			}
		}
	}
	if inClass {
		return fmt.Errorf("unterminated character class")
	}
	return nil
}

func groupPrefix(s string) string {
	if len(s) > 4 {
		return s[:4]
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
