package match

import (
	"fmt"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
	"golang.org/x/net/html"
)

// StructuralMatcher finds HTML start tags by name and attribute presence.
// It walks the token stream only; no document tree is built.
type StructuralMatcher struct {
	tag       string
	attribute string
}

// NewStructuralMatcher validates a predicate and returns its matcher
func NewStructuralMatcher(p models.StructuralPredicate) (*StructuralMatcher, error) {
	tag := strings.ToLower(strings.TrimSpace(p.Tag))
	attr := strings.ToLower(strings.TrimSpace(p.Attribute))

	if tag == "" {
		return nil, fmt.Errorf("structural predicate needs a tag")
	}
	if tag != "*" && !isName(tag) {
		return nil, fmt.Errorf("invalid tag name %q", p.Tag)
	}
	if attr != "" && !isName(attr) {
		return nil, fmt.Errorf("invalid attribute name %q", p.Attribute)
	}
	if tag == "*" && attr == "" {
		return nil, fmt.Errorf("wildcard tag requires an attribute")
	}

	return &StructuralMatcher{tag: tag, attribute: attr}, nil
}

// FindAll returns the raw span of every matching start or self-closing tag
func (m *StructuralMatcher) FindAll(text string) [][]int {
	var spans [][]int

	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return spans
		}

		// TagName lower-cases the buffer in place, so take the length first
		size := len(z.Raw())

		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, hasAttr := z.TagName()
			if (m.tag == "*" || string(name) == m.tag) && m.hasAttribute(z, hasAttr) {
				spans = append(spans, []int{offset, offset + size})
			}
		}

		offset += size
	}
}

func (m *StructuralMatcher) hasAttribute(z *html.Tokenizer, more bool) bool {
	if m.attribute == "" {
		return true
	}
	for more {
		var key []byte
		key, _, more = z.TagAttr()
		if string(key) == m.attribute {
			return true
		}
	}
	return false
}

func isName(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_', c == ':':
		default:
			return false
		}
	}
	return s != ""
}
