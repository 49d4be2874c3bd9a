package menu

import (
	"strings"
	"unicode"
)

// MatchStatus represents the status of a match operation
type MatchStatus int

const (
	Matched MatchStatus = iota
	Ambiguous
	Unmatched
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

func (s MatchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MatchResult contains the result of a matching operation
type MatchResult struct {
	Status     MatchStatus `json:"status"`
	Product    *Product    `json:"product,omitempty"`    // when Matched
	Candidates []Product   `json:"candidates,omitempty"` // when Ambiguous
}

// Matcher scores free text typed by a waiter against product keywords.
type Matcher struct {
	products   []Product
	keywordMap [][]string // pre-tokenized keywords per product
}

const (
	sizeWeight    = 5
	regularWeight = 1
)

// Size words narrow a search: "agua grande" must not match the small one.
var sizeKeywords = map[string]bool{
	"chico":   true,
	"chica":   true,
	"mediano": true,
	"mediana": true,
	"grande":  true,
	"doble":   true,
}

func NewMatcher(products []Product) *Matcher {
	m := &Matcher{
		products:   products,
		keywordMap: make([][]string, len(products)),
	}

	for i, p := range products {
		source := p.Keywords
		if source == "" {
			source = p.Name
		}
		parts := strings.FieldsFunc(source, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
		keywords := make([]string, 0, len(parts)+1)
		for _, part := range parts {
			if normalized := normalize(part); normalized != "" {
				keywords = append(keywords, normalized)
			}
		}
		if p.Code != "" {
			keywords = append(keywords, normalize(p.Code))
		}
		m.keywordMap[i] = keywords
	}

	return m
}

// Match finds the best-scoring available products for text.
func (m *Matcher) Match(text string) MatchResult {
	inputTokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalize(text)) {
		inputTokens[tok] = true
	}

	inputSizes := make(map[string]bool)
	for tok := range inputTokens {
		if sizeKeywords[tok] {
			inputSizes[tok] = true
		}
	}

	maxScore := 0
	var top []Product

	for i, p := range m.products {
		if !p.Available {
			continue
		}
		keywords := m.keywordMap[i]

		// Hard filter: a size in the input must be among the product's keywords.
		if !containsAll(keywords, inputSizes) {
			continue
		}

		score := 0
		for _, kw := range keywords {
			if inputTokens[kw] {
				if sizeKeywords[kw] {
					score += sizeWeight
				} else {
					score += regularWeight
				}
			}
		}

		switch {
		case score == 0 || score < maxScore:
		case score > maxScore:
			maxScore = score
			top = []Product{p}
		default:
			top = append(top, p)
		}
	}

	switch len(top) {
	case 0:
		return MatchResult{Status: Unmatched}
	case 1:
		return MatchResult{Status: Matched, Product: &top[0]}
	}
	return MatchResult{Status: Ambiguous, Candidates: top}
}

func containsAll(keywords []string, want map[string]bool) bool {
	for w := range want {
		found := false
		for _, kw := range keywords {
			if kw == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// normalize lowercases, folds common Spanish accents, and replaces anything
// that is not a letter or digit with a single space.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		r = foldAccent(unicode.ToLower(r))
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

func foldAccent(r rune) rune {
	switch r {
	case 'á':
		return 'a'
	case 'é':
		return 'e'
	case 'í':
		return 'i'
	case 'ó':
		return 'o'
	case 'ú', 'ü':
		return 'u'
	}
	return r
}
