package types

import (
	"fmt"
	"strings"
)

// Language identifies the printed language of a physical card.
type Language string

const (
	LangEN Language = "en" // English
	LangPT Language = "pt" // Portuguese
)

// languages is the closed set of languages the toolset understands.
// Extraction parsing, the reply schema and aggregation all read from here.
var languages = []Language{LangEN, LangPT}

// Languages returns the supported languages in their fixed output order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LanguageStrings returns Languages as plain strings (for schema enums).
func LanguageStrings() []string {
	out := make([]string, len(languages))
	for i, l := range languages {
		out[i] = string(l)
	}
	return out
}

// Valid reports whether l is in the supported set.
func (l Language) Valid() bool {
	for _, known := range languages {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLanguage normalizes s and checks it against the supported set.
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unsupported language %q (valid: %v)", s, LanguageStrings())
	}
	return l, nil
}

// Card is one physical card detected in a photo.
// Multiple copies of the same card are separate Card values.
type Card struct {
	Name     string   `json:"name"`
	Language Language `json:"language"`
}

// Collection is the ordered set of cards gathered during one run.
type Collection struct {
	Cards []Card `json:"cards"`
}

// NewCollection returns an empty collection whose Cards slice is non-nil,
// so it serializes as an empty array rather than null.
func NewCollection() Collection {
	return Collection{Cards: []Card{}}
}

// Append adds cards to the end of the collection, preserving order.
func (c *Collection) Append(cards ...Card) {
	if c.Cards == nil {
		c.Cards = []Card{}
	}
	c.Cards = append(c.Cards, cards...)
}

// Len returns the number of observations in the collection.
func (c Collection) Len() int {
	return len(c.Cards)
}
