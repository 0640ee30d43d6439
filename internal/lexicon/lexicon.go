package lexicon

import (
	"strings"
	"unicode"

	"gopkg.in/yaml.v2"

	moderation "github.com/iamwavecut/guardbot/internal/handlers/moderation"
	"github.com/iamwavecut/guardbot/internal/infra"
	"github.com/iamwavecut/guardbot/resources"
)

// Checker matches message text against the bundled word lists. Matching is
// whole-word, case-insensitive, and a single heavy hit outranks any number of
// normal ones.
type Checker struct {
	normal map[string]struct{}
	heavy  map[string]struct{}
}

type wordLists struct {
	Normal []string `yaml:"normal"`
	Heavy  []string `yaml:"heavy"`
}

func Load() (*Checker, error) {
	raw, err := resources.FS.ReadFile(infra.GetResourcesPath("lexicon") + "/words.yml")
	if err != nil {
		return nil, err
	}
	var lists wordLists
	if err := yaml.Unmarshal(raw, &lists); err != nil {
		return nil, err
	}

	checker := &Checker{
		normal: make(map[string]struct{}, len(lists.Normal)),
		heavy:  make(map[string]struct{}, len(lists.Heavy)),
	}
	for _, word := range lists.Normal {
		checker.normal[normalize(word)] = struct{}{}
	}
	for _, word := range lists.Heavy {
		checker.heavy[normalize(word)] = struct{}{}
	}
	return checker, nil
}

// Check reports the worst severity found in the text.
func (c *Checker) Check(text string) moderation.Severity {
	severity := moderation.SeverityNone
	for _, token := range tokenize(text) {
		if _, ok := c.heavy[token]; ok {
			return moderation.SeverityHeavy
		}
		if _, ok := c.normal[token]; ok {
			severity = moderation.SeverityNormal
		}
	}
	return severity
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
