package i18n

import (
	"path"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/iamwavecut/guardbot/resources"
)

// sourceLanguage is the language the code itself is written in, lookups for
// it short-circuit.
const sourceLanguage = "en"

type catalog struct {
	mu     sync.Mutex
	byLang map[string]map[string]string
}

var translations = &catalog{byLang: map[string]map[string]string{}}

// Get returns the translation of key for lang, falling back to the key
// itself when no translation exists.
func Get(key, lang string) string {
	if lang == "" || lang == sourceLanguage {
		return key
	}
	if translated, ok := translations.table(lang)[key]; ok {
		return translated
	}
	log.Tracef("no translation for key %q in %q", key, lang)
	return key
}

// table lazily loads a language file from the embedded resources. A failed
// load is cached as an empty table, there is no point retrying per message.
func (c *catalog) table(lang string) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if table, ok := c.byLang[lang]; ok {
		return table
	}
	table := map[string]string{}
	raw, err := resources.FS.ReadFile(path.Join("i18n", lang+".yml"))
	if err != nil {
		log.WithError(err).Warnf("no translations for %q", lang)
	} else if err := yaml.Unmarshal(raw, &table); err != nil {
		log.WithError(err).Errorf("cant parse translations for %q", lang)
	}
	c.byLang[lang] = table
	return table
}
