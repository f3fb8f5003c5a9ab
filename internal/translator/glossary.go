package translator

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// glossaryFile is the on-disk shape of a glossary config:
//
//	settings:
//	  case_sensitive: false
//	  reload_on_change: true
//	terms:
//	  en:
//	    "graça": "grace"
//	    "Espírito Santo": "Holy Spirit"
type glossaryFile struct {
	Settings struct {
		CaseSensitive  bool `yaml:"case_sensitive"`
		ReloadOnChange bool `yaml:"reload_on_change"`
	} `yaml:"settings"`
	Terms map[string]map[string]string `yaml:"terms"`
}

type glossaryRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Glossary enforces consistent domain terminology in translated text. Terms
// are grouped per target language base code and matched on word boundaries.
type Glossary struct {
	path string

	mu       sync.RWMutex
	rules    map[string][]glossaryRule
	reload   bool
	lastLoad time.Time
}

// LoadGlossary reads the glossary file. A missing path returns an empty
// glossary that applies nothing.
func LoadGlossary(path string) (*Glossary, error) {
	g := &Glossary{path: path, rules: make(map[string][]glossaryRule)}
	if path == "" {
		return g, nil
	}
	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Glossary) load() error {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return fmt.Errorf("failed to read glossary file: %w", err)
	}

	var file glossaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse glossary: %w", err)
	}

	rules := make(map[string][]glossaryRule)
	total := 0
	for lang, terms := range file.Terms {
		for term, replacement := range terms {
			expr := `\b` + regexp.QuoteMeta(term) + `\b`
			if !file.Settings.CaseSensitive {
				expr = `(?i)` + expr
			}
			pattern, err := regexp.Compile(expr)
			if err != nil {
				return fmt.Errorf("invalid glossary term %q: %w", term, err)
			}
			rules[lang] = append(rules[lang], glossaryRule{pattern, replacement})
			total++
		}
	}

	g.mu.Lock()
	g.rules = rules
	g.reload = file.Settings.ReloadOnChange
	g.lastLoad = time.Now()
	g.mu.Unlock()

	log.Printf("Loaded glossary with %d terms for %d languages", total, len(rules))
	return nil
}

func (g *Glossary) reloadIfChanged() {
	g.mu.RLock()
	shouldReload := g.reload
	lastLoad := g.lastLoad
	g.mu.RUnlock()

	if !shouldReload || g.path == "" {
		return
	}
	info, err := os.Stat(g.path)
	if err != nil {
		return
	}
	if info.ModTime().After(lastLoad) {
		log.Printf("Glossary file modified, reloading")
		if err := g.load(); err != nil {
			log.Printf("Failed to reload glossary: %v", err)
		}
	}
}

// Apply rewrites text using the rules for the given target language base
// code. Text without matching terms passes through untouched.
func (g *Glossary) Apply(targetBase, text string) string {
	g.reloadIfChanged()

	g.mu.RLock()
	rules := g.rules[targetBase]
	g.mu.RUnlock()

	for _, rule := range rules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}
