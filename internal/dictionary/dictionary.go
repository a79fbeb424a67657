// Package dictionary provides per-language threat keyword lists partitioned
// into the fixed model categories.
package dictionary

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/vigil/internal/model"
	"gopkg.in/yaml.v3"
)

// Dictionary is an immutable keyword list for one language
type Dictionary struct {
	language string
	entries  map[model.Category][]string
}

// Language returns the dictionary's language identifier
func (d *Dictionary) Language() string {
	return d.language
}

// Entries returns the ordered entries of one category. Callers must not
// modify the returned slice.
func (d *Dictionary) Entries(c model.Category) []string {
	return d.entries[c]
}

// Size returns the total number of entries across all categories
func (d *Dictionary) Size() int {
	n := 0
	for _, c := range model.Categories {
		n += len(d.entries[c])
	}
	return n
}

// Set is a validated collection of dictionaries with a base-language fallback.
// A Set is read-only after construction and safe for concurrent use.
type Set struct {
	base    string
	dicts   map[string]*Dictionary
	aliases map[string]string
	source  string
}

// New validates raw dictionary data and builds a Set. Every language must
// define every category and the base language must be present.
func New(source, base string, languages map[string]map[model.Category][]string, aliases map[string]string) (*Set, error) {
	base = canonical(base)
	if base == "" {
		return nil, &model.ConfigurationError{Source: source, Reason: "base language is not set"}
	}
	if len(languages) == 0 {
		return nil, &model.ConfigurationError{Source: source, Reason: "no languages defined"}
	}

	s := &Set{
		base:    base,
		dicts:   make(map[string]*Dictionary, len(languages)),
		aliases: make(map[string]string, len(aliases)),
		source:  source,
	}

	for lang, cats := range languages {
		name := canonical(lang)
		if name == "" {
			return nil, &model.ConfigurationError{Source: source, Reason: "empty language identifier"}
		}
		if _, dup := s.dicts[name]; dup {
			return nil, &model.ConfigurationError{Source: source, Reason: fmt.Sprintf("language %q defined twice", name)}
		}

		for c := range cats {
			if !c.Valid() {
				return nil, &model.ConfigurationError{Source: source, Reason: fmt.Sprintf("language %q: unknown category %q", name, c)}
			}
		}

		entries := make(map[model.Category][]string, len(model.Categories))
		for _, c := range model.Categories {
			words, ok := cats[c]
			if !ok {
				return nil, &model.ConfigurationError{Source: source, Reason: fmt.Sprintf("language %q: missing category %q", name, c)}
			}
			list := make([]string, 0, len(words))
			for _, w := range words {
				w = strings.TrimSpace(w)
				if w == "" {
					return nil, &model.ConfigurationError{Source: source, Reason: fmt.Sprintf("language %q: empty entry in %q", name, c)}
				}
				list = append(list, w)
			}
			entries[c] = list
		}

		s.dicts[name] = &Dictionary{language: name, entries: entries}
	}

	if _, ok := s.dicts[base]; !ok {
		return nil, &model.ConfigurationError{Source: source, Reason: fmt.Sprintf("base language %q has no dictionary, no fallback available", base)}
	}

	for alias, target := range aliases {
		target = canonical(target)
		if _, ok := s.dicts[target]; !ok {
			return nil, &model.ConfigurationError{Source: source, Reason: fmt.Sprintf("alias %q points to unknown language %q", alias, target)}
		}
		s.aliases[canonical(alias)] = target
	}

	return s, nil
}

// Builtin returns the dictionaries compiled into the binary
func Builtin() (*Set, error) {
	return New(builtinSource, model.BaseLanguage, builtinLanguages, builtinAliases)
}

// fileFormat is the on-disk YAML layout
type fileFormat struct {
	BaseLanguage string                         `yaml:"base_language"`
	Aliases      map[string]string              `yaml:"aliases"`
	Languages    map[string]map[string][]string `yaml:"languages"`
}

// Load reads a YAML dictionary file. Any defect is a *model.ConfigurationError.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Reason: fmt.Sprintf("read dictionary file: %v", err)}
	}
	return Parse(path, data)
}

// Parse builds a Set from YAML dictionary data
func Parse(source string, data []byte) (*Set, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &model.ConfigurationError{Source: source, Reason: fmt.Sprintf("parse dictionary: %v", err)}
	}

	base := f.BaseLanguage
	if base == "" {
		base = model.BaseLanguage
	}

	languages := make(map[string]map[model.Category][]string, len(f.Languages))
	for lang, cats := range f.Languages {
		converted := make(map[model.Category][]string, len(cats))
		for c, words := range cats {
			converted[model.Category(strings.TrimSpace(c))] = words
		}
		languages[lang] = converted
	}

	return New(source, base, languages, f.Aliases)
}

// FromConfig loads the configured dictionary file, or the built-in set when
// no path is configured. A configured base language overrides the file's.
func FromConfig(cfg model.DictionaryConfig) (*Set, error) {
	var (
		s   *Set
		err error
	)
	if cfg.Path != "" {
		s, err = Load(cfg.Path)
	} else {
		s, err = Builtin()
	}
	if err != nil {
		return nil, err
	}

	if cfg.BaseLanguage != "" && canonical(cfg.BaseLanguage) != s.base {
		return s.WithBase(cfg.BaseLanguage)
	}
	return s, nil
}

// WithBase returns a copy of the set using a different base language
func (s *Set) WithBase(base string) (*Set, error) {
	name := s.aliasOrSelf(base)
	if _, ok := s.dicts[name]; !ok {
		return nil, &model.ConfigurationError{Source: s.source, Reason: fmt.Sprintf("base language %q has no dictionary, no fallback available", base)}
	}
	return &Set{base: name, dicts: s.dicts, aliases: s.aliases, source: s.source}, nil
}

// BaseLanguage returns the fallback language identifier
func (s *Set) BaseLanguage() string {
	return s.base
}

// Source returns where the set was loaded from
func (s *Set) Source() string {
	return s.source
}

// Has reports whether a dedicated dictionary exists for language
func (s *Set) Has(language string) bool {
	_, ok := s.dicts[s.aliasOrSelf(language)]
	return ok
}

// Resolve maps a language identifier (name, alias or the translated tag) to
// the dictionary that serves it. Unknown languages resolve to the base.
func (s *Set) Resolve(language string) string {
	name := s.aliasOrSelf(language)
	if name == model.LanguageTranslated {
		return s.base
	}
	if _, ok := s.dicts[name]; ok {
		return name
	}
	return s.base
}

// Lookup returns the dictionary for language, falling back to the base
// language. It never returns nil.
func (s *Set) Lookup(language string) *Dictionary {
	return s.dicts[s.Resolve(language)]
}

// IsBase reports whether language resolves to the base language by name or
// alias (not by fallback).
func (s *Set) IsBase(language string) bool {
	return s.aliasOrSelf(language) == s.base
}

// Languages returns all dictionary languages, sorted
func (s *Set) Languages() []string {
	langs := make([]string, 0, len(s.dicts))
	for lang := range s.dicts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func (s *Set) aliasOrSelf(language string) string {
	name := canonical(language)
	if target, ok := s.aliases[name]; ok {
		return target
	}
	return name
}

func canonical(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
