package extract

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spigell/cvrank/internal/text"
)

const minSkillLength = 2

var defaultSkills = []string{
	"python", "javascript", "typescript", "java", "golang", "rust", "kotlin", "swift",
	"php", "ruby", "scala", "c++", "c#", ".net", "react", "react native", "angular",
	"vue.js", "django", "flask", "fastapi", "spring", "spring boot", "laravel", "symfony",
	"express", "node.js", "next.js", "sql", "postgresql", "mysql", "mongodb", "redis",
	"elasticsearch", "kafka", "rabbitmq", "docker", "kubernetes", "terraform", "ansible",
	"jenkins", "aws", "azure", "gcp", "git", "github", "gitlab", "ci/cd", "linux",
	"agile", "scrum", "jira", "api", "rest", "graphql", "grpc", "microservices",
	"machine learning", "deep learning", "nlp", "tensorflow", "pytorch", "pandas",
	"numpy", "scikit-learn", "spark", "hadoop", "html", "css", "sass", "bootstrap",
	"tailwind", "figma", "power bi", "tableau", "excel",
}

var defaultAliases = map[string]string{
	"k8s":                 "kubernetes",
	"postgres":            "postgresql",
	"js":                  "javascript",
	"ts":                  "typescript",
	"reactjs":             "react",
	"react.js":            "react",
	"nodejs":              "node.js",
	"vue":                 "vue.js",
	"vuejs":               "vue.js",
	"nextjs":              "next.js",
	"sklearn":             "scikit-learn",
	"mongo":               "mongodb",
	"restful":             "rest",
	"cpp":                 "c++",
	"c sharp":             "c#",
	"amazon web services": "aws",
	"google cloud":        "gcp",
	"cicd":                "ci/cd",
	"ci cd":               "ci/cd",
}

// defaultBlacklist holds document boilerplate that must never be reported as a
// skill. Stop words are rejected separately.
var defaultBlacklist = []string{
	"cv", "resume", "curriculum", "vitae", "experience", "experiences", "skills",
	"skill", "competences", "competence", "formation", "education", "diplome",
	"profile", "profil", "contact", "email", "phone", "telephone", "address",
	"adresse", "languages", "langues", "references", "summary", "objective",
	"projects", "projets", "interests", "loisirs", "years", "year", "ans", "annees",
	"work", "job", "team", "role", "poste",
}

type vocabularyEntry struct {
	name  string
	forms []string
}

// Vocabulary is the read-only set of known skills. It is safe for concurrent use.
type Vocabulary struct {
	entries []vocabularyEntry
	tokens  map[string]struct{}
}

// VocabularyFile is the on-disk format of a vocabulary mined offline.
type VocabularyFile struct {
	Skills          []string          `mapstructure:"skills"`
	Aliases         map[string]string `mapstructure:"aliases"`
	Blacklist       []string          `mapstructure:"blacklist"`
	ReplaceDefaults bool              `mapstructure:"replace-defaults"`
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultSkills, defaultAliases, defaultBlacklist)
}

// NewVocabulary builds a vocabulary. Entries that are blacklisted, stop words or
// shorter than two characters are dropped, and so are aliases pointing at them.
func NewVocabulary(skills []string, aliases map[string]string, blacklist []string) *Vocabulary {
	banned := make(map[string]struct{}, len(blacklist))
	for _, b := range blacklist {
		if b = canonicalSkill(b); b != "" {
			banned[text.Fold(b)] = struct{}{}
		}
	}

	rejected := func(s string) bool {
		if utf8.RuneCountInString(s) < minSkillLength {
			return true
		}
		if text.IsStopWord(s) {
			return true
		}
		_, ok := banned[text.Fold(s)]
		return ok
	}

	byName := make(map[string]*vocabularyEntry)
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		s = canonicalSkill(s)
		if s == "" || rejected(s) {
			continue
		}
		if _, ok := byName[s]; ok {
			continue
		}
		byName[s] = &vocabularyEntry{name: s, forms: []string{s}}
		names = append(names, s)
	}

	aliasKeys := make([]string, 0, len(aliases))
	for alias := range aliases {
		aliasKeys = append(aliasKeys, alias)
	}
	sort.Strings(aliasKeys)

	for _, alias := range aliasKeys {
		target := canonicalSkill(aliases[alias])
		alias = canonicalSkill(alias)
		entry, ok := byName[target]
		if !ok || alias == "" || alias == target || rejected(alias) {
			continue
		}
		entry.forms = append(entry.forms, alias)
	}

	sort.Strings(names)

	v := &Vocabulary{
		entries: make([]vocabularyEntry, 0, len(names)),
		tokens:  make(map[string]struct{}),
	}
	for _, name := range names {
		entry := byName[name]
		v.entries = append(v.entries, *entry)
		for _, form := range entry.forms {
			for _, tok := range strings.Fields(form) {
				v.tokens[tok] = struct{}{}
			}
		}
	}

	return v
}

// LoadVocabulary reads a vocabulary file (yaml, json or toml). Unless the file
// sets replace-defaults, its content extends the built-in vocabulary.
func LoadVocabulary(path string) (*Vocabulary, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("vocabulary path is empty")
	}

	// Skill names such as "node.js" contain the default key delimiter.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading vocabulary file %q: %w", path, err)
	}

	var file VocabularyFile
	if err := mapstructure.Decode(v.AllSettings(), &file); err != nil {
		return nil, fmt.Errorf("decoding vocabulary file %q: %w", path, err)
	}

	return file.Build(), nil
}

// Build merges the file with the built-in vocabulary.
func (f VocabularyFile) Build() *Vocabulary {
	if f.ReplaceDefaults {
		return NewVocabulary(f.Skills, f.Aliases, f.Blacklist)
	}

	skills := append(append([]string{}, defaultSkills...), f.Skills...)

	aliases := make(map[string]string, len(defaultAliases)+len(f.Aliases))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	for k, v := range f.Aliases {
		aliases[k] = v
	}

	blacklist := append(append([]string{}, defaultBlacklist...), f.Blacklist...)

	return NewVocabulary(skills, aliases, blacklist)
}

// Len returns the number of canonical skills.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Names returns canonical skill names in alphabetical order.
func (v *Vocabulary) Names() []string {
	if v == nil {
		return nil
	}
	names := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		names = append(names, e.name)
	}
	return names
}

// ContainsToken reports whether a lower-cased word is part of any skill form.
func (v *Vocabulary) ContainsToken(token string) bool {
	if v == nil {
		return false
	}
	_, ok := v.tokens[strings.ToLower(token)]
	return ok
}

func canonicalSkill(s string) string {
	return text.Normalize(s).Cleaned
}
