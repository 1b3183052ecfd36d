package category

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	Meeting       = "Meeting"
	Development   = "Development"
	Documentation = "Documentation"
	Review        = "Review"
	Testing       = "Testing"
	Planning      = "Planning"
	Other         = "Other"
)

// Rule maps a category to the keywords that select it.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules are checked in order; the first rule with a matching keyword wins.
var DefaultRules = []Rule{
	{Category: Meeting, Keywords: []string{"회의", "미팅", "meeting"}},
	{Category: Development, Keywords: []string{"개발", "코딩", "구현", "coding", "develop", "implement"}},
	{Category: Documentation, Keywords: []string{"문서", "작성", "리포트", "doc", "report"}},
	{Category: Review, Keywords: []string{"리뷰", "검토", "review"}},
	{Category: Testing, Keywords: []string{"테스트", "qa", "test"}},
	{Category: Planning, Keywords: []string{"기획", "설계", "plan", "design"}},
}

type Classifier struct {
	rules []Rule
}

// New builds a classifier; keywords are matched case-insensitively.
func New(rules []Rule) *Classifier {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				keywords = append(keywords, k)
			}
		}
		normalized = append(normalized, Rule{Category: r.Category, Keywords: keywords})
	}
	return &Classifier{rules: normalized}
}

func NewDefault() *Classifier {
	return New(DefaultRules)
}

// Classify returns the category of a task name, or Other.
func (c *Classifier) Classify(name string) string {
	lower := strings.ToLower(name)
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(lower, k) {
				return r.Category
			}
		}
	}
	return Other
}

// Categories lists the configured categories in priority order, Other last.
func (c *Classifier) Categories() []string {
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		out = append(out, r.Category)
	}
	return append(out, Other)
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule list from a YAML file of the form
//
//	rules:
//	  - category: Meeting
//	    keywords: [meeting, sync]
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", path)
	}
	for i, r := range f.Rules {
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %d has no category", i+1)
		}
		if r.Category == Other {
			return nil, fmt.Errorf("rule %d: %s is the fallback and cannot have keywords", i+1, Other)
		}
	}
	return f.Rules, nil
}

// FromFile returns a classifier using path, or the default rules when path is empty.
func FromFile(path string) (*Classifier, error) {
	if path == "" {
		return NewDefault(), nil
	}
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return New(rules), nil
}
