// Package rules matches transactions against declarative classification
// rules: named condition trees paired with allocation recipes.
package rules

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// RuleExt is the extension rule files must carry when loading a directory.
const RuleExt = ".rules"

// ParseError reports a malformed rule definition.
type ParseError struct {
	Rule string // rule name, when known
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Rule == "" {
		return "rule parse: " + e.Msg
	}
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Msg)
}

// ProcessSpec names a process plugin and its per-rule arguments.
type ProcessSpec struct {
	Plugin string
	Args   map[string]string
}

// Rule is one named matcher plus its allocation recipe.
type Rule struct {
	Name        string
	Conditions  Condition
	Allocations []string
	Ignore      bool // skip the transaction entirely
	ChangePayee bool // replace the payee with the rule name
	Tags        []string
	Process     *ProcessSpec
}

// RuleSet holds rules in definition order. First-match resolution depends on
// this order, so it is preserved exactly as loaded.
type RuleSet struct {
	rules []Rule
	index map[string]int
}

// NewRuleSet returns an empty RuleSet.
func NewRuleSet() *RuleSet {
	return &RuleSet{index: make(map[string]int)}
}

// Add appends a rule, or replaces an existing rule of the same name in place
// (keeping its original position, as later rule files override earlier ones).
func (rs *RuleSet) Add(r Rule) {
	if i, ok := rs.index[r.Name]; ok {
		rs.rules[i] = r
		return
	}
	rs.index[r.Name] = len(rs.rules)
	rs.rules = append(rs.rules, r)
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Rules returns the rules in definition order.
func (rs *RuleSet) Rules() []Rule { return rs.rules }

// Resolve returns the first rule whose conditions match the transaction, or
// nil when no rule matches.
func (rs *RuleSet) Resolve(t *model.Transaction) (*Rule, error) {
	for i := range rs.rules {
		ok, err := rs.rules[i].Conditions.Eval(t)
		if err != nil {
			return nil, fmt.Errorf("evaluating rule %q: %w", rs.rules[i].Name, err)
		}
		if ok {
			return &rs.rules[i], nil
		}
	}
	return nil, nil
}

// ruleDoc mirrors one rule record in a .rules YAML file.
type ruleDoc struct {
	Conditions  yaml.Node                    `yaml:"conditions"`
	Allocations []string                     `yaml:"allocations"`
	Ignore      bool                         `yaml:"ignore"`
	ChangePayee bool                         `yaml:"change_payee"`
	Tags        []string                     `yaml:"tags"`
	Process     map[string]map[string]string `yaml:"process"`
}

// Load reads rules from a file, or from every *.rules file under a directory.
// Directory files merge in lexicographic path order so repeated loads build
// the identical rule set.
func Load(path string) (*RuleSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}

	rs := NewRuleSet()
	if !info.IsDir() {
		if err := loadFile(rs, path); err != nil {
			return nil, err
		}
		return rs, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), RuleExt) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking rules dir %s: %w", path, err)
	}
	sort.Strings(files)

	for _, f := range files {
		if err := loadFile(rs, f); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

func loadFile(rs *RuleSet, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rules %s: %w", path, err)
	}
	if err := Parse(rs, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Parse decodes rule definitions from YAML into rs, preserving definition
// order. The document is a mapping from rule name to rule record.
func Parse(rs *RuleSet, data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing rules: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ParseError{Msg: "rules document must be a mapping of rule names"}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		rule, err := parseRule(name, root.Content[i+1])
		if err != nil {
			return err
		}
		rs.Add(rule)
	}
	return nil
}

func parseRule(name string, node *yaml.Node) (Rule, error) {
	var doc ruleDoc
	if err := node.Decode(&doc); err != nil {
		return Rule{}, &ParseError{Rule: name, Msg: err.Error()}
	}

	cond, err := parseConditions(&doc.Conditions)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Rule = name
		}
		return Rule{}, err
	}

	rule := Rule{
		Name:        name,
		Conditions:  cond,
		Allocations: doc.Allocations,
		Ignore:      doc.Ignore,
		ChangePayee: doc.ChangePayee,
		Tags:        doc.Tags,
	}

	switch len(doc.Process) {
	case 0:
	case 1:
		for plugin, args := range doc.Process {
			rule.Process = &ProcessSpec{Plugin: plugin, Args: args}
		}
	default:
		return Rule{}, &ParseError{Rule: name, Msg: "at most one process plugin per rule"}
	}

	return rule, nil
}

var payeeSanitizer = regexp.MustCompile(`[^a-zA-Z0-9 .,]`)

// MakeRule builds a simple 100-percent rule matching a payee, used when the
// importer learns a new payee/account pairing.
func MakeRule(payee, account string) Rule {
	payee = payeeSanitizer.ReplaceAllString(payee, "")
	leaf := Leaf{
		Field:      "payee",
		Comparator: "CONTAINS",
		Value:      payee,
		fn:         comparators["CONTAINS"],
	}

	return Rule{
		Name:        payee,
		Conditions:  Group{Op: defaultOperator, Children: []Condition{leaf}, fn: combinators[defaultOperator]},
		Allocations: []string{"100 PERCENT " + account},
	}
}
