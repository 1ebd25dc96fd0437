package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Marshal renders rules back to .rules YAML, preserving order. Round-trips
// with Parse.
func Marshal(rs []Rule) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	for _, r := range rs {
		body := &yaml.Node{Kind: yaml.MappingNode}

		cond, err := conditionNode(r.Conditions)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		appendPair(body, "conditions", cond)

		if len(r.Allocations) > 0 {
			appendPair(body, "allocations", stringSeq(r.Allocations))
		}
		if r.Ignore {
			appendPair(body, "ignore", scalar("true"))
		}
		if r.ChangePayee {
			appendPair(body, "change_payee", scalar("true"))
		}
		if len(r.Tags) > 0 {
			appendPair(body, "tags", stringSeq(r.Tags))
		}
		if r.Process != nil {
			args := &yaml.Node{Kind: yaml.MappingNode}
			for _, k := range sortedKeys(r.Process.Args) {
				appendPair(args, k, scalar(r.Process.Args[k]))
			}
			spec := &yaml.Node{Kind: yaml.MappingNode}
			appendPair(spec, r.Process.Plugin, args)
			appendPair(body, "process", spec)
		}

		appendPair(root, r.Name, body)
	}

	return yaml.Marshal(root)
}

// AppendFile appends rules to a .rules file, creating it if needed.
func AppendFile(path string, rs []Rule) error {
	data, err := Marshal(rs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening rules file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing rules file: %w", err)
	}
	return nil
}

func conditionNode(c Condition) (*yaml.Node, error) {
	switch n := c.(type) {
	case Leaf:
		return scalar(n.Field + " " + n.Comparator + " " + n.Value), nil
	case Group:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, child := range n.Children {
			cn, err := conditionNode(child)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, cn)
		}
		if n.Op == defaultOperator {
			return seq, nil
		}
		wrap := &yaml.Node{Kind: yaml.MappingNode}
		appendPair(wrap, n.Op, seq)
		return wrap, nil
	default:
		return nil, fmt.Errorf("cannot marshal condition %T", c)
	}
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

func stringSeq(vals []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range vals {
		seq.Content = append(seq.Content, scalar(v))
	}
	return seq
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
