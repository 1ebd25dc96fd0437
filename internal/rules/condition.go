package rules

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// Condition is one node of a parsed rule condition tree: either a Leaf
// comparing a transaction field against a value, or a Group combining child
// results with a logic operator. Trees are parsed once at rule-load time and
// evaluation is a pure function of (tree, transaction).
type Condition interface {
	Eval(t *model.Transaction) (bool, error)
}

// Leaf is a single "<field> <comparator> <value>" condition.
type Leaf struct {
	Field      string
	Comparator string
	Value      string

	fn compareFunc
}

// Eval compares the rule value against the transaction's field value.
func (l Leaf) Eval(t *model.Transaction) (bool, error) {
	ok, err := l.fn(l.Value, t.Field(l.Field))
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", l.Field+" "+l.Comparator+" "+l.Value, err)
	}
	return ok, nil
}

// Group applies a logic operator to its children's results.
type Group struct {
	Op       string
	Children []Condition

	fn logicFunc
}

// Eval evaluates every child in order and combines the results.
func (g Group) Eval(t *model.Transaction) (bool, error) {
	results := make([]bool, len(g.Children))
	for i, c := range g.Children {
		r, err := c.Eval(t)
		if err != nil {
			return false, err
		}
		results[i] = r
	}
	return g.fn(results), nil
}

// parseConditions parses a rule's conditions node. The node is a sequence of
// children where each child is either a condition string or a single-key
// mapping {operator: [children...]}; a bare sequence combines with AND.
func parseConditions(node *yaml.Node) (Condition, error) {
	if node.Kind == 0 {
		return nil, &ParseError{Msg: "missing conditions"}
	}
	return parseNode(node)
}

func parseNode(node *yaml.Node) (Condition, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return parseLeaf(node.Value)

	case yaml.SequenceNode:
		return parseGroup(defaultOperator, node.Content)

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, &ParseError{Msg: "logic node must have exactly one operator key"}
		}
		opNode, children := node.Content[0], node.Content[1]
		if children.Kind != yaml.SequenceNode {
			return nil, &ParseError{Msg: fmt.Sprintf("operator %q must hold a list of conditions", opNode.Value)}
		}
		return parseGroup(opNode.Value, children.Content)

	default:
		return nil, &ParseError{Msg: "unsupported condition node"}
	}
}

func parseGroup(op string, children []*yaml.Node) (Condition, error) {
	token := strings.ToUpper(strings.TrimSpace(op))
	fn, ok := combinators[token]
	if !ok {
		return nil, &ParseError{Msg: fmt.Sprintf("unknown logic operator %q", op)}
	}

	g := Group{Op: token, fn: fn}
	for _, child := range children {
		c, err := parseNode(child)
		if err != nil {
			return nil, err
		}
		g.Children = append(g.Children, c)
	}
	return g, nil
}

// parseLeaf splits "<field> <comparator> <value>"; the value may itself
// contain spaces.
func parseLeaf(s string) (Condition, error) {
	parts := strings.Fields(s)
	if len(parts) < 3 {
		return nil, &ParseError{Msg: fmt.Sprintf("malformed condition %q", s)}
	}

	comparator := strings.ToUpper(parts[1])
	fn, ok := comparators[comparator]
	if !ok {
		return nil, &ParseError{Msg: fmt.Sprintf("unknown comparator %q in condition %q", parts[1], s)}
	}

	return Leaf{
		Field:      parts[0],
		Comparator: comparator,
		Value:      strings.Join(parts[2:], " "),
		fn:         fn,
	}, nil
}
