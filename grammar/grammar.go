package grammar

import "fmt"

// Grammar is a registry of named rules plus a start rule. Rules refer
// to one another through Ref, resolved against this registry during
// parsing.
//
// Defining the same name twice, referencing an undefined name, or
// parsing without a start rule are authoring defects and panic rather
// than returning errors: they indicate a bug in the embedding
// application, not a runtime data condition.
type Grammar struct {
	rules map[string]Rule
	start string
}

// New creates an empty grammar.
func New() *Grammar {
	return &Grammar{rules: make(map[string]Rule)}
}

// Define registers a named rule. It panics if the name is already
// defined.
func (g *Grammar) Define(name string, rule Rule) {
	if _, exists := g.rules[name]; exists {
		panic(fmt.Sprintf("grammar: rule %q redefined", name))
	}
	g.rules[name] = rule
}

// SetStart names the rule parsing begins with.
func (g *Grammar) SetStart(name string) {
	g.start = name
}

// Start returns the name of the start rule.
func (g *Grammar) Start() string {
	return g.start
}

// Names returns the defined rule names in no particular order.
func (g *Grammar) Names() []string {
	names := make([]string, 0, len(g.rules))
	for name := range g.rules {
		names = append(names, name)
	}
	return names
}

// mustRule resolves a rule name, panicking if it is undefined.
func (g *Grammar) mustRule(name string) Rule {
	rule, ok := g.rules[name]
	if !ok {
		panic(fmt.Sprintf("grammar: undefined rule %q", name))
	}
	return rule
}

// startRule resolves the start rule, panicking if unset or undefined.
func (g *Grammar) startRule() Rule {
	if g.start == "" {
		panic("grammar: no start rule set")
	}
	return g.mustRule(g.start)
}
