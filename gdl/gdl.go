// Package gdl loads grammar definitions from declarative YAML or TOML
// files.
//
// A grammar file names a start rule and a set of named rules. Each
// rule is an expression: a map with a single combinator key (plus the
// key's arguments), mirroring the combinators in package grammar.
//
//	start: doc
//	rules:
//	  doc:
//	    wrap: { type: doc, rule: { star: { ref: item } } }
//	  item:
//	    choice:
//	      - { literal: "- " }
//	      - { chars: "abc" }
//	      - { range: { lo: "0", hi: "9" } }
//
// Supported combinator keys: literal, any, chars, range, seq, choice,
// star, plus, opt, not, peek, repeat (min/max/rule), wrap (type/rule),
// ref.
package gdl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/incremark/grammar"
	"github.com/dshills/incremark/tree"
)

// ParseError reports a malformed grammar definition file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("grammar definition %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// fileSpec is the wire shape of a grammar definition file.
type fileSpec struct {
	Start string         `yaml:"start" toml:"start"`
	Rules map[string]any `yaml:"rules" toml:"rules"`
}

// Load reads a grammar definition file, dispatching on the file
// extension (.yaml, .yml, or .toml).
func Load(path string) (*grammar.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grammar file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, data)
	case ".toml":
		return LoadTOML(path, data)
	default:
		return nil, &ParseError{Path: path, Message: "unsupported file extension"}
	}
}

// LoadYAML builds a grammar from YAML data. path is used only for
// error reporting.
func LoadYAML(path string, data []byte) (*grammar.Grammar, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return build(path, spec)
}

// LoadTOML builds a grammar from TOML data. path is used only for
// error reporting.
func LoadTOML(path string, data []byte) (*grammar.Grammar, error) {
	var spec fileSpec
	if err := toml.Unmarshal(data, &spec); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return build(path, spec)
}

// build converts a file spec into a grammar, validating references.
func build(path string, spec fileSpec) (*grammar.Grammar, error) {
	fail := func(format string, args ...any) (*grammar.Grammar, error) {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf(format, args...)}
	}

	if spec.Start == "" {
		return fail("missing start rule")
	}
	if len(spec.Rules) == 0 {
		return fail("no rules defined")
	}

	b := &builder{refs: make(map[string]bool)}
	g := grammar.New()
	for name, expr := range spec.Rules {
		rule, err := b.rule(name, expr)
		if err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
		g.Define(name, rule)
	}
	g.SetStart(spec.Start)

	if _, ok := spec.Rules[spec.Start]; !ok {
		return fail("start rule %q is not defined", spec.Start)
	}
	for ref := range b.refs {
		if _, ok := spec.Rules[ref]; !ok {
			return fail("reference to undefined rule %q", ref)
		}
	}
	return g, nil
}

// builder converts rule expressions, collecting references so they
// can be validated against the defined rule set.
type builder struct {
	refs map[string]bool
}

func (b *builder) rule(where string, expr any) (grammar.Rule, error) {
	m, ok := toStringMap(expr)
	if !ok {
		return nil, fmt.Errorf("rule %s: expected a map, got %T", where, expr)
	}

	switch {
	case m["literal"] != nil:
		s, err := asString(where, "literal", m["literal"])
		if err != nil {
			return nil, err
		}
		return grammar.Literal(s), nil

	case m["any"] != nil:
		return grammar.AnyChar(), nil

	case m["chars"] != nil:
		s, err := asString(where, "chars", m["chars"])
		if err != nil {
			return nil, err
		}
		return grammar.CharIn(s), nil

	case m["range"] != nil:
		args, ok := toStringMap(m["range"])
		if !ok {
			return nil, fmt.Errorf("rule %s: range: expected a map with lo and hi", where)
		}
		lo, err := asChar(where, "range.lo", args["lo"])
		if err != nil {
			return nil, err
		}
		hi, err := asChar(where, "range.hi", args["hi"])
		if err != nil {
			return nil, err
		}
		return grammar.CharRange(lo, hi), nil

	case m["seq"] != nil:
		rules, err := b.ruleList(where, "seq", m["seq"])
		if err != nil {
			return nil, err
		}
		return grammar.Seq(rules...), nil

	case m["choice"] != nil:
		rules, err := b.ruleList(where, "choice", m["choice"])
		if err != nil {
			return nil, err
		}
		return grammar.Choice(rules...), nil

	case m["star"] != nil:
		inner, err := b.rule(where, m["star"])
		if err != nil {
			return nil, err
		}
		return grammar.Star(inner), nil

	case m["plus"] != nil:
		inner, err := b.rule(where, m["plus"])
		if err != nil {
			return nil, err
		}
		return grammar.Plus(inner), nil

	case m["opt"] != nil:
		inner, err := b.rule(where, m["opt"])
		if err != nil {
			return nil, err
		}
		return grammar.Opt(inner), nil

	case m["not"] != nil:
		inner, err := b.rule(where, m["not"])
		if err != nil {
			return nil, err
		}
		return grammar.Not(inner), nil

	case m["peek"] != nil:
		inner, err := b.rule(where, m["peek"])
		if err != nil {
			return nil, err
		}
		return grammar.Peek(inner), nil

	case m["repeat"] != nil:
		args, ok := toStringMap(m["repeat"])
		if !ok {
			return nil, fmt.Errorf("rule %s: repeat: expected a map with min, max and rule", where)
		}
		min, err := asInt(where, "repeat.min", args["min"], 0)
		if err != nil {
			return nil, err
		}
		max, err := asInt(where, "repeat.max", args["max"], -1)
		if err != nil {
			return nil, err
		}
		inner, err := b.rule(where, args["rule"])
		if err != nil {
			return nil, err
		}
		return grammar.Repeat(inner, min, max), nil

	case m["wrap"] != nil:
		args, ok := toStringMap(m["wrap"])
		if !ok {
			return nil, fmt.Errorf("rule %s: wrap: expected a map with type and rule", where)
		}
		typeName, err := asString(where, "wrap.type", args["type"])
		if err != nil {
			return nil, err
		}
		inner, err := b.rule(where, args["rule"])
		if err != nil {
			return nil, err
		}
		return grammar.Wrap(tree.TypeOf(typeName), inner), nil

	case m["ref"] != nil:
		name, err := asString(where, "ref", m["ref"])
		if err != nil {
			return nil, err
		}
		b.refs[name] = true
		return grammar.Ref(name), nil

	default:
		return nil, fmt.Errorf("rule %s: no combinator key found", where)
	}
}

func (b *builder) ruleList(where, key string, v any) ([]grammar.Rule, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("rule %s: %s: expected a list, got %T", where, key, v)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("rule %s: %s: empty list", where, key)
	}
	rules := make([]grammar.Rule, len(items))
	for i, item := range items {
		rule, err := b.rule(where, item)
		if err != nil {
			return nil, err
		}
		rules[i] = rule
	}
	return rules, nil
}

// toStringMap normalizes the map shapes the YAML and TOML decoders
// produce.
func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asString(where, key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("rule %s: %s: expected a string, got %T", where, key, v)
	}
	return s, nil
}

func asChar(where, key string, v any) (rune, error) {
	s, err := asString(where, key, v)
	if err != nil {
		return 0, err
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("rule %s: %s: expected a single character, got %q", where, key, s)
	}
	return runes[0], nil
}

func asInt(where, key string, v any, missing int) (int, error) {
	switch n := v.(type) {
	case nil:
		return missing, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("rule %s: %s: expected an integer, got %T", where, key, v)
	}
}
