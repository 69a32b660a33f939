package grammar

import (
	"sync/atomic"
	"unicode/utf16"

	"github.com/dshills/incremark/tree"
)

// ruleCounter assigns each rule a process-wide unique identity,
// used as the memoization key. Identities are never reused, so a
// memo table can never confuse rules from different grammars.
var ruleCounter uint32

func nextRuleID() uint32 {
	return atomic.AddUint32(&ruleCounter, 1)
}

// Rule is a composable parsing expression. Rules are stateless and
// reusable across parses and sessions.
//
// An application at a position either consumes some prefix of the
// buffer and produces a node (possibly zero-length for pure
// lookahead) or fails without consuming. Every rule that produces a
// node covers exactly the code units it consumed, so a successful
// parse tree reproduces the buffer text leaf by leaf.
type Rule interface {
	match(r *run, pos int) result
	id() uint32
}

// result is the outcome of one rule application.
// Invariant: node == nil implies length == 0, and a non-nil node's
// length equals the consumed length.
type result struct {
	ok     bool
	length int
	node   *tree.Node
}

type baseRule struct {
	rid uint32
}

func newBaseRule() baseRule {
	return baseRule{rid: nextRuleID()}
}

func (b baseRule) id() uint32 {
	return b.rid
}

// fragOrNil collapses an empty fragment to nil.
func fragOrNil(frag *tree.Node) *tree.Node {
	if len(frag.Children()) == 0 {
		return nil
	}
	return frag
}

// Literal matches the exact code units of s and produces a Text leaf
// covering them.
func Literal(s string) Rule {
	return &literalRule{baseRule: newBaseRule(), units: utf16.Encode([]rune(s))}
}

type literalRule struct {
	baseRule
	units []uint16
}

func (l *literalRule) match(r *run, pos int) result {
	for k, u := range l.units {
		c, ok := r.at(pos + k)
		if !ok || c != u {
			return result{}
		}
	}
	n := len(l.units)
	if n == 0 {
		return result{ok: true}
	}
	return result{ok: true, length: n, node: tree.New(tree.Text, n)}
}

// CharWhere matches a single code unit satisfying pred and produces a
// Text leaf of length 1.
func CharWhere(pred func(uint16) bool) Rule {
	return &charRule{baseRule: newBaseRule(), pred: pred}
}

// AnyChar matches any single code unit.
func AnyChar() Rule {
	return CharWhere(func(uint16) bool { return true })
}

// CharIn matches a single code unit contained in set.
func CharIn(set string) Rule {
	units := utf16.Encode([]rune(set))
	members := make(map[uint16]struct{}, len(units))
	for _, u := range units {
		members[u] = struct{}{}
	}
	return CharWhere(func(c uint16) bool {
		_, ok := members[c]
		return ok
	})
}

// CharRange matches a single code unit in [lo, hi]. The bounds must
// be basic-plane runes; supplementary-plane characters occupy two
// code units and cannot be matched by a single-unit class.
func CharRange(lo, hi rune) Rule {
	return CharWhere(func(c uint16) bool {
		return rune(c) >= lo && rune(c) <= hi
	})
}

type charRule struct {
	baseRule
	pred func(uint16) bool
}

func (cr *charRule) match(r *run, pos int) result {
	c, ok := r.at(pos)
	if !ok || !cr.pred(c) {
		return result{}
	}
	return result{ok: true, length: 1, node: tree.New(tree.Text, 1)}
}

// Seq matches every rule in order, consuming their concatenation.
func Seq(rules ...Rule) Rule {
	return &seqRule{baseRule: newBaseRule(), rules: rules}
}

type seqRule struct {
	baseRule
	rules []Rule
}

func (s *seqRule) match(r *run, pos int) result {
	frag := tree.NewFragment()
	n := 0
	for _, rule := range s.rules {
		res := r.apply(rule, pos+n)
		if !res.ok {
			return result{}
		}
		n += res.length
		if res.node != nil {
			frag.AppendChild(res.node)
		}
	}
	return result{ok: true, length: n, node: fragOrNil(frag)}
}

// Choice tries each alternative in order at the same position and
// commits to the first that matches.
func Choice(rules ...Rule) Rule {
	return &choiceRule{baseRule: newBaseRule(), rules: rules}
}

type choiceRule struct {
	baseRule
	rules []Rule
}

func (c *choiceRule) match(r *run, pos int) result {
	for _, rule := range c.rules {
		if res := r.apply(rule, pos); res.ok {
			return res
		}
	}
	return result{}
}

// Repeat matches rule between min and max times. A negative max means
// unbounded. A zero-length inner match ends the repetition.
func Repeat(rule Rule, min, max int) Rule {
	return &repeatRule{baseRule: newBaseRule(), rule: rule, min: min, max: max}
}

// Star matches rule zero or more times.
func Star(rule Rule) Rule {
	return Repeat(rule, 0, -1)
}

// Plus matches rule one or more times.
func Plus(rule Rule) Rule {
	return Repeat(rule, 1, -1)
}

// Opt matches rule zero or one time.
func Opt(rule Rule) Rule {
	return Repeat(rule, 0, 1)
}

type repeatRule struct {
	baseRule
	rule     Rule
	min, max int
}

func (rp *repeatRule) match(r *run, pos int) result {
	frag := tree.NewFragment()
	n := 0
	count := 0
	for rp.max < 0 || count < rp.max {
		res := r.apply(rp.rule, pos+n)
		if !res.ok {
			break
		}
		if res.length == 0 {
			// A zero-length match would repeat forever.
			count++
			break
		}
		n += res.length
		count++
		if res.node != nil {
			frag.AppendChild(res.node)
		}
	}
	if count < rp.min {
		return result{}
	}
	return result{ok: true, length: n, node: fragOrNil(frag)}
}

// Not is negative lookahead: it succeeds without consuming when rule
// fails at the position.
func Not(rule Rule) Rule {
	return &notRule{baseRule: newBaseRule(), rule: rule}
}

type notRule struct {
	baseRule
	rule Rule
}

func (nr *notRule) match(r *run, pos int) result {
	if res := r.apply(nr.rule, pos); res.ok {
		return result{}
	}
	return result{ok: true}
}

// Peek is positive lookahead: it succeeds without consuming when rule
// matches at the position.
func Peek(rule Rule) Rule {
	return &peekRule{baseRule: newBaseRule(), rule: rule}
}

type peekRule struct {
	baseRule
	rule Rule
}

func (pr *peekRule) match(r *run, pos int) result {
	if res := r.apply(pr.rule, pos); !res.ok {
		return result{}
	}
	return result{ok: true}
}

// Wrap matches rule and produces a single node of type t whose
// children are the nodes rule produced.
func Wrap(t tree.Type, rule Rule) Rule {
	return &wrapRule{baseRule: newBaseRule(), typ: t, rule: rule}
}

type wrapRule struct {
	baseRule
	typ  tree.Type
	rule Rule
}

func (w *wrapRule) match(r *run, pos int) result {
	res := r.apply(w.rule, pos)
	if !res.ok {
		return result{}
	}
	node := tree.New(w.typ, 0)
	if res.node != nil {
		node.AppendChild(res.node)
	}
	return result{ok: true, length: res.length, node: node}
}

// Ref references a named rule defined on the grammar being parsed.
// Referencing a name the grammar does not define is an authoring
// defect and panics at parse time.
func Ref(name string) Rule {
	return &refRule{baseRule: newBaseRule(), name: name}
}

type refRule struct {
	baseRule
	name string
}

func (rf *refRule) match(r *run, pos int) result {
	return r.apply(r.g.mustRule(rf.name), pos)
}
