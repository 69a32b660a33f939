// Package luagrammar lets embedding applications author grammars as
// Lua scripts, without modifying the engine.
//
// A grammar script builds rules with the registered combinator
// functions and returns a table naming the start rule and the rule
// set:
//
//	return {
//	    start = "doc",
//	    rules = {
//	        doc  = wrap("doc", star(choice(ref("word"), lit(" ")))),
//	        word = wrap("word", plus(crange("a", "z"))),
//	    },
//	}
//
// Registered combinators: lit, any, chars, crange, seq, choice, star,
// plus, opt, rep, no, peek, wrap, ref. They mirror the constructors in
// package grammar; rules cross the boundary as opaque userdata.
//
// The Lua state is sandboxed: only the base, table, and string
// libraries are opened, and the state lives only for the duration of
// the load.
package luagrammar

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/incremark/grammar"
	"github.com/dshills/incremark/tree"
)

// ScriptError reports a grammar script that failed to load or
// returned a malformed grammar.
type ScriptError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("grammar script %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

// LoadFile builds a grammar from a Lua script file.
func LoadFile(path string) (*grammar.Grammar, error) {
	return load(path, func(L *lua.LState) error { return L.DoFile(path) })
}

// LoadString builds a grammar from Lua source.
func LoadString(src string) (*grammar.Grammar, error) {
	return load("<string>", func(L *lua.LState) error { return L.DoString(src) })
}

func load(path string, do func(*lua.LState) error) (*grammar.Grammar, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Open a minimal library set; grammar scripts are declarative
	// and get no I/O or OS access.
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			return nil, &ScriptError{Path: path, Message: "opening lua libraries", Err: err}
		}
	}

	refs := make(map[string]bool)
	registerCombinators(L, refs)

	if err := do(L); err != nil {
		return nil, &ScriptError{Path: path, Message: err.Error(), Err: err}
	}

	ret, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return nil, &ScriptError{Path: path, Message: "script must return a grammar table"}
	}

	start, ok := ret.RawGetString("start").(lua.LString)
	if !ok || start == "" {
		return nil, &ScriptError{Path: path, Message: "missing start rule name"}
	}

	rulesTable, ok := ret.RawGetString("rules").(*lua.LTable)
	if !ok {
		return nil, &ScriptError{Path: path, Message: "missing rules table"}
	}

	g := grammar.New()
	defined := make(map[string]bool)
	var badEntry error
	rulesTable.ForEach(func(k, v lua.LValue) {
		if badEntry != nil {
			return
		}
		name, ok := k.(lua.LString)
		if !ok {
			badEntry = fmt.Errorf("rule name %v is not a string", k)
			return
		}
		ud, ok := v.(*lua.LUserData)
		if !ok {
			badEntry = fmt.Errorf("rule %q is not a grammar rule", name)
			return
		}
		rule, ok := ud.Value.(grammar.Rule)
		if !ok {
			badEntry = fmt.Errorf("rule %q is not a grammar rule", name)
			return
		}
		g.Define(string(name), rule)
		defined[string(name)] = true
	})
	if badEntry != nil {
		return nil, &ScriptError{Path: path, Message: badEntry.Error(), Err: badEntry}
	}

	if !defined[string(start)] {
		return nil, &ScriptError{Path: path, Message: fmt.Sprintf("start rule %q is not defined", start)}
	}
	for ref := range refs {
		if !defined[ref] {
			return nil, &ScriptError{Path: path, Message: fmt.Sprintf("reference to undefined rule %q", ref)}
		}
	}

	g.SetStart(string(start))
	return g, nil
}

// registerCombinators installs the rule-building functions as globals.
func registerCombinators(L *lua.LState, refs map[string]bool) {
	L.SetGlobal("lit", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.Literal(L.CheckString(1)))
	}))

	L.SetGlobal("any", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.AnyChar())
	}))

	L.SetGlobal("chars", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.CharIn(L.CheckString(1)))
	}))

	L.SetGlobal("crange", L.NewFunction(func(L *lua.LState) int {
		lo := checkChar(L, 1)
		hi := checkChar(L, 2)
		return pushRule(L, grammar.CharRange(lo, hi))
	}))

	L.SetGlobal("seq", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.Seq(checkRules(L)...))
	}))

	L.SetGlobal("choice", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.Choice(checkRules(L)...))
	}))

	L.SetGlobal("star", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.Star(checkRule(L, 1)))
	}))

	L.SetGlobal("plus", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.Plus(checkRule(L, 1)))
	}))

	L.SetGlobal("opt", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.Opt(checkRule(L, 1)))
	}))

	L.SetGlobal("rep", L.NewFunction(func(L *lua.LState) int {
		rule := checkRule(L, 1)
		min := L.CheckInt(2)
		max := L.OptInt(3, -1)
		return pushRule(L, grammar.Repeat(rule, min, max))
	}))

	L.SetGlobal("no", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.Not(checkRule(L, 1)))
	}))

	L.SetGlobal("peek", L.NewFunction(func(L *lua.LState) int {
		return pushRule(L, grammar.Peek(checkRule(L, 1)))
	}))

	L.SetGlobal("wrap", L.NewFunction(func(L *lua.LState) int {
		typeName := L.CheckString(1)
		return pushRule(L, grammar.Wrap(tree.TypeOf(typeName), checkRule(L, 2)))
	}))

	L.SetGlobal("ref", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		refs[name] = true
		return pushRule(L, grammar.Ref(name))
	}))
}

func pushRule(L *lua.LState, r grammar.Rule) int {
	ud := L.NewUserData()
	ud.Value = r
	L.Push(ud)
	return 1
}

func checkRule(L *lua.LState, n int) grammar.Rule {
	ud := L.CheckUserData(n)
	rule, ok := ud.Value.(grammar.Rule)
	if !ok {
		L.ArgError(n, "grammar rule expected")
		return nil
	}
	return rule
}

func checkRules(L *lua.LState) []grammar.Rule {
	n := L.GetTop()
	rules := make([]grammar.Rule, 0, n)
	for i := 1; i <= n; i++ {
		rules = append(rules, checkRule(L, i))
	}
	return rules
}

func checkChar(L *lua.LState, n int) rune {
	runes := []rune(L.CheckString(n))
	if len(runes) != 1 {
		L.ArgError(n, "single character expected")
		return 0
	}
	return runes[0]
}
