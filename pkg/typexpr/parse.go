package typexpr

import (
	"fmt"

	tserr "github.com/nooga/tsblame/pkg/errors"
	"github.com/nooga/tsblame/pkg/source"
	"github.com/nooga/tsblame/pkg/types"
)

type parser struct {
	src    *source.SourceFile
	tokens []token
	pos    int
	decls  *Declarations
	wraps  int // open prologue functions
}

func (p *parser) peek(n int) token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return token{code: -1, offset: len(p.src.Content)}
}

func (p *parser) next() token {
	t := p.peek(0)
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) errorf(t token, format string, args ...interface{}) *tserr.SyntaxError {
	return &tserr.SyntaxError{Position: tserr.PositionAt(p.src, t.offset), Msg: fmt.Sprintf(format, args...)}
}

func describeToken(t token) string {
	if t.code < 0 {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

func (p *parser) expectPunct(s string) error {
	t := p.next()
	if !t.is(punctToken, s) {
		return p.errorf(t, "expected %q, found %s", s, describeToken(t))
	}
	return nil
}

func (p *parser) expectIdent(s string) error {
	t := p.next()
	if !t.is(identifierToken, s) {
		return p.errorf(t, "expected %s, found %s", s, describeToken(t))
	}
	return nil
}

func (p *parser) acceptPunct(s string) bool {
	if p.peek(0).is(punctToken, s) {
		p.pos++
		return true
	}
	return false
}

// expectPath consumes a dotted identifier path such as Blame.simple_wrap.
func (p *parser) expectPath(parts ...string) error {
	for i, part := range parts {
		if i > 0 {
			if err := p.expectPunct("."); err != nil {
				return err
			}
		}
		if err := p.expectIdent(part); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) expectString() (string, error) {
	t := p.next()
	if t.code != singleQuotedToken && t.code != doubleQuotedToken {
		return "", p.errorf(t, "expected string, found %s", describeToken(t))
	}
	s, err := unquote(t.text)
	if err != nil {
		return "", p.errorf(t, "malformed string %s", t.text).CausedBy(err)
	}
	return s, nil
}

func (p *parser) parseProgram() error {
	for !p.atEnd() {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if p.wraps > 0 {
		return p.errorf(p.peek(0), "unterminated function wrapper")
	}
	return nil
}

func (p *parser) parseStatement() error {
	t := p.peek(0)
	switch {
	case t.is(punctToken, ";"):
		p.pos++
		return nil
	case t.is(punctToken, "(") && p.peek(1).is(identifierToken, "function"):
		return p.openWrapper()
	case t.is(punctToken, "}") && p.wraps > 0:
		return p.closeWrapper()
	case t.is(identifierToken, "var"):
		return p.skipVar()
	case t.is(identifierToken, "T") && p.peek(1).is(punctToken, "."):
		return p.parseCacheStatement()
	case t.is(identifierToken, "M") && p.peek(1).is(punctToken, "["):
		return p.parseModule()
	case t.is(identifierToken, "module"):
		return p.parseExports()
	case t.code == identifierToken:
		return p.parseGlobal()
	}
	return p.errorf(t, "unexpected %s", describeToken(t))
}

// openWrapper consumes "(function () {".
func (p *parser) openWrapper() error {
	if err := p.expectPunct("("); err != nil {
		return err
	}
	if err := p.expectIdent("function"); err != nil {
		return err
	}
	for _, s := range []string{"(", ")", "{"} {
		if err := p.expectPunct(s); err != nil {
			return err
		}
	}
	p.wraps++
	return nil
}

// closeWrapper consumes "}())" or "})()" and an optional ";".
func (p *parser) closeWrapper() error {
	if err := p.expectPunct("}"); err != nil {
		return err
	}
	for p.peek(0).is(punctToken, "(") || p.peek(0).is(punctToken, ")") {
		p.pos++
	}
	p.acceptPunct(";")
	p.wraps--
	return nil
}

// skipVar skips a var statement of the prologue.
func (p *parser) skipVar() error {
	start := p.next()
	depth := 0
	for !p.atEnd() {
		t := p.next()
		if t.code != punctToken {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ";":
			if depth == 0 {
				return nil
			}
		}
	}
	return p.errorf(start, "unterminated var statement")
}

// parseCacheStatement handles T.set('Name', type); and T.verify();.
func (p *parser) parseCacheStatement() error {
	p.pos += 2
	name := p.next()
	switch {
	case name.is(identifierToken, "set"):
		if err := p.expectPunct("("); err != nil {
			return err
		}
		key, err := p.expectString()
		if err != nil {
			return err
		}
		if err := p.expectPunct(","); err != nil {
			return err
		}
		ty, err := p.parseType()
		if err != nil {
			return err
		}
		if err := p.expectPunct(")"); err != nil {
			return err
		}
		p.decls.Cache.Set(key, ty)
		p.decls.Names = append(p.decls.Names, key)
	case name.is(identifierToken, "verify"):
		if err := p.expectPunct("("); err != nil {
			return err
		}
		if err := p.expectPunct(")"); err != nil {
			return err
		}
		if err := p.decls.Cache.Verify(); err != nil {
			return err
		}
		p.decls.Verified = true
	default:
		return p.errorf(name, "unknown cache operation %s", describeToken(name))
	}
	return p.endStatement()
}

func (p *parser) endStatement() error {
	if p.atEnd() || p.acceptPunct(";") || p.peek(0).is(punctToken, "}") {
		return nil
	}
	t := p.peek(0)
	return p.errorf(t, "expected \";\", found %s", describeToken(t))
}

// parseModule handles M['name'] = type;.
func (p *parser) parseModule() error {
	p.pos += 2
	name, err := p.expectString()
	if err != nil {
		return err
	}
	for _, s := range []string{"]", "="} {
		if err := p.expectPunct(s); err != nil {
			return err
		}
	}
	ty, err := p.parseType()
	if err != nil {
		return err
	}
	p.decls.Modules = append(p.decls.Modules, Declaration{Name: name, Type: ty})
	return p.endStatement()
}

// parseExports handles
// module.exports = exports = Blame.simple_wrap(module.exports, type);.
func (p *parser) parseExports() error {
	start := p.peek(0)
	if err := p.expectPath("module", "exports"); err != nil {
		return err
	}
	if err := p.expectPunct("="); err != nil {
		return err
	}
	if p.peek(0).is(identifierToken, "exports") {
		p.pos++
		if err := p.expectPunct("="); err != nil {
			return err
		}
	}
	ty, err := p.parseSimpleWrap("module", "exports")
	if err != nil {
		return err
	}
	if p.decls.Exports != nil {
		return p.errorf(start, "module exports declared twice")
	}
	p.decls.Exports = ty
	return p.endStatement()
}

// parseGlobal handles name = Blame.simple_wrap(name, type);.
func (p *parser) parseGlobal() error {
	name := p.next()
	if err := p.expectPunct("="); err != nil {
		return err
	}
	ty, err := p.parseSimpleWrap(name.text)
	if err != nil {
		return err
	}
	p.decls.Globals = append(p.decls.Globals, Declaration{Name: name.text, Type: ty})
	return p.endStatement()
}

func (p *parser) parseSimpleWrap(target ...string) (types.Type, error) {
	if err := p.expectPath("Blame", "simple_wrap"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	if err := p.expectPath(target...); err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return ty, nil
}

var baseTypes = map[string]types.Type{
	"Num":  types.Num,
	"Bool": types.Bool,
	"Str":  types.Str,
	"Void": types.Void,
	"Obj":  types.Obj,
	"Fun":  types.Fun,
	"Null": types.Null,
	"Arr":  types.Arr,
	"Any":  types.Any,
}

func (p *parser) parseType() (types.Type, error) {
	t := p.next()
	switch {
	case t.is(identifierToken, "T"):
		if err := p.expectPunct("."); err != nil {
			return nil, err
		}
		if err := p.expectIdent("get"); err != nil {
			return nil, err
		}
		args, err := p.parseArgs("s")
		if err != nil {
			return nil, err
		}
		return p.decls.Cache.Get(args[0].(string)), nil
	case t.is(identifierToken, "Blame"):
		if err := p.expectPunct("."); err != nil {
			return nil, err
		}
		return p.parseBlameType()
	}
	return nil, p.errorf(t, "expected type expression, found %s", describeToken(t))
}

func (p *parser) parseBlameType() (types.Type, error) {
	name := p.next()
	if name.code != identifierToken {
		return nil, p.errorf(name, "expected type constructor, found %s", describeToken(name))
	}
	if ty, ok := baseTypes[name.text]; ok {
		return ty, nil
	}

	var sig string
	switch name.text {
	case "fun":
		sig = "LLrtc"
	case "forall":
		sig = "st"
	case "tyvar":
		sig = "s"
	case "arr", "dict":
		sig = "t"
	case "obj":
		sig = "o"
	case "hybrid", "union":
		sig = "*"
	case "substitute_tyvar":
		sig = "tst"
	default:
		return nil, p.errorf(name, "unknown type constructor Blame.%s", name.text)
	}
	args, err := p.parseArgs(sig)
	if err != nil {
		return nil, err
	}
	switch name.text {
	case "fun":
		var construct types.Type
		if len(args) == 5 {
			construct = args[4].(types.Type)
		}
		var rest types.Type
		if args[2] != nil {
			rest = args[2].(types.Type)
		}
		return types.NewFunctionType(args[0].([]types.Type), args[1].([]types.Type), rest, args[3].(types.Type), construct), nil
	case "forall":
		return types.NewForallType(args[0].(string), args[1].(types.Type)), nil
	case "tyvar":
		return types.NewTypeVariable(args[0].(string)), nil
	case "arr":
		return types.NewArrayType(args[0].(types.Type)), nil
	case "dict":
		return types.NewDictionaryType(args[0].(types.Type)), nil
	case "obj":
		return types.NewObjectType(args[0].([]types.Property)...), nil
	case "hybrid":
		return types.NewHybridType(typeArgs(args)...), nil
	case "union":
		return types.NewUnionType(typeArgs(args)...), nil
	default: // substitute_tyvar
		return types.Substitute(args[0].(types.Type), args[1].(string), args[2].(types.Type)), nil
	}
}

func typeArgs(args []interface{}) []types.Type {
	res := make([]types.Type, len(args))
	for i, a := range args {
		res[i] = a.(types.Type)
	}
	return res
}

// parseArgs reads a parenthesised argument list described by sig:
// s string, t type, r type or null, L list of types, o object literal,
// c optional trailing type, * any number of types.
func (p *parser) parseArgs(sig string) ([]interface{}, error) {
	open := p.peek(0)
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []interface{}
	for i := 0; i < len(sig); i++ {
		kind := sig[i]
		if kind == '*' || kind == 'c' {
			if p.peek(0).is(punctToken, ")") {
				break
			}
		}
		if len(args) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseArg(kind)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if kind == '*' {
			i--
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if sig == "*" && len(args) == 0 {
		return nil, p.errorf(open, "expected at least one type")
	}
	return args, nil
}

func (p *parser) parseArg(kind byte) (interface{}, error) {
	switch kind {
	case 's':
		return p.expectString()
	case 'r':
		if p.peek(0).is(identifierToken, "null") {
			p.pos++
			return nil, nil
		}
		return p.parseType()
	case 'L':
		return p.parseList()
	case 'o':
		return p.parseObject()
	}
	return p.parseType()
}

func (p *parser) parseList() ([]types.Type, error) {
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	var res []types.Type
	for !p.acceptPunct("]") {
		if len(res) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		res = append(res, ty)
	}
	return res, nil
}

func (p *parser) parseObject() ([]types.Property, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var props []types.Property
	seen := make(map[string]bool)
	for !p.acceptPunct("}") {
		if len(props) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
			// trailing comma
			if p.acceptPunct("}") {
				break
			}
		}
		key := p.peek(0)
		var name string
		switch key.code {
		case identifierToken, numberToken:
			name = p.next().text
		default:
			var err error
			if name, err = p.expectString(); err != nil {
				return nil, err
			}
		}
		if seen[name] {
			return nil, p.errorf(key, "duplicate property %q", name)
		}
		seen[name] = true
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		props = append(props, types.Property{Name: name, Type: ty})
	}
	return props, nil
}
