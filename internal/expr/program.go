package expr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Env binds identifiers to values. Bindings shadow library constants.
type Env map[string]Value

type node interface {
	eval(env Env) (Value, error)
	write(b *strings.Builder)
}

type numberNode struct{ val float64 }

type identNode struct {
	name string
	pos  int
}

type negNode struct {
	x   node
	pos int
}

type binaryNode struct {
	op       string
	lhs, rhs node
	pos      int
}

type callNode struct {
	name string
	args []node
	pos  int
}

func (n *numberNode) eval(Env) (Value, error) { return Scalar(n.val), nil }

func (n *identNode) eval(env Env) (Value, error) {
	if v, ok := env[n.name]; ok {
		return v, nil
	}
	if c, ok := constants[n.name]; ok {
		return Scalar(c), nil
	}
	return Value{}, &EvalError{Name: n.name, Pos: n.pos, Index: -1, Err: ErrUndefinedVariable}
}

func (n *negNode) eval(env Env) (Value, error) {
	x, err := n.x.eval(env)
	if err != nil {
		return Value{}, err
	}
	v, err := apply1(x, negK)
	return v, wrapFault(err, "-", n.pos)
}

var binaryKernels = map[string]kernel2{
	"+": addK,
	"-": subK,
	"*": mulK,
	"/": divK,
	"%": modK,
	"^": powK,
}

func (n *binaryNode) eval(env Env) (Value, error) {
	l, err := n.lhs.eval(env)
	if err != nil {
		return Value{}, err
	}
	r, err := n.rhs.eval(env)
	if err != nil {
		return Value{}, err
	}
	v, err := apply2(l, r, binaryKernels[n.op])
	return v, wrapFault(err, n.op, n.pos)
}

func (n *callNode) eval(env Env) (Value, error) {
	u, isUnary := unaryFuncs[n.name]
	b, isBinary := binaryFuncs[n.name]
	if !isUnary && !isBinary {
		return Value{}, &EvalError{Name: n.name, Pos: n.pos, Index: -1, Err: ErrUnknownFunction}
	}
	want := 1
	if isBinary {
		want = 2
	}
	if len(n.args) != want {
		return Value{}, &EvalError{
			Op: n.name, Pos: n.pos, Index: -1, Err: ErrArity,
			Reason: fmt.Sprintf("want %d, got %d", want, len(n.args)),
		}
	}
	args := make([]Value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(env)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	var (
		v   Value
		err error
	)
	if isUnary {
		v, err = apply1(args[0], u)
	} else {
		v, err = apply2(args[0], args[1], b)
	}
	return v, wrapFault(err, n.name, n.pos)
}

// wrapFault converts an element failure into an *EvalError.
func wrapFault(err error, op string, pos int) error {
	if err == nil {
		return nil
	}
	var ef *elemFault
	if errors.As(err, &ef) {
		return &EvalError{Op: op, Pos: pos, Index: ef.index, Reason: ef.err.Error(), Err: ErrArithmeticDomain}
	}
	reason := strings.TrimPrefix(err.Error(), ErrShape.Error()+": ")
	return &EvalError{Op: op, Pos: pos, Index: -1, Reason: reason, Err: ErrShape}
}

func (n *numberNode) write(b *strings.Builder) {
	b.WriteString(strconv.FormatFloat(n.val, 'g', -1, 64))
}

func (n *identNode) write(b *strings.Builder) { b.WriteString(n.name) }

func (n *negNode) write(b *strings.Builder) {
	b.WriteString("(-")
	n.x.write(b)
	b.WriteString(")")
}

func (n *binaryNode) write(b *strings.Builder) {
	b.WriteString("(")
	n.lhs.write(b)
	b.WriteString(" " + n.op + " ")
	n.rhs.write(b)
	b.WriteString(")")
}

func (n *callNode) write(b *strings.Builder) {
	b.WriteString(n.name + "(")
	for i, a := range n.args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.write(b)
	}
	b.WriteString(")")
}

// Program is a compiled expression. It holds no evaluation state and may be
// evaluated any number of times.
type Program struct {
	src  string
	root node
}

// Compile parses src. Unknown names are not checked here: they surface at
// evaluation time, when the binding environment is known.
func Compile(src string) (*Program, error) {
	root, err := parse(src)
	if err != nil {
		return nil, err
	}
	return &Program{src: src, root: root}, nil
}

// MustCompile is Compile that panics on error, for fixed expressions.
func MustCompile(src string) *Program {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Eval evaluates the program against env.
func (p *Program) Eval(env Env) (Value, error) {
	return p.root.eval(env)
}

// EvalFloat evaluates with scalar bindings only.
func (p *Program) EvalFloat(vars map[string]float64) (float64, error) {
	env := make(Env, len(vars))
	for k, v := range vars {
		env[k] = Scalar(v)
	}
	v, err := p.Eval(env)
	if err != nil {
		return 0, err
	}
	return v.Float(), nil
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string { return p.src }

// String returns a fully parenthesized rendering of the parsed tree.
func (p *Program) String() string {
	var b strings.Builder
	p.root.write(&b)
	return b.String()
}

// FreeNames lists identifiers used in variable position, sorted and unique.
// Library constants are included when referenced, since bindings may shadow them.
func (p *Program) FreeNames() []string {
	seen := map[string]struct{}{}
	walk(p.root, func(n node) {
		if id, ok := n.(*identNode); ok {
			seen[id.name] = struct{}{}
		}
	})
	return sortedKeys(seen)
}

// Calls lists the function names the program calls, sorted and unique.
func (p *Program) Calls() []string {
	seen := map[string]struct{}{}
	walk(p.root, func(n node) {
		if c, ok := n.(*callNode); ok {
			seen[c.name] = struct{}{}
		}
	})
	return sortedKeys(seen)
}

func walk(n node, fn func(node)) {
	fn(n)
	switch t := n.(type) {
	case *negNode:
		walk(t.x, fn)
	case *binaryNode:
		walk(t.lhs, fn)
		walk(t.rhs, fn)
	case *callNode:
		for _, a := range t.args {
			walk(a, fn)
		}
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
