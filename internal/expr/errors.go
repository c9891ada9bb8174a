package expr

import (
	"errors"
	"fmt"
	"strings"
)

// Evaluation errors.
var (
	// ErrUndefinedVariable indicates an identifier with no binding.
	ErrUndefinedVariable = errors.New("expr: undefined variable")

	// ErrUnknownFunction indicates a call to a name outside the function library.
	ErrUnknownFunction = errors.New("expr: unknown function")

	// ErrArity indicates a library function called with the wrong number of arguments.
	ErrArity = errors.New("expr: wrong number of arguments")

	// ErrArithmeticDomain indicates an operation undefined for its operands.
	ErrArithmeticDomain = errors.New("expr: arithmetic domain error")

	// ErrShape indicates two grids of different dimensions in one operation.
	ErrShape = errors.New("expr: grid shape mismatch")
)

// EvalError wraps an evaluation failure with the offending operation.
type EvalError struct {
	Op     string // operator or function name
	Name   string // identifier for lookup failures
	Pos    int    // 1-based column in the source
	Index  int    // row-major element index for grid operands, -1 for scalars
	Reason string
	Err    error
}

func (e *EvalError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	switch {
	case e.Name != "":
		fmt.Fprintf(&b, " %q", e.Name)
	case e.Op != "":
		fmt.Fprintf(&b, " in %s", e.Op)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Pos > 0 {
		fmt.Fprintf(&b, " (col %d", e.Pos)
		if e.Index >= 0 {
			fmt.Fprintf(&b, ", element %d", e.Index)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// SyntaxError is a lexing or parsing failure at a 1-based column.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: syntax error at col %d: %s", e.Pos, e.Msg)
}

// Snippet renders the source line with a caret under the error column.
func (e *SyntaxError) Snippet(src string) string {
	col := e.Pos
	if col < 1 {
		col = 1
	}
	if col > len(src)+1 {
		col = len(src) + 1
	}
	return fmt.Sprintf("%s\n\n  %s\n  %s^", e.Error(), src, strings.Repeat(" ", col-1))
}

// domainFault is returned by library kernels; the evaluator turns it into an
// *EvalError carrying position and element index.
type domainFault string

func (d domainFault) Error() string { return string(d) }
