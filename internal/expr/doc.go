// Package expr is a sandboxed arithmetic expression evaluator.
//
// Source text is lexed and parsed (Pratt parser) into a small expression
// tree over a fixed grammar:
//
//   - number literals: 1, 2.5, .5, 1e-3
//   - identifiers bound through an [Env] or to a library constant (pi, e, tau)
//   - binary operators + - * / % and power (^ or **), unary + and -
//   - calls to an allow-listed function table: sin(x), atan2(y, x), ...
//
// A compiled [Program] evaluates element-wise: every [Value] is either a
// scalar or a grid (gonum *mat.Dense), and scalars broadcast against grids.
// The same program therefore evaluates a single point or a whole mesh.
//
// # Errors
//
// Evaluation never substitutes placeholder values. Failures are reported as
// [*EvalError] wrapping one of [ErrUndefinedVariable], [ErrUnknownFunction],
// [ErrArity] or [ErrArithmeticDomain]; parse failures are [*SyntaxError].
//
//	prog, err := expr.Compile("a*sin(x)+y")
//	v, err := prog.Eval(expr.Env{"x": expr.Scalar(0), "y": expr.Scalar(3), "a": expr.Scalar(2)})
package expr
