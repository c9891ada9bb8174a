package expr

import (
	"math"
	"sort"
)

var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
}

// finite1 rejects kernels that turn a finite input into Inf or NaN.
func finite1(fn func(float64) float64) kernel1 {
	return func(x float64) (float64, error) {
		r := fn(x)
		if isFinite(x) && !isFinite(r) {
			return 0, domainFault("non-finite result")
		}
		return r, nil
	}
}

func finite2(fn func(x, y float64) float64) kernel2 {
	return func(x, y float64) (float64, error) {
		r := fn(x, y)
		if isFinite(x) && isFinite(y) && !isFinite(r) {
			return 0, domainFault("non-finite result")
		}
		return r, nil
	}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// guard1 checks the input against a predicate before running the kernel.
func guard1(ok func(float64) bool, reason string, fn func(float64) float64) kernel1 {
	k := finite1(fn)
	return func(x float64) (float64, error) {
		if !ok(x) {
			return 0, domainFault(reason)
		}
		return k(x)
	}
}

func positive(x float64) bool    { return x > 0 }
func nonNegative(x float64) bool { return x >= 0 }
func unitRange(x float64) bool   { return x >= -1 && x <= 1 }

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

var (
	logK   = guard1(positive, "log of non-positive value", math.Log)
	asinK  = guard1(unitRange, "arcsin outside [-1, 1]", math.Asin)
	acosK  = guard1(unitRange, "arccos outside [-1, 1]", math.Acos)
	atanK  = finite1(math.Atan)
	asinhK = finite1(math.Asinh)
	acoshK = guard1(func(x float64) bool { return x >= 1 }, "arccosh below 1", math.Acosh)
	atanhK = guard1(func(x float64) bool { return x > -1 && x < 1 }, "arctanh outside (-1, 1)", math.Atanh)
	absK   = finite1(math.Abs)
	atan2K = finite2(math.Atan2)
	minK   = finite2(math.Min)
	maxK   = finite2(math.Max)
)

var unaryFuncs = map[string]kernel1{
	"sin":     finite1(math.Sin),
	"cos":     finite1(math.Cos),
	"tan":     finite1(math.Tan),
	"asin":    asinK,
	"arcsin":  asinK,
	"acos":    acosK,
	"arccos":  acosK,
	"atan":    atanK,
	"arctan":  atanK,
	"sinh":    finite1(math.Sinh),
	"cosh":    finite1(math.Cosh),
	"tanh":    finite1(math.Tanh),
	"asinh":   asinhK,
	"arcsinh": asinhK,
	"acosh":   acoshK,
	"arccosh": acoshK,
	"atanh":   atanhK,
	"arctanh": atanhK,
	"exp":     finite1(math.Exp),
	"log":     logK,
	"ln":      logK,
	"log10":   guard1(positive, "log10 of non-positive value", math.Log10),
	"log2":    guard1(positive, "log2 of non-positive value", math.Log2),
	"sqrt":    guard1(nonNegative, "sqrt of negative value", math.Sqrt),
	"cbrt":    finite1(math.Cbrt),
	"abs":     absK,
	"fabs":    absK,
	"floor":   finite1(math.Floor),
	"ceil":    finite1(math.Ceil),
	"round":   finite1(math.RoundToEven),
	"sign":    finite1(sign),
}

var binaryFuncs = map[string]kernel2{
	"atan2":   atan2K,
	"arctan2": atan2K,
	"pow":     powK,
	"power":   powK,
	"hypot":   finite2(math.Hypot),
	"min":     minK,
	"minimum": minK,
	"max":     maxK,
	"maximum": maxK,
	"mod":     modK,
	"fmod":    fmodK,
}

var (
	addK  = finite2(func(a, b float64) float64 { return a + b })
	subK  = finite2(func(a, b float64) float64 { return a - b })
	mulK  = finite2(func(a, b float64) float64 { return a * b })
	quoK  = finite2(func(a, b float64) float64 { return a / b })
	fmodF = finite2(math.Mod)
	powF  = finite2(math.Pow)
)

func divK(x, y float64) (float64, error) {
	if y == 0 {
		return 0, domainFault("division by zero")
	}
	return quoK(x, y)
}

// modK follows floored-division semantics: the result takes the divisor's sign.
func modK(x, y float64) (float64, error) {
	if y == 0 {
		return 0, domainFault("modulo by zero")
	}
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	if isFinite(x) && !isFinite(r) {
		return 0, domainFault("non-finite result")
	}
	return r, nil
}

func fmodK(x, y float64) (float64, error) {
	if y == 0 {
		return 0, domainFault("modulo by zero")
	}
	return fmodF(x, y)
}

func powK(x, y float64) (float64, error) {
	if x == 0 && y < 0 {
		return 0, domainFault("zero raised to a negative power")
	}
	if x < 0 && y != math.Trunc(y) {
		return 0, domainFault("negative base raised to a fractional power")
	}
	return powF(x, y)
}

func negK(x float64) (float64, error) { return -x, nil }

// IsFunction reports whether name is callable.
func IsFunction(name string) bool {
	_, u := unaryFuncs[name]
	_, b := binaryFuncs[name]
	return u || b
}

// IsConstant reports whether name resolves to a library constant.
func IsConstant(name string) bool {
	_, ok := constants[name]
	return ok
}

// Arity returns the argument count of a library function, or 0.
func Arity(name string) int {
	if _, ok := unaryFuncs[name]; ok {
		return 1
	}
	if _, ok := binaryFuncs[name]; ok {
		return 2
	}
	return 0
}

// Functions lists the library function names.
func Functions() []string {
	names := make([]string, 0, len(unaryFuncs)+len(binaryFuncs))
	for n := range unaryFuncs {
		names = append(names, n)
	}
	for n := range binaryFuncs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Constants lists the library constant names.
func Constants() []string {
	names := make([]string, 0, len(constants))
	for n := range constants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
