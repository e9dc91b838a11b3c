// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eval

import (
	"math"
	"reflect"
)

// callBuiltin implements the evaluator's full builtin surface. It is not
// meant to be Turing-complete, only sufficient for the combinator algebra's
// typical closures (() => x + 1, p => p.n < 3, ...).
func callBuiltin(name string, args []any, clock func() int64) (any, error) {
	switch name {
	case "len":
		if len(args) != 1 {
			return nil, ErrArgumentCount
		}
		switch v := args[0].(type) {
		case string:
			return float64(len(v)), nil
		case []any:
			return float64(len(v)), nil
		case map[string]any:
			return float64(len(v)), nil
		default:
			return nil, ErrNotIndexable
		}
	case "now":
		if len(args) != 0 {
			return nil, ErrArgumentCount
		}
		return float64(clock()), nil
	default:
		return nil, ErrUnknownBuiltin
	}
}

func binaryOp(op string, x, y any) (any, error) {
	switch op {
	case "+":
		if xs, ok := x.(string); ok {
			if ys, ok2 := y.(string); ok2 {
				return xs + ys, nil
			}
		}
		return numericOp(op, x, y)
	case "-", "*", "/", "%":
		return numericOp(op, x, y)
	case "==":
		return equalValues(x, y), nil
	case "!=":
		return !equalValues(x, y), nil
	case "<", "<=", ">", ">=":
		return compareOp(op, x, y)
	default:
		return nil, ErrInvalidOperator
	}
}

func numericOp(op string, x, y any) (any, error) {
	xf, ok := toFloat(x)
	if !ok {
		return nil, ErrTypeMismatch
	}
	yf, ok := toFloat(y)
	if !ok {
		return nil, ErrTypeMismatch
	}
	switch op {
	case "+":
		return xf + yf, nil
	case "-":
		return xf - yf, nil
	case "*":
		return xf * yf, nil
	case "/":
		if yf == 0 {
			return nil, ErrDivideByZero
		}
		return xf / yf, nil
	case "%":
		if yf == 0 {
			return nil, ErrDivideByZero
		}
		return math.Mod(xf, yf), nil
	}
	return nil, ErrInvalidOperator
}

func compareOp(op string, x, y any) (any, error) {
	if xf, ok1 := toFloat(x); ok1 {
		if yf, ok2 := toFloat(y); ok2 {
			switch op {
			case "<":
				return xf < yf, nil
			case "<=":
				return xf <= yf, nil
			case ">":
				return xf > yf, nil
			case ">=":
				return xf >= yf, nil
			}
		}
	}
	if xs, ok1 := x.(string); ok1 {
		if ys, ok2 := y.(string); ok2 {
			switch op {
			case "<":
				return xs < ys, nil
			case "<=":
				return xs <= ys, nil
			case ">":
				return xs > ys, nil
			case ">=":
				return xs >= ys, nil
			}
		}
	}
	return nil, ErrTypeMismatch
}

func equalValues(x, y any) bool {
	return reflect.DeepEqual(x, y)
}

func unaryOp(op string, x any) (any, error) {
	switch op {
	case "!":
		b, err := toBool(x)
		if err != nil {
			return nil, err
		}
		return !b, nil
	case "-":
		f, ok := toFloat(x)
		if !ok {
			return nil, ErrTypeMismatch
		}
		return -f, nil
	default:
		return nil, ErrInvalidOperator
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, ErrTypeMismatch
	}
	return b, nil
}

func indexInto(base, key any) (any, error) {
	switch b := base.(type) {
	case map[string]any:
		ks, ok := key.(string)
		if !ok {
			return nil, ErrTypeMismatch
		}
		v, ok := b[ks]
		if !ok {
			return Undefined, nil
		}
		return v, nil
	case []any:
		idx, ok := toFloat(key)
		if !ok {
			return nil, ErrTypeMismatch
		}
		i := int(idx)
		if i < 0 || i >= len(b) {
			return nil, ErrIndexOutOfRange
		}
		return b[i], nil
	default:
		return nil, ErrNotIndexable
	}
}
