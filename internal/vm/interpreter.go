package vm

import (
	"errors"
	"fmt"

	"github.com/relaypipe/remap/internal/bytecode"
	"github.com/relaypipe/remap/internal/diag"
	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/pathspec"
	"github.com/relaypipe/remap/internal/value"
)

// Run executes container against ctx from its first instruction to
// completion, returning the final operand-stack value (the program's
// result) and, if the run ended on an unrecovered error, that error.
//
// A Call opcode whose underlying Function panics propagates the panic
// unchanged. A Function may also return an error satisfying
// errors.Is(err, fn.ErrAbort); dispatchCall panics on that too — the
// Abort invariant is that only the interpreter's own abort statement
// may raise a fatal Abort, so a function doing so is an implementation
// bug, not a recoverable CallError (spec.md §4.5, component F).
func Run(container *bytecode.Container, ctx *host.Context) (value.Value, error) {
	s := NewState(container)
	for {
		op, ferr := s.nextOpcode()
		if ferr != nil {
			return nil, ferr
		}

		switch op {
		case bytecode.Return:
			if len(s.operands) == 0 {
				return nil, nil
			}
			top, ferr := s.peek()
			if ferr != nil {
				return nil, ferr
			}
			return top, nil

		case bytecode.Abort:
			start, e1 := s.nextPrimitive()
			end, e2 := s.nextPrimitive()
			if e1 != nil {
				return nil, e1
			}
			if e2 != nil {
				return nil, e2
			}
			return nil, diag.Abort(diag.Span{Start: start, End: end})

		case bytecode.Constant:
			idx, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			s.push(container.ConstantAt(idx))

		case bytecode.Pop:
			if _, ferr := s.pop(); ferr != nil {
				return nil, ferr
			}

		case bytecode.ClearError:
			s.ClearError()

		case bytecode.Negate:
			// Not guarded: always executes, even while the error
			// register is set (spec.md §4.5).
			v, ferr := s.pop()
			if ferr != nil {
				return nil, ferr
			}
			out, err := value.Negate(v)
			if err != nil {
				s.SetError(diag.Operation(err))
				s.push(nil)
				continue
			}
			s.push(out)

		case bytecode.Not:
			// Not guarded: always executes, even while the error
			// register is set (spec.md §4.5).
			v, ferr := s.pop()
			if ferr != nil {
				return nil, ferr
			}
			out, err := value.Not(v)
			if err != nil {
				s.SetError(diag.Operation(err))
				s.push(nil)
				continue
			}
			s.push(out)

		case bytecode.Add, bytecode.Subtract, bytecode.Multiply, bytecode.Divide,
			bytecode.Rem, bytecode.Merge, bytecode.Greater, bytecode.GreaterEqual,
			bytecode.Less, bytecode.LessEqual:
			if err := dispatchBinary(s, op); err != nil {
				return nil, err
			}

		case bytecode.Equal, bytecode.NotEqual:
			// Not guarded: always consumes both operands, even while
			// the error register is set (spec.md §4.5).
			rhs, perr := s.pop()
			if perr != nil {
				return nil, perr
			}
			lhs, perr := s.pop()
			if perr != nil {
				return nil, perr
			}
			eq := value.EqualLossy(lhs, rhs)
			if op == bytecode.Equal {
				s.push(eq)
			} else {
				s.push(!eq)
			}

		case bytecode.JumpIfFalse:
			offset, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			v, perr := s.peek()
			if perr != nil {
				return nil, perr
			}
			if !value.IsTrue(v) {
				s.ip += offset
			}

		case bytecode.JumpIfTrue:
			offset, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			v, perr := s.peek()
			if perr != nil {
				return nil, perr
			}
			if value.IsTrue(v) {
				s.ip += offset
			}

		case bytecode.JumpIfNotErr:
			offset, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			if !s.HasError() {
				s.ip += offset
			}

		case bytecode.Jump:
			offset, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			s.ip += offset

		case bytecode.GetPath:
			target, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			v, err := readTarget(s, ctx, container.TargetAt(target))
			if err != nil {
				return nil, err
			}
			s.push(v)

		case bytecode.SetPath:
			target, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			v, perr := s.pop()
			if perr != nil {
				return nil, perr
			}
			if err := writeTarget(ctx, container.TargetAt(target), value.Clone(v)); err != nil {
				return nil, err
			}
			s.push(v)

		case bytecode.SetPathInfallible:
			okTarget, e1 := s.nextPrimitive()
			errTarget, e2 := s.nextPrimitive()
			defaultConst, e3 := s.nextPrimitive()
			if e1 != nil {
				return nil, e1
			}
			if e2 != nil {
				return nil, e2
			}
			if e3 != nil {
				return nil, e3
			}
			if s.HasError() {
				errMsg := value.Value([]byte(s.Error().Error()))
				s.ClearError()
				fallback := value.Clone(container.ConstantAt(defaultConst))
				if err := writeTarget(ctx, container.TargetAt(okTarget), fallback); err != nil {
					return nil, err
				}
				if err := writeTarget(ctx, container.TargetAt(errTarget), errMsg); err != nil {
					return nil, err
				}
				s.push(errMsg)
				continue
			}
			v, perr := s.pop()
			if perr != nil {
				return nil, perr
			}
			if err := writeTarget(ctx, container.TargetAt(okTarget), value.Clone(v)); err != nil {
				return nil, err
			}
			if err := writeTarget(ctx, container.TargetAt(errTarget), nil); err != nil {
				return nil, err
			}
			s.push(v)

		case bytecode.Call:
			funcID, e1 := s.nextPrimitive()
			spanStart, e2 := s.nextPrimitive()
			spanEnd, e3 := s.nextPrimitive()
			if e1 != nil {
				return nil, e1
			}
			if e2 != nil {
				return nil, e2
			}
			if e3 != nil {
				return nil, e3
			}
			if err := dispatchCall(s, ctx, container, funcID, diag.Span{Start: spanStart, End: spanEnd}); err != nil {
				return nil, err
			}

		case bytecode.EmptyParameter:
			s.pushParam(paramSlot{absent: true})

		case bytecode.MoveParameter:
			v, perr := s.pop()
			if perr != nil {
				return nil, perr
			}
			s.pushParam(paramSlot{value: v})

		case bytecode.MoveStatic:
			idx, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			s.pushParam(paramSlot{static: container.StaticAt(idx)})

		case bytecode.CreateArray:
			n, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			elems := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				v, perr := s.pop()
				if perr != nil {
					return nil, perr
				}
				elems[i] = v
			}
			s.push(elems)

		case bytecode.CreateObject:
			n, ferr := s.nextPrimitive()
			if ferr != nil {
				return nil, ferr
			}
			obj := make(value.Object, n)
			// Keys and values are pushed key,value,key,value,... in
			// source order, so popping visits pairs in reverse-source
			// order. Inserting as each pair is popped means the last
			// insert applied is the earliest pair in source order, so
			// an earlier-source duplicate key wins over a later one.
			for i := n - 1; i >= 0; i-- {
				v, perr := s.pop()
				if perr != nil {
					return nil, perr
				}
				k, perr := s.pop()
				if perr != nil {
					return nil, perr
				}
				kb, ok := k.([]byte)
				if !ok {
					return nil, diag.Fetch("object key must be bytes, got %T", k)
				}
				obj[string(kb)] = v
			}
			s.push(obj)

		default:
			return nil, diag.Fetch("unimplemented opcode %v", op)
		}
	}
}

// dispatchBinary implements the guarded binary-op rule: while the
// error register is already set at entry, Add..LessEqual and Merge are
// skipped entirely — no pops, no pushes, the error is preserved for a
// later SetPathInfallible/ClearError to consume (spec.md §4.5).
func dispatchBinary(s *State, op bytecode.OpCode) *diag.Error {
	if s.HasError() {
		return nil
	}

	rhs, ferr := s.pop()
	if ferr != nil {
		return ferr
	}
	lhs, ferr := s.pop()
	if ferr != nil {
		return ferr
	}

	var out value.Value
	var err error
	switch op {
	case bytecode.Add:
		out, err = value.Add(lhs, rhs)
	case bytecode.Subtract:
		out, err = value.Sub(lhs, rhs)
	case bytecode.Multiply:
		out, err = value.Mul(lhs, rhs)
	case bytecode.Divide:
		out, err = value.Div(lhs, rhs)
	case bytecode.Rem:
		out, err = value.Rem(lhs, rhs)
	case bytecode.Merge:
		out, err = value.Merge(lhs, rhs)
	case bytecode.Greater:
		out, err = value.Gt(lhs, rhs)
	case bytecode.GreaterEqual:
		out, err = value.Ge(lhs, rhs)
	case bytecode.Less:
		out, err = value.Lt(lhs, rhs)
	case bytecode.LessEqual:
		out, err = value.Le(lhs, rhs)
	}
	if err != nil {
		s.SetError(diag.Operation(err))
		return nil
	}
	s.push(out)
	return nil
}

// readTarget resolves a GetPath variable descriptor against ctx and
// the operand stack (spec.md §4.6).
func readTarget(s *State, ctx *host.Context, v pathspec.Variable) (value.Value, error) {
	switch v.Kind {
	case pathspec.VarExternal:
		got, ok, err := ctx.Target().Get(v.Path)
		if err != nil {
			return nil, diag.Host(err)
		}
		if !ok {
			return nil, nil
		}
		return got, nil
	case pathspec.VarInternal:
		root, ok := ctx.State().Variable(v.Ident)
		if !ok {
			return nil, nil
		}
		got, ok := pathspec.GetByPath(root, v.SubPath)
		if !ok {
			return nil, nil
		}
		return value.Clone(got), nil
	case pathspec.VarStack:
		root, ferr := s.pop()
		if ferr != nil {
			return nil, ferr
		}
		got, ok := pathspec.GetByPath(root, v.SubPath)
		if !ok {
			return nil, nil
		}
		return got, nil
	case pathspec.VarNone:
		return nil, nil
	}
	return nil, diag.Fetch("unknown variable kind %d", v.Kind)
}

// writeTarget resolves a SetPath/SetPathInfallible variable descriptor
// against ctx, writing leaf (spec.md §4.6). A VarNone target silently
// discards the write.
func writeTarget(ctx *host.Context, v pathspec.Variable, leaf value.Value) error {
	switch v.Kind {
	case pathspec.VarExternal:
		if err := ctx.Target().Insert(v.Path, leaf); err != nil {
			return diag.Host(err)
		}
		return nil
	case pathspec.VarInternal:
		root, _ := ctx.State().Variable(v.Ident)
		updated := pathspec.InsertByPath(root, v.SubPath, leaf)
		ctx.State().InsertVariable(v.Ident, updated)
		return nil
	case pathspec.VarStack, pathspec.VarNone:
		return nil
	}
	return diag.Fetch("unknown variable kind %d", v.Kind)
}

// dispatchCall drains the function's declared parameter count off the
// parameter-marshalling stack, checks and invokes it, and pushes its
// result — or latches a recoverable CallError and pushes Null.
func dispatchCall(s *State, ctx *host.Context, container *bytecode.Container, funcID int, span diag.Span) error {
	f, ok := container.Function(funcID)
	if !ok {
		return diag.Fetch("call to undefined function id %d", funcID)
	}

	params := f.Parameters()
	slots, ferr := s.drainParams(len(params))
	if ferr != nil {
		return ferr
	}

	args := &fn.ArgumentList{Params: params, Args: make([]fn.Arg, len(slots))}
	for i, slot := range slots {
		args.Args[i] = fn.Arg{Value: slot.value, Any: slot.static, Absent: slot.absent}
	}

	if err := f.CheckArguments(args); err != nil {
		s.SetError(diag.Call(f.Identifier(), span, err))
		s.push(nil)
		return nil
	}

	result, err := f.Call(ctx, args)
	if err != nil {
		if errors.Is(err, fn.ErrAbort) {
			// spec.md §4.5/§6: only the abort statement may raise an
			// Abort; a function doing so is a host implementation bug,
			// not a recoverable runtime error (machine.rs:362-364 panics
			// on exactly this case).
			panic(fmt.Sprintf("function %q raised abort: %v", f.Identifier(), err))
		}
		s.SetError(diag.Call(f.Identifier(), span, err))
		s.push(nil)
		return nil
	}
	s.push(result)
	return nil
}
