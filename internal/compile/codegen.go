package compile

import (
	"fmt"

	"github.com/relaypipe/remap/internal/bytecode"
	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/pathspec"
)

// Compile parses src and emits a bytecode.Container bound to
// functions, resolving Call nodes against functions by Identifier().
// The container's final instruction is always Return, pushing the
// last top-level statement's value as the program's result: nil if the
// program is empty, the assigned value if it ends on an Assign, and no
// result at all if it ends on an Abort, which fails the run.
func Compile(src string, functions []fn.Function) (*bytecode.Container, error) {
	stmts, err := parseProgram(src)
	if err != nil {
		return nil, err
	}

	c := bytecode.New(functions)
	funcIdx := make(map[string]int, len(functions))
	for i, f := range functions {
		funcIdx[f.Identifier()] = i
	}
	g := &generator{c: c, funcIdx: funcIdx, functions: functions}

	for i, stmt := range stmts {
		last := i == len(stmts)-1
		switch st := stmt.(type) {
		case Abort:
			c.WriteOpcode(bytecode.Abort)
			c.WritePrimitive(0)
			c.WritePrimitive(0)
		case Assign:
			if err := g.emitAssign(st); err != nil {
				return nil, err
			}
			// SetPath/SetPathInfallible push the assigned value back
			// (to support chained assignment); a standalone assignment
			// statement that isn't the program's last expression must
			// discard it like any other statement.
			if !last {
				c.WriteOpcode(bytecode.Pop)
			}
		default:
			if err := g.emitExpr(stmt); err != nil {
				return nil, err
			}
			if !last {
				c.WriteOpcode(bytecode.Pop)
			}
		}
	}
	c.WriteOpcode(bytecode.Return)
	return c, nil
}

type generator struct {
	c         *bytecode.Container
	funcIdx   map[string]int
	functions []fn.Function
}

func (g *generator) emitAssign(a Assign) error {
	if err := g.emitExpr(a.Value); err != nil {
		return err
	}
	okVar, err := targetVariable(a.Target)
	if err != nil {
		return err
	}
	okIdx := g.c.GetOrAddTarget(okVar)

	if !a.Infallible {
		g.c.WriteOpcode(bytecode.SetPath)
		g.c.WritePrimitive(okIdx)
		return nil
	}

	errVar, err := targetVariable(a.ErrTarget)
	if err != nil {
		return err
	}
	errIdx := g.c.GetOrAddTarget(errVar)
	defaultIdx := g.c.AddConstant(nil)

	g.c.WriteOpcode(bytecode.SetPathInfallible)
	g.c.WritePrimitive(okIdx)
	g.c.WritePrimitive(errIdx)
	g.c.WritePrimitive(defaultIdx)
	return nil
}

func targetVariable(n Node) (pathspec.Variable, error) {
	switch t := n.(type) {
	case PathExpr:
		return pathspec.External(toPath(t.Segments)), nil
	case VarExpr:
		return pathspec.Internal(t.Ident, toPath(t.Segments)), nil
	default:
		return pathspec.Variable{}, fmt.Errorf("compile: invalid assignment target %T", n)
	}
}

func toPath(segs []PathSeg) pathspec.Path {
	path := make(pathspec.Path, len(segs))
	for i, s := range segs {
		switch s.Kind {
		case segField:
			path[i] = pathspec.Field(s.Field)
		case segCoalesce:
			path[i] = pathspec.Coalesce(s.Fields...)
		case segIndex:
			path[i] = pathspec.Index(s.Index)
		}
	}
	return path
}

func (g *generator) emitExpr(n Node) error {
	switch e := n.(type) {
	case LitNull:
		g.pushConstant(nil)
	case LitBool:
		g.pushConstant(e.Value)
	case LitNumber:
		if e.IsFloat {
			g.pushConstant(e.Float)
		} else {
			g.pushConstant(e.Int)
		}
	case LitString:
		g.pushConstant([]byte(e.Value))

	case ArrayLit:
		for _, el := range e.Elements {
			if err := g.emitExpr(el); err != nil {
				return err
			}
		}
		g.c.WriteOpcode(bytecode.CreateArray)
		g.c.WritePrimitive(len(e.Elements))

	case ObjectLit:
		for i, key := range e.Keys {
			g.pushConstant([]byte(key))
			if err := g.emitExpr(e.Values[i]); err != nil {
				return err
			}
		}
		g.c.WriteOpcode(bytecode.CreateObject)
		g.c.WritePrimitive(len(e.Keys))

	case PathExpr:
		idx := g.c.GetOrAddTarget(pathspec.External(toPath(e.Segments)))
		g.c.WriteOpcode(bytecode.GetPath)
		g.c.WritePrimitive(idx)

	case VarExpr:
		idx := g.c.GetOrAddTarget(pathspec.Internal(e.Ident, toPath(e.Segments)))
		g.c.WriteOpcode(bytecode.GetPath)
		g.c.WritePrimitive(idx)

	case Unary:
		if err := g.emitExpr(e.Expr); err != nil {
			return err
		}
		switch e.Op {
		case "-":
			g.c.WriteOpcode(bytecode.Negate)
		case "!":
			g.c.WriteOpcode(bytecode.Not)
		default:
			return fmt.Errorf("compile: unknown unary operator %q", e.Op)
		}

	case Binary:
		return g.emitBinary(e)

	case Call:
		return g.emitCall(e)

	case If:
		return g.emitIf(e)

	default:
		return fmt.Errorf("compile: unhandled expression node %T", n)
	}
	return nil
}

func (g *generator) pushConstant(v interface{}) {
	idx := g.c.AddConstant(v)
	g.c.WriteOpcode(bytecode.Constant)
	g.c.WritePrimitive(idx)
}

func (g *generator) emitBinary(b Binary) error {
	switch b.Op {
	case "&&":
		if err := g.emitExpr(b.Left); err != nil {
			return err
		}
		patch := g.c.EmitJump(bytecode.JumpIfFalse)
		g.c.WriteOpcode(bytecode.Pop)
		if err := g.emitExpr(b.Right); err != nil {
			return err
		}
		g.c.PatchJump(patch)
		return nil
	case "||":
		if err := g.emitExpr(b.Left); err != nil {
			return err
		}
		patch := g.c.EmitJump(bytecode.JumpIfTrue)
		g.c.WriteOpcode(bytecode.Pop)
		if err := g.emitExpr(b.Right); err != nil {
			return err
		}
		g.c.PatchJump(patch)
		return nil
	}

	if err := g.emitExpr(b.Left); err != nil {
		return err
	}
	if err := g.emitExpr(b.Right); err != nil {
		return err
	}
	switch b.Op {
	case "+":
		g.c.WriteOpcode(bytecode.Add)
	case "-":
		g.c.WriteOpcode(bytecode.Subtract)
	case "*":
		g.c.WriteOpcode(bytecode.Multiply)
	case "/":
		g.c.WriteOpcode(bytecode.Divide)
	case "%":
		g.c.WriteOpcode(bytecode.Rem)
	case "merge":
		g.c.WriteOpcode(bytecode.Merge)
	case "==":
		g.c.WriteOpcode(bytecode.Equal)
	case "!=":
		g.c.WriteOpcode(bytecode.NotEqual)
	case "<":
		g.c.WriteOpcode(bytecode.Less)
	case "<=":
		g.c.WriteOpcode(bytecode.LessEqual)
	case ">":
		g.c.WriteOpcode(bytecode.Greater)
	case ">=":
		g.c.WriteOpcode(bytecode.GreaterEqual)
	default:
		return fmt.Errorf("compile: unknown binary operator %q", b.Op)
	}
	return nil
}

func (g *generator) emitIf(e If) error {
	if err := g.emitExpr(e.Cond); err != nil {
		return err
	}
	elseJump := g.c.EmitJump(bytecode.JumpIfFalse)
	g.c.WriteOpcode(bytecode.Pop)
	if err := g.emitExpr(e.Then); err != nil {
		return err
	}
	endJump := g.c.EmitJump(bytecode.Jump)
	g.c.PatchJump(elseJump)
	g.c.WriteOpcode(bytecode.Pop)
	if err := g.emitExpr(e.Else); err != nil {
		return err
	}
	g.c.PatchJump(endJump)
	return nil
}

func (g *generator) emitCall(e Call) error {
	idx, ok := g.funcIdx[e.Name]
	if !ok {
		return fmt.Errorf("compile: call to undefined function %q", e.Name)
	}
	params := g.functions[idx].Parameters()
	if len(e.Args) > len(params) {
		return fmt.Errorf("compile: %q takes at most %d arguments, got %d", e.Name, len(params), len(e.Args))
	}
	for _, arg := range e.Args {
		if err := g.emitExpr(arg); err != nil {
			return err
		}
		g.c.WriteOpcode(bytecode.MoveParameter)
	}
	for i := len(e.Args); i < len(params); i++ {
		g.c.WriteOpcode(bytecode.EmptyParameter)
	}
	g.c.WriteOpcode(bytecode.Call)
	g.c.WritePrimitive(idx)
	g.c.WritePrimitive(0)
	g.c.WritePrimitive(0)
	return nil
}
