package ir

import (
	"github.com/moneylang/moneylang/internal/arena"
	"github.com/moneylang/moneylang/internal/ast"
	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/localsstack"
	"github.com/moneylang/moneylang/internal/nametable"
)

// Builder lowers a parsed AST into a linear IR list, resolving every
// identifier occurrence through the locals stack as it goes.
type Builder struct {
	tree   *ast.Tree
	names  *nametable.Table
	locals *localsstack.Stack
	list   *List
	taxes  bool

	nextLabel    int
	pendingJumps map[int][]int // labelID -> IR indices of JMP/JZ instructions targeting it
	labelPos     map[int]int   // labelID -> IR index of the placed LABEL
}

// New creates a Builder over tree/names. taxes enables the --taxes RET
// scaling behavior (see the RET lowering rule).
func New(tree *ast.Tree, names *nametable.Table, taxes bool) *Builder {
	return &Builder{
		tree:         tree,
		names:        names,
		locals:       localsstack.New(),
		list:         &List{},
		taxes:        taxes,
		pendingJumps: map[int][]int{},
		labelPos:     map[int]int{},
	}
}

// Build lowers the whole tree, bracketed by a synthetic START head and
// EXIT tail, and returns the finished IR list.
func (b *Builder) Build() (*List, error) {
	b.list.Emit(Instr{Op: OpStart})
	if err := b.buildSeq(b.tree.Root); err != nil {
		return nil, err
	}
	b.list.Emit(Instr{Op: OpExit})
	b.patchJumps()
	return b.list, nil
}

func (b *Builder) patchJumps() {
	for labelID, idxs := range b.pendingJumps {
		target := int64(b.labelPos[labelID])
		for _, idx := range idxs {
			b.list.Instrs[idx].AddrOrID = target
		}
	}
}

func (b *Builder) newLabel() int {
	id := b.nextLabel
	b.nextLabel++
	return id
}

func (b *Builder) emitJz(labelID int) {
	idx := b.list.Emit(Instr{Op: OpJz})
	b.pendingJumps[labelID] = append(b.pendingJumps[labelID], idx)
}

func (b *Builder) emitJmp(labelID int) {
	idx := b.list.Emit(Instr{Op: OpJmp})
	b.pendingJumps[labelID] = append(b.pendingJumps[labelID], idx)
}

func (b *Builder) placeLabel(labelID int, comment string) {
	idx := b.list.Emit(Instr{Op: OpLabel, Local: true, Comment: comment})
	b.labelPos[labelID] = idx
}

func (b *Builder) nameOf(id int) string {
	if e := b.names.Get(id); e != nil {
		return e.Name
	}
	return ""
}

// buildSeq walks a statement sequence: a right-skewed SEP chain, a single
// statement/declaration, or an empty (NilRef) body.
func (b *Builder) buildSeq(ref arena.Ref) error {
	if ref == arena.NilRef {
		return nil
	}
	n := b.tree.Get(ref)
	if n.Kind == ast.KindOperator && n.Op == core.OpSep {
		if err := b.buildSeq(n.Left); err != nil {
			return err
		}
		return b.buildSeq(n.Right)
	}
	return b.buildStmt(ref)
}

func (b *Builder) buildStmt(ref arena.Ref) error {
	n := b.tree.Get(ref)
	if n.Kind != ast.KindOperator {
		return &core.FormatError{Msg: "expected a statement node"}
	}
	switch n.Op {
	case core.OpVarDecl:
		return b.buildVarDecl(n)
	case core.OpAssign:
		return b.buildAssign(n)
	case core.OpIfElse:
		return b.buildIfElse(n)
	case core.OpWhile:
		return b.buildWhile(n)
	case core.OpFuncDecl:
		return b.buildFuncDecl(n)
	case core.OpPay:
		return b.buildPay(n)
	case core.OpInvest:
		return b.buildInvest(n)
	case core.OpShowBalance:
		return b.buildShowBalance(n)
	case core.OpTxt:
		return b.buildTxt(n)
	case core.OpCall:
		return b.buildCall(n)
	default:
		return &core.FormatError{Msg: "unsupported statement node: " + n.Op.String()}
	}
}

func (b *Builder) buildVarDecl(n *ast.Node) error {
	idNode := b.tree.Get(n.Left)
	_, isLocal := b.locals.PushVar(idNode.Id)
	b.list.Emit(Instr{Op: OpVarDecl, IsLocal: isLocal, Comment: b.nameOf(idNode.Id)})
	return nil
}

func (b *Builder) buildAssign(n *ast.Node) error {
	if err := b.buildExpr(n.Right); err != nil {
		return err
	}
	idNode := b.tree.Get(n.Left)
	addr, isLocal, err := b.locals.Resolve(idNode.Id, b.nameOf(idNode.Id), idNode.Pos)
	if err != nil {
		return err
	}
	b.list.Emit(Instr{Op: OpPop, AddrOrID: addr, IsLocal: isLocal, Comment: b.nameOf(idNode.Id)})
	return nil
}

// buildIfElse handles IF_ELSE(cond, SEP(then, else-or-nil)).
func (b *Builder) buildIfElse(n *ast.Node) error {
	branches := b.tree.Get(n.Right)
	thenRef, elseRef := branches.Left, branches.Right

	if err := b.buildExpr(n.Left); err != nil {
		return err
	}

	if elseRef == arena.NilRef {
		end := b.newLabel()
		b.emitJz(end)
		if err := b.buildBlock(thenRef); err != nil {
			return err
		}
		b.placeLabel(end, "")
		return nil
	}

	elseLabel, end := b.newLabel(), b.newLabel()
	b.emitJz(elseLabel)
	if err := b.buildBlock(thenRef); err != nil {
		return err
	}
	b.emitJmp(end)
	b.placeLabel(elseLabel, "")
	if err := b.buildBlock(elseRef); err != nil {
		return err
	}
	b.placeLabel(end, "")
	return nil
}

func (b *Builder) buildWhile(n *ast.Node) error {
	top, end := b.newLabel(), b.newLabel()
	b.placeLabel(top, "")
	if err := b.buildExpr(n.Left); err != nil {
		return err
	}
	b.emitJz(end)
	if err := b.buildBlock(n.Right); err != nil {
		return err
	}
	b.emitJmp(top)
	b.placeLabel(end, "")
	return nil
}

// buildBlock runs body inside its own NORMAL_SCOPE: locals it declares
// stop resolving once the block ends, but no cleanup instructions are
// emitted (the enclosing function's RET unwinds the whole frame at once).
func (b *Builder) buildBlock(body arena.Ref) error {
	b.locals.InitScope(localsstack.NormalScope)
	err := b.buildSeq(body)
	b.locals.PopScope()
	return err
}

// buildFuncDecl handles FUNC_DECL(FUNC_HEADER(name, args), body).
func (b *Builder) buildFuncDecl(n *ast.Node) error {
	header := b.tree.Get(n.Left)
	fnId := b.tree.Get(header.Left).Id

	end := b.newLabel()
	b.emitJmp(end)
	b.list.Emit(Instr{Op: OpLabel, Local: false, AddrOrID: int64(fnId), Comment: b.nameOf(fnId)})

	b.locals.InitScope(localsstack.FuncScope)
	for i, argId := range b.collectArgs(header.Right) {
		b.locals.PushArg(argId, i)
	}
	b.list.Emit(Instr{Op: OpSetFramePtr})
	if err := b.buildSeq(n.Right); err != nil {
		return err
	}
	b.locals.PopScope()

	b.placeLabel(end, "")
	return nil
}

// collectArgs walks a right-skewed COMMA chain (or a bare identifier, or
// NilRef) and returns the name-table ids in left-to-right order.
func (b *Builder) collectArgs(ref arena.Ref) []int {
	var out []int
	for ref != arena.NilRef {
		n := b.tree.Get(ref)
		if n.Kind == ast.KindOperator && n.Op == core.OpComma {
			out = append(out, b.tree.Get(n.Left).Id)
			ref = n.Right
			continue
		}
		out = append(out, n.Id)
		break
	}
	return out
}

func (b *Builder) buildPay(n *ast.Node) error {
	if err := b.buildExpr(n.Left); err != nil {
		return err
	}
	b.list.Emit(Instr{Op: OpRet, Taxed: b.taxes})
	return nil
}

func (b *Builder) buildInvest(n *ast.Node) error {
	if err := b.emitStdlibCall("__stdlib_in"); err != nil {
		return err
	}
	b.list.Emit(Instr{Op: OpPush, Push: PushReg})
	idNode := b.tree.Get(n.Left)
	addr, isLocal, err := b.locals.Resolve(idNode.Id, b.nameOf(idNode.Id), idNode.Pos)
	if err != nil {
		return err
	}
	b.list.Emit(Instr{Op: OpPop, AddrOrID: addr, IsLocal: isLocal, Comment: b.nameOf(idNode.Id)})
	return nil
}

func (b *Builder) buildShowBalance(n *ast.Node) error {
	if err := b.buildExpr(n.Left); err != nil {
		return err
	}
	return b.emitStdlibCall("__stdlib_out")
}

func (b *Builder) buildTxt(n *ast.Node) error {
	idNode := b.tree.Get(n.Left)
	b.list.Emit(Instr{Op: OpPrintText, AddrOrID: int64(idNode.Id), Comment: b.nameOf(idNode.Id)})
	return nil
}

func (b *Builder) emitStdlibCall(name string) error {
	id, ok := b.names.Lookup(name)
	if !ok {
		return &core.FormatError{Msg: "missing reserved stdlib symbol " + name}
	}
	b.list.Emit(Instr{Op: OpCall, AddrOrID: int64(id), Comment: name})
	return nil
}

// buildCall handles a call in statement position; buildExpr handles one
// used as a value, adding the PUSH REG that captures the return value.
func (b *Builder) buildCall(n *ast.Node) error {
	nameNode := b.tree.Get(n.Left)
	args := b.collectCallArgs(n.Right)
	for i := len(args) - 1; i >= 0; i-- {
		if err := b.buildExpr(args[i]); err != nil {
			return err
		}
	}
	// Lowering reads the callee's ArgsCount straight from the name table
	// to size the post-call "add rsp, 8*argsCount" cleanup; no extra IR
	// node carries it.
	b.list.Emit(Instr{Op: OpCall, AddrOrID: int64(nameNode.Id), Comment: b.nameOf(nameNode.Id)})
	return nil
}

// collectCallArgs walks a right-skewed COMMA chain (or a bare expression,
// or NilRef) and returns the argument expression refs in left-to-right
// order.
func (b *Builder) collectCallArgs(ref arena.Ref) []arena.Ref {
	var out []arena.Ref
	for ref != arena.NilRef {
		n := b.tree.Get(ref)
		if n.Kind == ast.KindOperator && n.Op == core.OpComma {
			out = append(out, n.Left)
			ref = n.Right
			continue
		}
		out = append(out, ref)
		break
	}
	return out
}

// buildExpr lowers ref as a value-producing expression, leaving its result
// on top of the operand stack.
func (b *Builder) buildExpr(ref arena.Ref) error {
	n := b.tree.Get(ref)
	switch n.Kind {
	case ast.KindNumber:
		b.list.Emit(Instr{Op: OpPush, Push: PushImm, DVal: n.NumVal})
		return nil

	case ast.KindIdentifier:
		addr, isLocal, err := b.locals.Resolve(n.Id, b.nameOf(n.Id), n.Pos)
		if err != nil {
			return err
		}
		b.list.Emit(Instr{Op: OpPush, Push: PushMem, AddrOrID: addr, IsLocal: isLocal, Comment: b.nameOf(n.Id)})
		return nil

	case ast.KindOperator:
		switch n.Op {
		case core.OpAdd, core.OpSub, core.OpMul, core.OpDiv:
			if err := b.buildExpr(n.Left); err != nil {
				return err
			}
			if err := b.buildExpr(n.Right); err != nil {
				return err
			}
			b.list.Emit(Instr{Op: arithOpKind(n.Op)})
			return nil

		case core.OpSqrt:
			if err := b.buildExpr(n.Left); err != nil {
				return err
			}
			b.list.Emit(Instr{Op: OpSqrt})
			return nil

		case core.OpSin, core.OpCos:
			return &core.FormatError{Msg: n.Op.Desc().Lexeme + " has no IR lowering"}

		case core.OpLt, core.OpGt, core.OpLe, core.OpGe, core.OpEq, core.OpNeq:
			if err := b.buildExpr(n.Left); err != nil {
				return err
			}
			if err := b.buildExpr(n.Right); err != nil {
				return err
			}
			b.list.Emit(Instr{Op: OpCmp, Cmp: CmpKindFromOp(n.Op)})
			return nil

		case core.OpCall:
			if err := b.buildCall(n); err != nil {
				return err
			}
			b.list.Emit(Instr{Op: OpPush, Push: PushReg})
			return nil
		}
	}
	return &core.FormatError{Msg: "unsupported expression node"}
}

func arithOpKind(op core.OperatorKind) OpKind {
	switch op {
	case core.OpAdd:
		return OpAdd
	case core.OpSub:
		return OpSub
	case core.OpMul:
		return OpMul
	case core.OpDiv:
		return OpDiv
	default:
		return OpNop
	}
}
