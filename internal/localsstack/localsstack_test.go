package localsstack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moneylang/moneylang/internal/core"
)

func TestPushVarNegativeSequence(t *testing.T) {
	s := New()
	s.InitScope(FuncScope)
	addr, isLocal := s.PushVar(1)
	require.EqualValues(t, -1, addr)
	require.True(t, isLocal)
	addr, _ = s.PushVar(2)
	require.EqualValues(t, -2, addr)
	addr, _ = s.PushVar(3)
	require.EqualValues(t, -3, addr)
}

func TestPushVarAtTopLevelIsNotLocal(t *testing.T) {
	s := New()
	_, isLocal := s.PushVar(1)
	require.False(t, isLocal)
}

func TestPushArgPositiveSequence(t *testing.T) {
	s := New()
	s.InitScope(FuncScope)
	require.EqualValues(t, 2, s.PushArg(1, 0))
	require.EqualValues(t, 3, s.PushArg(2, 1))
}

func TestNormalScopeInheritsCursor(t *testing.T) {
	s := New()
	s.InitScope(FuncScope)
	s.PushVar(1) // -1
	s.InitScope(NormalScope)
	addr, isLocal := s.PushVar(2)
	require.EqualValues(t, -2, addr)
	require.True(t, isLocal)
}

func TestFuncScopeResetsCursor(t *testing.T) {
	s := New()
	s.InitScope(FuncScope)
	s.PushVar(1) // -1
	s.InitScope(FuncScope)
	addr, _ := s.PushVar(2)
	require.EqualValues(t, -1, addr)
}

func TestPopScopeCount(t *testing.T) {
	s := New()
	s.InitScope(NormalScope)
	s.PushVar(1)
	s.PushVar(2)
	require.Equal(t, 2, s.PopScope())
	require.Equal(t, 0, s.Depth())
}

func TestResolveGlobalFromInsideFunctionIsNotLocal(t *testing.T) {
	s := New()
	s.PushVar(10) // top-level global "g" at -1, isLocal=false

	s.InitScope(FuncScope)
	s.PushArg(20, 0) // local arg "x" at +2, isLocal=true

	addr, isLocal, err := s.Resolve(20, "x", core.Position{})
	require.NoError(t, err)
	require.True(t, isLocal)
	require.EqualValues(t, 2, addr)

	addr, isLocal, err = s.Resolve(10, "g", core.Position{})
	require.NoError(t, err)
	require.False(t, isLocal)
	require.EqualValues(t, -1, addr)
}

func TestResolveUnknownIsScopeError(t *testing.T) {
	s := New()
	s.InitScope(FuncScope)
	_, _, err := s.Resolve(99, "missing", core.Position{File: "t.ml", Line: 1, Column: 1})
	require.Error(t, err)
	require.IsType(t, &core.ScopeError{}, err)
}

func TestShadowingThenScopeExitRestoresGlobal(t *testing.T) {
	s := New()
	s.PushVar(1) // global "x" at -1, isLocal=false

	s.InitScope(NormalScope)
	s.PushVar(1) // shadowing "x" at -2 within a block; still top-level (funcDepth==0) so isLocal=false too
	addr, _, err := s.Resolve(1, "x", core.Position{})
	require.NoError(t, err)
	require.EqualValues(t, -2, addr)
	require.Equal(t, 1, s.PopScope())

	addr, _, err = s.Resolve(1, "x", core.Position{})
	require.NoError(t, err)
	require.EqualValues(t, -1, addr)
}

func TestIdsHelperSorted(t *testing.T) {
	s := New()
	s.InitScope(FuncScope)
	s.PushVar(5)
	s.PushVar(1)
	require.Equal(t, []int{1, 5}, s.ids())
}
