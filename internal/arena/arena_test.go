package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocReturnsSequentialRefs(t *testing.T) {
	a := New[int](4)
	r0, err := a.Alloc(10)
	require.NoError(t, err)
	r1, err := a.Alloc(20)
	require.NoError(t, err)
	require.Equal(t, Ref(0), r0)
	require.Equal(t, Ref(1), r1)
	require.Equal(t, 2, a.Len())
}

func TestAllocOverflowReturnsArenaOverflow(t *testing.T) {
	a := New[int](1)
	_, err := a.Alloc(1)
	require.NoError(t, err)
	_, err = a.Alloc(2)
	require.Error(t, err)
}

func TestGetReturnsStoredValue(t *testing.T) {
	a := New[string](2)
	ref, err := a.Alloc("hello")
	require.NoError(t, err)
	require.Equal(t, "hello", *a.Get(ref))
}

func TestGetNilRefReturnsNil(t *testing.T) {
	a := New[int](2)
	require.Nil(t, a.Get(NilRef))
}
