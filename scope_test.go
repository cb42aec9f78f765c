package mzident

import (
	"bytes"
	"errors"
	"testing"

	xw "github.com/shabbyrobe/xmlwriter"
	"github.com/stretchr/testify/require"
)

func boundStack(t *testing.T) (*bytes.Buffer, *ScopeStack) {
	t.Helper()
	b := &bytes.Buffer{}
	s := NewScopeStack()
	s.bind(xw.Open(b))
	return b, s
}

func TestScopeStackNotReady(t *testing.T) {
	s := NewScopeStack()

	var nr *NotReadyError
	_, err := s.Open("a")
	require.ErrorAs(t, err, &nr)
	require.ErrorAs(t, s.WriteNode(xw.Elem{Name: "a"}), &nr)
	require.ErrorAs(t, s.Close(Scope{}), &nr)
}

func TestScopeStackNesting(t *testing.T) {
	b, s := boundStack(t)

	outer, err := s.Open("outer")
	require.NoError(t, err)
	inner, err := s.Open("inner")
	require.NoError(t, err)
	require.Equal(t, 2, s.Depth())

	require.NoError(t, s.Close(inner))
	require.NoError(t, s.Close(outer))
	require.Equal(t, 0, s.Depth())

	// Closing the outermost scope flushed the sink.
	require.Equal(t, "<outer><inner/></outer>", b.String())
}

func TestScopeStackCloseOutOfOrder(t *testing.T) {
	_, s := boundStack(t)

	outer, err := s.Open("outer")
	require.NoError(t, err)
	_, err = s.Open("inner")
	require.NoError(t, err)

	var sv *ScopeViolationError
	require.ErrorAs(t, s.Close(outer), &sv)
}

func TestScopeStackDoubleClose(t *testing.T) {
	_, s := boundStack(t)

	sc, err := s.Open("a")
	require.NoError(t, err)
	require.NoError(t, s.Close(sc))

	var sv *ScopeViolationError
	require.ErrorAs(t, s.Close(sc), &sv)
}

func TestScopeStackClosed(t *testing.T) {
	_, s := boundStack(t)
	s.release()

	var sv *ScopeViolationError
	_, err := s.Open("a")
	require.ErrorAs(t, err, &sv)
	require.ErrorAs(t, s.WriteNode(xw.Elem{Name: "a"}), &sv)
}

func TestScopeStackNestClosesOnBodyError(t *testing.T) {
	b, s := boundStack(t)

	boom := errors.New("boom")
	root, err := s.Open("root")
	require.NoError(t, err)
	err = s.Nest("child", nil, func() error { return boom })
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.Close(root))
	require.Equal(t, "<root><child/></root>", b.String())
}

func TestScopeStackNestAttrs(t *testing.T) {
	b, s := boundStack(t)

	err := s.Nest("a", []xw.Attr{{Name: "k", Value: "v"}}, func() error {
		return s.WriteNode(xw.Text("hi"))
	})
	require.NoError(t, err)
	require.Equal(t, `<a k="v">hi</a>`, b.String())
}
