package mzident

import (
	xw "github.com/shabbyrobe/xmlwriter"
)

// Scope is a handle to an open XML element awaiting closure. Scopes obey
// strict stack discipline: the most recently opened scope must be closed
// first, and a scope may not be written to after it has been closed.
type Scope struct {
	serial int
	name   string
}

// Name returns the element name this scope was opened with.
func (s Scope) Name() string { return s.name }

type stackState int

const (
	stackIdle stackState = iota
	stackReady
	stackClosed
)

// ScopeStack manages nested element scopes over the underlying streaming
// serializer. All content written through the stack lands inside the
// innermost open scope. Closing the outermost scope flushes the serializer's
// buffer to the sink.
//
// The stack starts idle; every operation fails with *NotReadyError until the
// owning session binds a serializer, and with *ScopeViolationError after the
// session releases it.
type ScopeStack struct {
	xw     *xw.Writer
	open   []Scope
	serial int
	state  stackState
}

// NewScopeStack returns a stack with no serializer bound.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{}
}

func (s *ScopeStack) bind(w *xw.Writer) {
	s.xw = w
	s.state = stackReady
}

func (s *ScopeStack) release() {
	s.xw = nil
	s.state = stackClosed
}

func (s *ScopeStack) check(op string) error {
	switch s.state {
	case stackIdle:
		return &NotReadyError{Op: op}
	case stackClosed:
		return &ScopeViolationError{Op: op, Reason: "writer is closed"}
	}
	return nil
}

// Depth returns the number of scopes currently open.
func (s *ScopeStack) Depth() int { return len(s.open) }

// Open begins a new element as a child of the innermost open scope, or of
// the document root if none is open, and returns a handle for closing it.
func (s *ScopeStack) Open(name string, attrs ...xw.Attr) (Scope, error) {
	if err := s.check("open " + name); err != nil {
		return Scope{}, err
	}
	if err := s.xw.StartElem(xw.Elem{Name: name, Attrs: attrs}); err != nil {
		return Scope{}, err
	}
	s.serial++
	sc := Scope{serial: s.serial, name: name}
	s.open = append(s.open, sc)
	return sc, nil
}

// Close ends the element sc refers to. sc must be the innermost open scope:
// closing out of order, or closing a scope twice, is a *ScopeViolationError.
// Closing the outermost scope flushes the sink.
func (s *ScopeStack) Close(sc Scope) error {
	if err := s.check("close " + sc.name); err != nil {
		return err
	}
	if len(s.open) == 0 {
		return &ScopeViolationError{Op: "close", Elem: sc.name, Reason: "scope is not open"}
	}
	top := s.open[len(s.open)-1]
	if top.serial != sc.serial {
		return &ScopeViolationError{
			Op: "close", Elem: sc.name,
			Reason: "closed out of order; innermost open scope is " + top.name,
		}
	}
	if err := s.xw.EndElem(sc.name); err != nil {
		return err
	}
	s.open = s.open[:len(s.open)-1]
	if len(s.open) == 0 {
		return s.xw.Flush()
	}
	return nil
}

// CloseFull is Close, but always ends the element in the full style
// (<tag></tag>) even when it has no children.
func (s *ScopeStack) CloseFull(sc Scope) error {
	if err := s.check("close " + sc.name); err != nil {
		return err
	}
	if len(s.open) == 0 || s.open[len(s.open)-1].serial != sc.serial {
		return s.Close(sc)
	}
	if err := s.xw.EndElemFull(sc.name); err != nil {
		return err
	}
	s.open = s.open[:len(s.open)-1]
	if len(s.open) == 0 {
		return s.xw.Flush()
	}
	return nil
}

// Flush pushes output buffered by the serializer through to the sink.
func (s *ScopeStack) Flush() error {
	if err := s.check("flush"); err != nil {
		return err
	}
	return s.xw.Flush()
}

// WriteNode writes fully-formed nodes into the innermost open scope.
func (s *ScopeStack) WriteNode(nodes ...xw.Writable) error {
	if err := s.check("write"); err != nil {
		return err
	}
	return s.xw.Write(nodes...)
}

// Nest opens an element, runs body inside it, and closes it again on every
// path out of body. The first error wins: a body error is preferred over the
// close error it may have caused.
func (s *ScopeStack) Nest(name string, attrs []xw.Attr, body func() error) error {
	sc, err := s.Open(name, attrs...)
	if err != nil {
		return err
	}
	berr := body()
	if cerr := s.Close(sc); berr == nil {
		return cerr
	}
	return berr
}
