package mzident

import (
	"io"
	"time"

	xw "github.com/shabbyrobe/xmlwriter"
	"golang.org/x/text/encoding"
)

const (
	mzIdentMLNamespace = "http://psidev.info/psi/pi/mzIdentML/1.1"
	mzIdentMLVersion   = "1.1.0"
	xsiNamespace       = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation     = mzIdentMLNamespace + " http://www.psidev.info/files/mzIdentML1.1.0.xsd"
)

// Writer is a document session: it owns the output sink, the underlying
// streaming serializer, the element scope stack and the identity registry
// for exactly one MzIdentML document.
//
// A Writer is single-owner and single-threaded. Every operation runs to
// completion before returning; no operation may be issued before Begin or
// after Close.
type Writer struct {
	out   io.Writer
	xw    *xw.Writer
	stack *ScopeStack
	ids   *Registry
	root  Scope

	vocabularies []ControlledVocabulary
	id           string
	creationDate time.Time
	indent       bool
	encodingName string
	encoder      *encoding.Encoder

	started bool
	closed  bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithID sets the id attribute on the MzIdentML root element.
func WithID(id string) Option {
	return func(w *Writer) { w.id = id }
}

// WithCreationDate fixes the root element's creationDate attribute. The
// default is the time Begin is called.
func WithCreationDate(t time.Time) Option {
	return func(w *Writer) { w.creationDate = t }
}

// WithVocabularies appends declarations to the session's vocabulary list,
// which starts out as DefaultVocabularies.
func WithVocabularies(vocabs ...ControlledVocabulary) Option {
	return func(w *Writer) { w.vocabularies = append(w.vocabularies, vocabs...) }
}

// WithIndent makes the underlying serializer indent its output. Indented
// documents are larger and slower to produce; leave this off for bulk
// generation.
func WithIndent() Option {
	return func(w *Writer) { w.indent = true }
}

// WithEncoding writes the document in the named encoding using an encoder
// from golang.org/x/text/encoding. Strings passed to the writer stay UTF-8;
// they are converted on the fly.
func WithEncoding(name string, enc *encoding.Encoder) Option {
	return func(w *Writer) {
		w.encodingName = name
		w.encoder = enc
	}
}

// New returns a Writer over out. Nothing is written until Begin.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{
		out:          out,
		stack:        NewScopeStack(),
		ids:          NewRegistry(),
		vocabularies: DefaultVocabularies(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Begin acquires the sink: it opens the serializer, writes the XML
// declaration and opens the MzIdentML root element. It may be called once;
// every section operation fails with *NotReadyError until it has been.
func (w *Writer) Begin() (err error) {
	if w.closed {
		return &ScopeViolationError{Op: "Begin", Reason: "writer is closed"}
	}
	if w.started {
		return &ScopeViolationError{Op: "Begin", Reason: "session already started"}
	}

	var opts []xw.Option
	if w.indent {
		opts = append(opts, xw.WithIndent())
	}
	if w.encoder != nil {
		w.xw = xw.OpenEncoding(w.out, w.encodingName, w.encoder, opts...)
	} else {
		w.xw = xw.Open(w.out, opts...)
	}
	if err := w.xw.StartDoc(xw.Doc{}); err != nil {
		return err
	}

	created := w.creationDate
	if created.IsZero() {
		created = time.Now()
	}
	attrs := []xw.Attr{
		{Name: "id", Value: w.id},
		{Name: "version", Value: mzIdentMLVersion},
		{Name: "xmlns", Value: mzIdentMLNamespace},
		{Name: "xmlns:xsi", Value: xsiNamespace},
		{Name: "xsi:schemaLocation", Value: schemaLocation},
		{Name: "creationDate", Value: created.Format("2006-01-02T15:04:05")},
	}

	w.stack.bind(w.xw)
	root, err := w.stack.Open("MzIdentML", attrs...)
	if err != nil {
		w.stack.release()
		return err
	}
	w.root = root
	w.started = true
	return nil
}

// Close ends the root element, flushes everything buffered, releases the
// sink (closing it when it implements io.Closer) and retires the session.
// The sink is released even when closing the root fails; the first error is
// reported.
func (w *Writer) Close() error {
	if !w.started {
		return &NotReadyError{Op: "Close"}
	}
	if w.closed {
		return &ScopeViolationError{Op: "Close", Reason: "writer is closed"}
	}
	var first error
	if err := w.stack.Close(w.root); err != nil {
		first = err
	} else if err := w.xw.EndDoc(); err != nil {
		first = err
	} else if err := w.xw.Flush(); err != nil {
		first = err
	}
	w.stack.release()
	w.xw = nil
	w.closed = true
	if c, ok := w.out.(io.Closer); ok {
		if cerr := c.Close(); first == nil {
			first = cerr
		}
	}
	return first
}

// Resolve exposes the session's identity registry so callers can obtain the
// id an entity will be (or was) written with.
func (w *Writer) Resolve(entityType, key string) string {
	return w.ids.Resolve(entityType, key)
}

// Generate runs build between Begin and Close on a fresh Writer over out,
// guaranteeing the sink is released on every exit path. The build error
// wins over any close error.
func Generate(out io.Writer, build func(*Writer) error, opts ...Option) (err error) {
	w := New(out, opts...)
	if err := w.Begin(); err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return build(w)
}
