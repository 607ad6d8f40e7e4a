package restart

// ContinuableError describes a recoverable failure and the context a handler
// needs to attempt a repair. It is raised through a Registry rather than
// returned directly, and is not itself an error value.
//
// The zero value is a valid error with empty descriptions and a zero context.
type ContinuableError[C any] struct {
	short   string
	long    string
	context C
}

// NewContinuableError returns an immutable continuable error.
func NewContinuableError[C any](shortDescription, longDescription string, context C) *ContinuableError[C] {
	return &ContinuableError[C]{
		short:   shortDescription,
		long:    longDescription,
		context: context,
	}
}

// ShortDescription returns a one-line summary of the failure.
func (e *ContinuableError[C]) ShortDescription() string { return e.short }

// LongDescription returns a detailed explanation of the failure.
func (e *ContinuableError[C]) LongDescription() string { return e.long }

// Context returns the state captured where the failure occurred.
func (e *ContinuableError[C]) Context() C { return e.context }

// String returns the short description.
func (e *ContinuableError[C]) String() string { return e.short }
