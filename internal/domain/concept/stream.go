package concept

import "context"

// Stream is a lazy, forward-only sequence of concepts.  Next returns false
// when the stream is exhausted or failed; Err tells the two apart.
type Stream interface {
	Next(ctx context.Context) bool
	Concept() *Concept
	Err() error
}

// SliceStream streams the concatenation of its slices.
type SliceStream struct {
	parts [][]*Concept
	part  int
	pos   int
	cur   *Concept
	err   error
}

// NewSliceStream returns a Stream over parts in order.
func NewSliceStream(parts ...[]*Concept) *SliceStream {
	return &SliceStream{parts: parts, pos: -1}
}

func (s *SliceStream) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		s.cur = nil
		return false
	}
	for s.part < len(s.parts) {
		s.pos++
		if s.pos < len(s.parts[s.part]) {
			s.cur = s.parts[s.part][s.pos]
			return true
		}
		s.part++
		s.pos = -1
	}
	s.cur = nil
	return false
}

func (s *SliceStream) Concept() *Concept { return s.cur }

func (s *SliceStream) Err() error { return s.err }

// Collect drains s into a slice.
func Collect(ctx context.Context, s Stream) ([]*Concept, error) {
	var out []*Concept
	for s.Next(ctx) {
		out = append(out, s.Concept())
	}
	return out, s.Err()
}

// Batch drains s in slices of at most size concepts and calls fn for each.
// A size below one means a single batch.
func Batch(ctx context.Context, s Stream, size int, fn func([]*Concept) error) error {
	var buf []*Concept
	for s.Next(ctx) {
		buf = append(buf, s.Concept())
		if size > 0 && len(buf) == size {
			if err := fn(buf); err != nil {
				return err
			}
			buf = nil
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	if len(buf) > 0 {
		return fn(buf)
	}
	return nil
}

//Personal.AI order the ending
