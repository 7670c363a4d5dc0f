package stream

// ConvertReader returns a Reader applying conv to the values read from base.
//
// When conv fails the values converted so far are returned with its error; a
// conv returning io.EOF therefore ends the stream early.
func ConvertReader[To, From any](base Reader[From], conv func(From) (To, error)) Reader[To] {
	return &convertReader[To, From]{base: base, conv: conv}
}

type convertReader[To, From any] struct {
	base Reader[From]
	conv func(From) (To, error)
	buf  []From
	err  error
}

func (r *convertReader[To, From]) Read(values []To) (int, error) {
	n := 0
	for n < len(values) && r.err == nil {
		if cap(r.buf) < len(values)-n {
			r.buf = make([]From, len(values)-n)
		}
		rn, err := r.base.Read(r.buf[:len(values)-n])
		for _, v := range r.buf[:rn] {
			to, cerr := r.conv(v)
			if cerr != nil {
				r.err = cerr
				return n, cerr
			}
			values[n] = to
			n++
		}
		r.err = err
	}
	if n == 0 || r.err == nil {
		return n, r.err
	}
	return n, nil
}
