package css

// A small parser-combinator toolkit over the token slice. A Parser either
// consumes a prefix of its input and reports ok, or reports !ok and the
// caller keeps its own input untouched.

type Parser[T any] func(in []tok) (T, []tok, bool)

// token matches a single token of the given kind and yields its value.
func token(kind tokenKind) Parser[string] {
	return func(in []tok) (string, []tok, bool) {
		if len(in) == 0 || in[0].kind != kind {
			return "", in, false
		}
		return in[0].value, in[1:], true
	}
}

// char matches a single delimiter character.
func char(c string) Parser[string] {
	return func(in []tok) (string, []tok, bool) {
		if len(in) == 0 || !in[0].is(kindChar, c) {
			return "", in, false
		}
		return c, in[1:], true
	}
}

// skipSpace drops leading whitespace and comments, then runs p.
func skipSpace[T any](p Parser[T]) Parser[T] {
	return func(in []tok) (T, []tok, bool) {
		return p(trimSpace(in))
	}
}

func trimSpace(in []tok) []tok {
	for len(in) > 0 && (in[0].kind == kindSpace || in[0].kind == kindComment) {
		in = in[1:]
	}
	return in
}

// alt tries each parser in turn and returns the first success.
func alt[T any](ps ...Parser[T]) Parser[T] {
	return func(in []tok) (T, []tok, bool) {
		for _, p := range ps {
			if v, rest, ok := p(in); ok {
				return v, rest, true
			}
		}
		var zero T
		return zero, in, false
	}
}

// seq runs every parser in order; all must succeed.
func seq[T any](ps ...Parser[T]) Parser[[]T] {
	return func(in []tok) ([]T, []tok, bool) {
		out := make([]T, 0, len(ps))
		rest := in
		for _, p := range ps {
			v, r, ok := p(rest)
			if !ok {
				return nil, in, false
			}
			out = append(out, v)
			rest = r
		}
		return out, rest, true
	}
}

// many applies p zero or more times.
func many[T any](p Parser[T]) Parser[[]T] {
	return func(in []tok) ([]T, []tok, bool) {
		var out []T
		for {
			v, rest, ok := p(in)
			if !ok || len(rest) == len(in) {
				return out, in, true
			}
			out = append(out, v)
			in = rest
		}
	}
}

// optional always succeeds, yielding the zero value when p does not match.
func optional[T any](p Parser[T]) Parser[T] {
	return func(in []tok) (T, []tok, bool) {
		if v, rest, ok := p(in); ok {
			return v, rest, true
		}
		var zero T
		return zero, in, true
	}
}

// sepBy matches one or more p separated by sep.
func sepBy[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(in []tok) ([]T, []tok, bool) {
		first, rest, ok := p(in)
		if !ok {
			return nil, in, false
		}
		out := []T{first}
		for {
			_, afterSep, ok := sep(rest)
			if !ok {
				return out, rest, true
			}
			v, afterItem, ok := p(afterSep)
			if !ok {
				// a dangling separator fails the whole list
				return nil, in, false
			}
			out = append(out, v)
			rest = afterItem
		}
	}
}

// mapP transforms the result of p.
func mapP[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(in []tok) (B, []tok, bool) {
		v, rest, ok := p(in)
		if !ok {
			var zero B
			return zero, in, false
		}
		return f(v), rest, true
	}
}

// left runs a then b and keeps a's result.
func left[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return func(in []tok) (A, []tok, bool) {
		va, rest, ok := a(in)
		if !ok {
			return va, in, false
		}
		if _, rest, ok = b(rest); !ok {
			var zero A
			return zero, in, false
		}
		return va, rest, true
	}
}

// right runs a then b and keeps b's result.
func right[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return func(in []tok) (B, []tok, bool) {
		_, rest, ok := a(in)
		if !ok {
			var zero B
			return zero, in, false
		}
		vb, rest, ok := b(rest)
		if !ok {
			var zero B
			return zero, in, false
		}
		return vb, rest, true
	}
}

// eof succeeds only on an input with nothing left but whitespace.
func eof(in []tok) (struct{}, []tok, bool) {
	rest := trimSpace(in)
	return struct{}{}, rest, len(rest) == 0
}
