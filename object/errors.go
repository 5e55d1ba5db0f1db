package object

import "errors"

var (
	// ErrMalformedInput is returned when unmarshal or Load encounters a
	// byte stream that doesn't decode to a well-formed record graph
	// (short header, truncated payload, odd-length dict arity, a
	// composite whose id never resolves).
	ErrMalformedInput = errors.New("object: malformed input")

	// ErrUnsupportedValue is returned for a composite tag this codec
	// doesn't know, or a tuple id too large for the 3 supported wire
	// width classes.
	ErrUnsupportedValue = errors.New("object: unsupported value")
)
