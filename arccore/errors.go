// This file contains the sentinel error kinds shared by the core packages.
//
// These mirror spec.md §7's error kinds. Callers use errors.Is against the
// sentinels and errors.As / fmt.Errorf("%w", ...) wrapping to add context,
// exactly as repparser.go uses ErrNotReplayFile / ErrParsing.

package arccore

import "errors"

var (
	// ErrNoMatch indicates the trie found no command definition for the
	// current stream position. It is local/recoverable: callers may fall
	// back to a text run or a raw byte element.
	ErrNoMatch = errors.New("arccore: no matching command")

	// ErrMalformed indicates structurally invalid input: a bad script
	// offset, a negative length, a base-byte mismatch, pointer
	// desynchronization in strict mode, or an oversized size header.
	ErrMalformed = errors.New("arccore: malformed input")

	// ErrOutOfRange indicates a parameter value, archive offset or count
	// fell outside its allowed range.
	ErrOutOfRange = errors.New("arccore: value out of range")

	// ErrEncoding indicates a string could not be encoded, or a strict
	// decode produced a non-zero fallback count.
	ErrEncoding = errors.New("arccore: encoding failure")

	// ErrUnknownLabel indicates a Label-typed offset referenced a label
	// that was never recorded.
	ErrUnknownLabel = errors.New("arccore: unknown label")

	// ErrIO wraps unexpected I/O failures (including unexpected EOF) that
	// are not NoMatch (i.e. they happened mid-element rather than at a
	// clean command boundary).
	ErrIO = errors.New("arccore: i/o failure")
)
