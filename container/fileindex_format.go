// This file implements the file-index text format, spec.md §6
// "File-index text format".

package container

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// entryPattern matches one file-index line:
//
//	<hex-offset>:[&][%]<hex-size>=<hex-ptr>,<hex-ptr>,...
//
// Whitespace between tokens is not permitted, per spec.md §6.
var entryPattern = regexp.MustCompile(
	`^(0[xX][0-9A-Fa-f]+|[0-9A-Fa-f]+):([&%]*)(0[xX][0-9A-Fa-f]+|[0-9A-Fa-f]+)(?:=(.*))?$`,
)

// Parse reads a FileIndex from its text representation, per spec.md §6.
// Comments ("//", ";", "#" to end of line; "/* ... */" possibly spanning
// several lines) are stripped before line parsing.
func Parse(text string) (*FileIndex, error) {
	fi := NewFileIndex()
	stripped := stripComments(text)

	for lineNo, line := range strings.Split(stripped, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w at line %d: %q", ErrInvalidFileIndexLine, lineNo+1, line)
		}

		offset, err := parseHex32(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w at line %d: bad offset: %v", ErrInvalidFileIndexLine, lineNo+1, err)
		}
		size, err := parseHex32(m[3])
		if err != nil {
			return nil, fmt.Errorf("%w at line %d: bad size: %v", ErrInvalidFileIndexLine, lineNo+1, err)
		}

		flags := m[2]
		e := NewFileIndexEntry(offset, size, strings.Contains(flags, "&"), strings.Contains(flags, "%"))

		if ptrList := m[4]; ptrList != "" {
			for _, tok := range strings.Split(ptrList, ",") {
				if tok == "" {
					continue
				}
				p, err := parseHex32(tok)
				if err != nil {
					return nil, fmt.Errorf("%w at line %d: bad pointer %q: %v", ErrInvalidFileIndexLine, lineNo+1, tok, err)
				}
				e.AddPointer(p)
			}
		}

		fi.Add(e)
	}

	return fi, nil
}

func parseHex32(tok string) (uint32, error) {
	tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
	v, err := strconv.ParseUint(tok, 16, 32)
	return uint32(v), err
}

// stripComments removes "//"/";"/"#"-to-end-of-line comments and
// (possibly multi-line) "/* ... */" block comments, leaving newlines in
// place so line numbers in error messages stay accurate.
func stripComments(text string) string {
	var sb strings.Builder
	inBlock := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inBlock {
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				inBlock = false
				i++
				continue
			}
			if c == '\n' {
				sb.WriteByte('\n')
			}
			continue
		}

		if c == '/' && i+1 < len(text) && text[i+1] == '*' {
			inBlock = true
			i++
			continue
		}
		if c == '/' && i+1 < len(text) && text[i+1] == '/' {
			i = skipToEOL(text, i)
			continue
		}
		if c == ';' || c == '#' {
			i = skipToEOL(text, i)
			continue
		}

		sb.WriteByte(c)
	}

	return sb.String()
}

// skipToEOL returns the index of the last byte before the next newline (or
// end of string), so the caller's loop increment lands on the newline
// itself (preserving it) or past the end.
func skipToEOL(text string, i int) int {
	for i < len(text) && text[i] != '\n' {
		i++
	}
	return i - 1
}

// Serialize renders fi in the file-index text format, one entry per line in
// ascending offset order. Parse(Serialize(fi)) reproduces fi exactly
// (spec.md §8 property 6 "File-index idempotency"); Serialize's own output
// is not guaranteed to match any particular hand-written input text
// byte-for-byte (whitespace/comment placement is not preserved).
func Serialize(fi *FileIndex) string {
	var sb strings.Builder
	for _, e := range fi.Entries() {
		fmt.Fprintf(&sb, "%X:", e.Offset)
		if e.Compressed {
			sb.WriteByte('&')
		}
		if e.SizeHeader {
			sb.WriteByte('%')
		}
		fmt.Fprintf(&sb, "%X=", e.Size)
		for i, p := range e.SortedPointers() {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%X", p)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
