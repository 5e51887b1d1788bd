// Package archive implements the text archive data model and reader/writer,
// spec.md §3 "TextArchive" and §4.7, component C8.
package archive

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/textpetgo/msgarc/script"
)

// TextArchive is an ordered collection of Scripts (spec.md §3).
type TextArchive struct {
	// Identifier is non-empty and whitespace-free; defaults to a random
	// 128-bit hex string if not supplied.
	Identifier string

	Scripts []*script.Script
}

// New creates a TextArchive with n empty scripts under databaseName. If
// identifier is "", a random 128-bit hex identifier is generated.
func New(identifier string, n int, databaseName string) *TextArchive {
	if identifier == "" {
		identifier = randomIdentifier()
	}
	a := &TextArchive{Identifier: identifier}
	a.Resize(n, databaseName)
	return a
}

func randomIdentifier() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// Resize pads a with empty scripts (under databaseName) or truncates it so
// len(a.Scripts) == n.
func (a *TextArchive) Resize(n int, databaseName string) {
	if n < 0 {
		n = 0
	}
	if len(a.Scripts) >= n {
		a.Scripts = a.Scripts[:n]
		return
	}
	for len(a.Scripts) < n {
		a.Scripts = append(a.Scripts, script.New(databaseName))
	}
}

// Trim drops trailing empty scripts, stopping once len(a.Scripts) == min or
// a non-empty trailing script is found.
func (a *TextArchive) Trim(min int) {
	for len(a.Scripts) > min && a.Scripts[len(a.Scripts)-1].Empty() {
		a.Scripts = a.Scripts[:len(a.Scripts)-1]
	}
}

// ValidIdentifier reports whether id satisfies spec.md §3's TextArchive
// identifier invariant: non-empty and whitespace-free.
func ValidIdentifier(id string) bool {
	return id != "" && !strings.ContainsAny(id, " \t\r\n")
}
