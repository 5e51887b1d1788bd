// This file contains CommandDatabase, per spec.md §3 and the registration
// half of §4.1.

package command

import (
	"fmt"
	"strings"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/arcenc"
	"github.com/textpetgo/msgarc/arctrie"
)

// CommandDatabase is a game-specific registry of CommandDefinitions. It is
// immutable after construction (spec.md §3 "Ownership") and, being
// read-only, is safe to share across goroutines (spec.md §5).
type CommandDatabase struct {
	// Name identifies this database (typically the game's name).
	Name string

	// Encoding is the character encoding this database's string parameters
	// use (spec.md §6 character-encoding contract).
	Encoding arcenc.Encoding

	// TextBoxSplitSnippet optionally holds a *script.Script used by the
	// text-box-patcher collaborator (out of scope for this spec's core).
	// It is stored opaquely to avoid command <-> script import cycle; no
	// package in this module reads it, so a collaborator that does must
	// perform the type assertion itself.
	TextBoxSplitSnippet interface{}

	// Definitions holds every registered CommandDefinition, in registration
	// order. Per spec.md §9 design notes this single owned vector, plus the
	// index-based lookups below, replaces the source's cyclic
	// parent/alternatives pointer graph.
	Definitions []*CommandDefinition

	byBytes *arctrie.Trie[int] // value is an index into Definitions
	byName  map[string][]int   // lower-cased name -> indices into Definitions
}

// NewCommandDatabase creates an empty database.
func NewCommandDatabase(name string, enc arcenc.Encoding) *CommandDatabase {
	return &CommandDatabase{
		Name:     name,
		Encoding: enc,
		byBytes:  &arctrie.Trie[int]{},
		byName:   make(map[string][]int),
	}
}

// Add registers def. If another definition already registered under the
// exact same Base byte pattern exists, def is linked to it as an
// alternative (spec.md §4.1 collision rule) rather than overwriting the
// trie entry; the reader (package command, reader.go) tries alternatives in
// registration order when the first's element parsing fails.
func (db *CommandDatabase) Add(def *CommandDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	idx := len(db.Definitions)
	existing, ok := db.lookupExactBase(def.Base)
	db.Definitions = append(db.Definitions, def)

	if ok {
		db.Definitions[existing].alternatives = append(db.Definitions[existing].alternatives, idx)
	} else {
		db.byBytes.Add(def.Base, idx)
	}

	key := strings.ToLower(def.Name)
	db.byName[key] = append(db.byName[key], idx)
	return nil
}

// lookupExactBase reports whether a definition with the identical Base
// pattern (same MaskedByte values, not just common-bits-equal) is already
// registered, and if so its index.
func (db *CommandDatabase) lookupExactBase(base []arccore.MaskedByte) (int, bool) {
	for i, d := range db.Definitions {
		if len(d.Base) != len(base) {
			continue
		}
		same := true
		for j := range base {
			if d.Base[j] != base[j] {
				same = false
				break
			}
		}
		if same {
			return i, true
		}
	}
	return 0, false
}

// ByName returns every definition registered under name (case-insensitive).
func (db *CommandDatabase) ByName(name string) []*CommandDefinition {
	idxs := db.byName[strings.ToLower(name)]
	out := make([]*CommandDefinition, len(idxs))
	for i, idx := range idxs {
		out[i] = db.Definitions[idx]
	}
	return out
}

// Alternatives returns def's sibling definitions (identical Base pattern),
// in registration order, excluding def itself.
func (db *CommandDatabase) Alternatives(def *CommandDefinition) []*CommandDefinition {
	out := make([]*CommandDefinition, len(def.alternatives))
	for i, idx := range def.alternatives {
		out[i] = db.Definitions[idx]
	}
	return out
}

// Walker returns a fresh trie walker over this database's command bytes
// (spec.md §4.1).
func (db *CommandDatabase) Walker() *arctrie.PathWalker[int] {
	return db.byBytes.NewWalker()
}

// DefinitionAt resolves a trie value (an index) back to its definition.
func (db *CommandDatabase) DefinitionAt(idx int) *CommandDefinition {
	return db.Definitions[idx]
}

func (db *CommandDatabase) String() string {
	return fmt.Sprintf("CommandDatabase(%s, %d commands)", db.Name, len(db.Definitions))
}
