// This file contains CommandDefinition, per spec.md §3.

package command

import (
	"fmt"
	"strings"

	"github.com/textpetgo/msgarc/arccore"
)

// EndType controls whether a command unconditionally ends its script,
// never does, or depends on its jump parameters (spec.md §3 Command.EndsScript).
type EndType int

const (
	// EndDefault ends the script iff every jump parameter's current value
	// is outside its JumpContinueValues set (and at least one jump
	// parameter exists).
	EndDefault EndType = iota
	// EndAlways always ends the script.
	EndAlways
	// EndNever never ends the script.
	EndNever
)

// CommandDefinition describes one command's binary layout.
type CommandDefinition struct {
	// Name identifies the command. Must be non-empty after trimming.
	Name string

	// Description is free-form documentation text.
	Description string

	// Base is the fixed leading byte pattern identifying this command (at
	// least one byte).
	Base []arccore.MaskedByte

	// EndType controls script-ending semantics.
	EndType EndType

	// Prints indicates the command renders text to the player (used by
	// collaborators outside this spec's core, kept for data-model fidelity).
	Prints bool

	// MugshotParameterName names a non-repeating data parameter holding a
	// mugshot/portrait id, if any.
	MugshotParameterName string

	// HidesMugshot indicates this command hides the current mugshot. Per
	// spec.md §9 design notes, the source sets this in two mutually
	// exclusive branches that both leave MugshotParameterName empty; a
	// reader must check HidesMugshot separately from
	// MugshotParameterName=="" to distinguish "hides" from "no effect".
	HidesMugshot bool

	// PriorityLength is the matched depth at which this definition is
	// chosen even if the trie could keep walking (spec.md §4.1). 0 means no
	// priority.
	PriorityLength uint

	// Rewind is the number of bytes to subtract from the stream position
	// after reading/writing this command (spec.md GLOSSARY "Rewind").
	Rewind uint

	// LookAhead marks this definition as usable only to disambiguate other
	// matches; by itself it never becomes the reader's chosen terminal
	// candidate (spec.md §4.1).
	LookAhead bool

	// Elements are this command's parameters/data-groups, in encoded order.
	Elements []*CommandElementDefinition

	// alternatives holds indices, into the owning CommandDatabase's
	// Definitions slice, of later-registered definitions whose Base is the
	// identical byte pattern, whatever their Name (spec.md §4.1 collision
	// rule). Per
	// spec.md §9 design notes this is index-based rather than a back
	// pointer, to avoid a cyclic owner graph; set by CommandDatabase.Add.
	alternatives []int
}

// Validate checks the invariants spec.md §3 requires of a CommandDefinition.
func (d *CommandDefinition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: command name must be non-empty", arccore.ErrMalformed)
	}
	if len(d.Base) == 0 {
		return fmt.Errorf("%w: command %q must have at least one base byte", arccore.ErrMalformed, d.Name)
	}
	if d.MugshotParameterName != "" {
		found := false
		for _, el := range d.Elements {
			if el.HasMultipleDataEntries() {
				continue
			}
			if el.Single.Name == d.MugshotParameterName && !el.Single.IsString() {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: command %q names mugshot parameter %q that does not exist as a non-repeating data parameter",
				arccore.ErrMalformed, d.Name, d.MugshotParameterName)
		}
	}
	return nil
}

// Clone returns an independent deep copy of d, as spec.md §3 "Ownership"
// requires when a caller clones a definition rather than sharing it.
func (d *CommandDefinition) Clone() *CommandDefinition {
	c := *d
	c.Base = append([]arccore.MaskedByte(nil), d.Base...)
	c.Elements = make([]*CommandElementDefinition, len(d.Elements))
	for i, el := range d.Elements {
		ec := *el
		c.Elements[i] = &ec
	}
	c.alternatives = append([]int(nil), d.alternatives...)
	return &c
}
