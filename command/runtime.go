// This file contains the runtime (decoded) counterparts of the static
// definitions: Parameter, CommandElement and Command, per spec.md §3.

package command

// Parameter is a decoded parameter value: either a 64-bit signed number or
// a string, according to its definition.
type Parameter struct {
	Def *ParameterDefinition

	number int64
	text   string
}

// NewNumberParam builds a numeric Parameter. Panics if def is a string
// parameter, since the runtime type is fixed by the definition (spec.md §3
// Parameter invariant).
func NewNumberParam(def *ParameterDefinition, v int64) Parameter {
	if def.IsString() {
		panic("command: NewNumberParam called on a string parameter definition: " + def.Name)
	}
	return Parameter{Def: def, number: v}
}

// NewStringParam builds a string Parameter.
func NewStringParam(def *ParameterDefinition, v string) Parameter {
	if !def.IsString() {
		panic("command: NewStringParam called on a non-string parameter definition: " + def.Name)
	}
	return Parameter{Def: def, text: v}
}

// Number returns this parameter's numeric value. Only valid if !IsString().
func (p Parameter) Number() int64 { return p.number }

// String returns this parameter's string value. Only valid if IsString().
func (p Parameter) String() string { return p.text }

// IsString reports whether this parameter holds a string.
func (p Parameter) IsString() bool { return p.Def.IsString() }

// DataEntry is one repetition of a multi-entry element's data parameters,
// keyed by parameter name.
type DataEntry map[string]Parameter

// CommandElement is the runtime counterpart of a CommandElementDefinition:
// its definition plus the data entries actually read/to be written.
// Non-multi elements always have exactly one entry.
type CommandElement struct {
	Def     *CommandElementDefinition
	Entries []DataEntry
}

// Command is a fully decoded (or to-be-encoded) command instance.
type Command struct {
	Def      *CommandDefinition
	Elements map[string]*CommandElement
}

// NewCommand creates an empty Command for def.
func NewCommand(def *CommandDefinition) *Command {
	return &Command{Def: def, Elements: make(map[string]*CommandElement)}
}

// EndsScript reports whether this command terminates its containing
// script, per spec.md §3 Command.EndsScript:
//
//	Always  => true
//	Never   => false
//	Default => true iff at least one jump parameter exists and every jump
//	           parameter's current value is NOT in its JumpContinueValues.
func (c *Command) EndsScript() bool {
	switch c.Def.EndType {
	case EndAlways:
		return true
	case EndNever:
		return false
	}

	sawJump := false
	for _, el := range c.Def.Elements {
		params := el.jumpParams()
		for _, def := range params {
			sawJump = true
			ce := c.Elements[el.Name()]
			if ce == nil {
				continue
			}
			for _, entry := range ce.Entries {
				if p, ok := entry[def.Name]; ok && def.ContinuesOnJump(p.Number()) {
					return false
				}
			}
		}
	}
	return sawJump
}

// jumpParams returns the parameter definitions within this element that are
// marked IsJump.
func (e *CommandElementDefinition) jumpParams() []*ParameterDefinition {
	var out []*ParameterDefinition
	if e.HasMultipleDataEntries() {
		if e.Length.IsJump {
			out = append(out, e.Length)
		}
		for _, p := range e.DataParams {
			if p.IsJump {
				out = append(out, p)
			}
		}
		return out
	}
	if e.Single.IsJump {
		out = append(out, e.Single)
	}
	return out
}
