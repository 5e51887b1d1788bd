// This file contains CommandElementDefinition, per spec.md §3.

package command

// CommandElementDefinition is either a single parameter, or a
// length-parameter plus an ordered list of repeated data-parameter
// definitions (a "multi-entry" element, spec.md §3/§4.4).
type CommandElementDefinition struct {
	// Single is the lone parameter definition for a non-multi element.
	// Nil iff this is a multi-entry element.
	Single *ParameterDefinition

	// Length is the length-parameter definition for a multi-entry element
	// (its value is the number of data entries, N). Nil iff Single != nil.
	Length *ParameterDefinition

	// DataParams are the ordered data-parameter definitions repeated once
	// per entry for a multi-entry element.
	DataParams []*ParameterDefinition
}

// HasMultipleDataEntries reports whether this element repeats a group of
// data parameters N times (case (b) in spec.md §3), as opposed to holding a
// single scalar/string parameter (case (a)).
func (e *CommandElementDefinition) HasMultipleDataEntries() bool {
	return e.Length != nil
}

// Name is the length parameter's name for a multi-entry element, otherwise
// the single parameter's name.
func (e *CommandElementDefinition) Name() string {
	if e.HasMultipleDataEntries() {
		return e.Length.Name
	}
	return e.Single.Name
}

// DataGroups partitions DataParams according to Length.DataGroupSizes. If
// DataGroupSizes is empty, all data parameters form a single group.
func (e *CommandElementDefinition) DataGroups() [][]*ParameterDefinition {
	if !e.HasMultipleDataEntries() {
		return nil
	}
	sizes := e.Length.DataGroupSizes
	if len(sizes) == 0 {
		return [][]*ParameterDefinition{e.DataParams}
	}
	groups := make([][]*ParameterDefinition, 0, len(sizes))
	i := 0
	for _, sz := range sizes {
		end := i + int(sz)
		if end > len(e.DataParams) {
			end = len(e.DataParams)
		}
		groups = append(groups, e.DataParams[i:end])
		i = end
	}
	return groups
}

// NewSingleElement builds a non-multi CommandElementDefinition.
func NewSingleElement(p *ParameterDefinition) *CommandElementDefinition {
	return &CommandElementDefinition{Single: p}
}

// NewMultiElement builds a multi-entry CommandElementDefinition.
func NewMultiElement(length *ParameterDefinition, dataParams ...*ParameterDefinition) *CommandElementDefinition {
	return &CommandElementDefinition{Length: length, DataParams: dataParams}
}
