// Package dbfile implements a JSON serialization of command.CommandDatabase,
// the format cmd/msgarc's -db flag reads. The textual "TextPet Language"
// database surface syntax is out of scope for this spec's core (spec.md
// §1); this is a minimal, ambient-stack-consistent stand-in that lets the
// CLI and tests build a database from a file instead of Go source, using
// encoding/json the way cmd/screp's output side already does.
package dbfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/arcenc"
	"github.com/textpetgo/msgarc/command"
)

// File is the on-disk shape of a command database.
type File struct {
	Name     string      `json:"name"`
	Encoding string      `json:"encoding"` // currently only "ascii" is built in
	Commands []*cmdDefJS `json:"commands"`
}

type maskedByteJS string // "VV" or "VV/MM" hex

type cmdDefJS struct {
	Name                 string       `json:"name"`
	Description          string       `json:"description,omitempty"`
	Base                 []maskedByteJS `json:"base"`
	EndType              string       `json:"endType,omitempty"` // "default" (zero value) | "always" | "never"
	Prints               bool         `json:"prints,omitempty"`
	MugshotParameterName string       `json:"mugshotParameterName,omitempty"`
	HidesMugshot         bool         `json:"hidesMugshot,omitempty"`
	PriorityLength       uint         `json:"priorityLength,omitempty"`
	Rewind               uint         `json:"rewind,omitempty"`
	LookAhead            bool         `json:"lookAhead,omitempty"`
	Elements             []*elementJS `json:"elements,omitempty"`
}

type elementJS struct {
	Single         *paramJS   `json:"single,omitempty"`
	Length         *paramJS   `json:"length,omitempty"`
	DataParams     []*paramJS `json:"dataParams,omitempty"`
	DataGroupSizes []uint32   `json:"dataGroupSizes,omitempty"`
}

type paramJS struct {
	Name               string       `json:"name"`
	Description        string       `json:"description,omitempty"`
	Offset             int          `json:"offset"`
	Shift              uint         `json:"shift,omitempty"`
	Bits               uint         `json:"bits"`
	Add                int64        `json:"add,omitempty"`
	IsJump             bool         `json:"isJump,omitempty"`
	OffsetType         string       `json:"offsetType,omitempty"` // "start" (zero value) | "end" | "label"
	RelativeLabel      string       `json:"relativeLabel,omitempty"`
	ValueEncodingName  string       `json:"valueEncodingName,omitempty"`
	JumpContinueValues []int64      `json:"jumpContinueValues,omitempty"`
	StringDef          *stringDefJS `json:"stringDef,omitempty"`
}

type stringDefJS struct {
	Offset      int    `json:"offset"`
	Unit        string `json:"unit,omitempty"` // "char" (zero value) | "byte"
	FixedLength uint32 `json:"fixedLength,omitempty"`
}

// Load reads and builds a command.CommandDatabase from a JSON file at path.
func Load(path string) (*command.CommandDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dbfile: reading %s: %w", path, err)
	}
	return Decode(data)
}

// Decode builds a command.CommandDatabase from JSON bytes.
func Decode(data []byte) (*command.CommandDatabase, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: dbfile: %v", arccore.ErrMalformed, err)
	}

	enc, err := resolveEncoding(f.Encoding)
	if err != nil {
		return nil, err
	}

	db := command.NewCommandDatabase(f.Name, enc)
	for _, c := range f.Commands {
		def, err := toCommandDef(c)
		if err != nil {
			return nil, fmt.Errorf("dbfile: command %q: %w", c.Name, err)
		}
		if err := db.Add(def); err != nil {
			return nil, fmt.Errorf("dbfile: registering command %q: %w", c.Name, err)
		}
	}
	return db, nil
}

func resolveEncoding(name string) (arcenc.Encoding, error) {
	switch name {
	case "", "ascii":
		return arcenc.ASCII, nil
	default:
		return nil, fmt.Errorf("%w: dbfile: unknown encoding %q (built-in loader only supports \"ascii\"; wire a custom encoding in Go for anything else)", arccore.ErrMalformed, name)
	}
}

func toCommandDef(c *cmdDefJS) (*command.CommandDefinition, error) {
	base := make([]arccore.MaskedByte, len(c.Base))
	for i, mb := range c.Base {
		parsed, err := parseMaskedByte(mb)
		if err != nil {
			return nil, err
		}
		base[i] = parsed
	}

	endType, err := parseEndType(c.EndType)
	if err != nil {
		return nil, err
	}

	elements := make([]*command.CommandElementDefinition, len(c.Elements))
	for i, e := range c.Elements {
		el, err := toElementDef(e)
		if err != nil {
			return nil, err
		}
		elements[i] = el
	}

	return &command.CommandDefinition{
		Name:                 c.Name,
		Description:          c.Description,
		Base:                 base,
		EndType:              endType,
		Prints:               c.Prints,
		MugshotParameterName: c.MugshotParameterName,
		HidesMugshot:         c.HidesMugshot,
		PriorityLength:       c.PriorityLength,
		Rewind:               c.Rewind,
		LookAhead:            c.LookAhead,
		Elements:             elements,
	}, nil
}

func toElementDef(e *elementJS) (*command.CommandElementDefinition, error) {
	if e.Length != nil {
		length, err := toParamDef(e.Length)
		if err != nil {
			return nil, err
		}
		length.DataGroupSizes = e.DataGroupSizes
		dataParams := make([]*command.ParameterDefinition, len(e.DataParams))
		for i, p := range e.DataParams {
			pd, err := toParamDef(p)
			if err != nil {
				return nil, err
			}
			dataParams[i] = pd
		}
		return command.NewMultiElement(length, dataParams...), nil
	}
	single, err := toParamDef(e.Single)
	if err != nil {
		return nil, err
	}
	return command.NewSingleElement(single), nil
}

func toParamDef(p *paramJS) (*command.ParameterDefinition, error) {
	offType, err := parseOffsetType(p.OffsetType)
	if err != nil {
		return nil, err
	}
	var sdef *command.StringSubDefinition
	if p.StringDef != nil {
		unit, err := parseStringUnit(p.StringDef.Unit)
		if err != nil {
			return nil, err
		}
		sdef = &command.StringSubDefinition{
			Offset:      p.StringDef.Offset,
			Unit:        unit,
			FixedLength: p.StringDef.FixedLength,
		}
	}
	var jumpSet map[int64]struct{}
	if len(p.JumpContinueValues) > 0 {
		jumpSet = make(map[int64]struct{}, len(p.JumpContinueValues))
		for _, v := range p.JumpContinueValues {
			jumpSet[v] = struct{}{}
		}
	}
	return &command.ParameterDefinition{
		Name:               p.Name,
		Description:        p.Description,
		Offset:             p.Offset,
		Shift:              p.Shift,
		Bits:               p.Bits,
		Add:                p.Add,
		IsJump:             p.IsJump,
		OffsetType:         offType,
		RelativeLabel:      p.RelativeLabel,
		ValueEncodingName:  p.ValueEncodingName,
		JumpContinueValues: jumpSet,
		StringDef:          sdef,
	}, nil
}

func parseMaskedByte(s maskedByteJS) (arccore.MaskedByte, error) {
	var v, m uint64
	n, err := fmt.Sscanf(string(s), "%02x/%02x", &v, &m)
	if err == nil && n == 2 {
		return arccore.MaskedByte{Value: byte(v), Mask: byte(m)}, nil
	}
	n, err = fmt.Sscanf(string(s), "%02x", &v)
	if err != nil || n != 1 {
		return arccore.MaskedByte{}, fmt.Errorf("%w: dbfile: invalid masked byte %q", arccore.ErrMalformed, s)
	}
	return arccore.Full(byte(v)), nil
}

func parseEndType(s string) (command.EndType, error) {
	switch s {
	case "", "default":
		return command.EndDefault, nil
	case "always":
		return command.EndAlways, nil
	case "never":
		return command.EndNever, nil
	default:
		return 0, fmt.Errorf("%w: dbfile: unknown endType %q", arccore.ErrMalformed, s)
	}
}

func parseOffsetType(s string) (command.OffsetType, error) {
	switch s {
	case "", "start":
		return command.OffsetStart, nil
	case "end":
		return command.OffsetEnd, nil
	case "label":
		return command.OffsetLabel, nil
	default:
		return 0, fmt.Errorf("%w: dbfile: unknown offsetType %q", arccore.ErrMalformed, s)
	}
}

func parseStringUnit(s string) (command.StringUnit, error) {
	switch s {
	case "", "char":
		return command.StringUnitChar, nil
	case "byte":
		return command.StringUnitByte, nil
	default:
		return 0, fmt.Errorf("%w: dbfile: unknown string unit %q", arccore.ErrMalformed, s)
	}
}
