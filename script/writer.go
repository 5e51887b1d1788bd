// This file implements the script writer, the encode-side mirror of §4.6.

package script

import (
	"fmt"

	"github.com/textpetgo/msgarc/command"
)

// Write encodes every element of s in order: commands via cw, text via the
// database's encoding (failing on any fallback, since re-encoding must be
// exact), and raw ByteElements verbatim. DirectiveElements contribute no
// bytes: they are metadata for the TextPet-Language surface syntax
// collaborator (out of scope for this spec's core, spec.md §1) and are not
// part of the binary format.
func Write(s *Script, cw *command.CommandWriter) ([]byte, error) {
	var out []byte
	for _, el := range s.Elements {
		switch v := el.(type) {
		case *command.Command:
			b, err := cw.Write(v)
			if err != nil {
				return nil, fmt.Errorf("script writer: %w", err)
			}
			out = append(out, b...)
		case ByteElement:
			out = append(out, v.Value)
		case TextElement:
			b, fallbacks := cw.DB.Encoding.GetBytes(v.Text)
			if fallbacks != 0 {
				return nil, fmt.Errorf("script writer: text run %q has %d unencodable character(s)", v.Text, fallbacks)
			}
			out = append(out, b...)
		case DirectiveElement:
			// No binary representation; see doc comment above.
		default:
			return nil, fmt.Errorf("script writer: unknown element type %T", el)
		}
	}
	return out, nil
}
