package arcenc

// ASCII is the dependency-free reference Encoding: one byte per code point,
// 7-bit clean, anything outside that range falls back to '?'. It exists so
// tests and a default, charset-file-less command database can exercise the
// string sub-codec (command package) without pulling in golang.org/x/text.
var ASCII Encoding = asciiEncoding{}

type asciiEncoding struct{}

func (asciiEncoding) MaxBytesPerChar() int  { return 1 }
func (asciiEncoding) MaxCharsPerBytes() int { return 1 }

func (asciiEncoding) TryReadCodePoint(buf []byte) (chars, bytesUsed int, ok bool) {
	if len(buf) == 0 {
		return 0, 0, false
	}
	if buf[0] >= 0x80 {
		return 0, 0, false
	}
	return 1, 1, true
}

// DecodeFull decodes every byte of b as ASCII, replacing non-ASCII bytes
// with '?' and counting them as fallbacks.
func (asciiEncoding) DecodeFull(b []byte) (s string, fallbacks int) {
	sb := make([]byte, len(b))
	for i, c := range b {
		if c >= 0x80 {
			sb[i] = '?'
			fallbacks++
			continue
		}
		sb[i] = c
	}
	return string(sb), fallbacks
}

func (asciiEncoding) GetBytes(s string) (b []byte, fallbacks int) {
	b = make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0x7f {
			b = append(b, '?')
			fallbacks++
			continue
		}
		b = append(b, byte(r))
	}
	return b, fallbacks
}
