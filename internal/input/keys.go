package input

// KeyCode identifies a discrete key press.
type KeyCode int

const (
	KeyRune KeyCode = iota // Printable ASCII, see Key.Rune
	KeyEnter
	KeyTab
	KeyEscape
	KeyBackspace
	KeyInterrupt
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyOther
)

// Key is one press decoded from a frame's raw bytes.
type Key struct {
	Code KeyCode
	Rune rune
}

// Keys decodes raw bytes into presses in order. Unlike Input's held flags it
// reports every press exactly once, which text entry and menus need.
func Keys(p []byte) []Key {
	var out []Key
	for i := 0; i < len(p); i++ {
		b := p[i]
		switch {
		case b == '\x1b' && i+2 < len(p) && p[i+1] == '[':
			code := KeyOther
			switch p[i+2] {
			case 'A':
				code = KeyUp
			case 'B':
				code = KeyDown
			case 'C':
				code = KeyRight
			case 'D':
				code = KeyLeft
			}
			out = append(out, Key{Code: code})
			i += 2
		case b == '\x1b':
			out = append(out, Key{Code: KeyEscape})
		case b == '\r' || b == '\n':
			out = append(out, Key{Code: KeyEnter})
		case b == '\t':
			out = append(out, Key{Code: KeyTab})
		case b == '\b' || b == '\x7f':
			out = append(out, Key{Code: KeyBackspace})
		case b == '\x03':
			out = append(out, Key{Code: KeyInterrupt})
		case b >= 0x20 && b < 0x7f:
			out = append(out, Key{Code: KeyRune, Rune: rune(b)})
		default:
			out = append(out, Key{Code: KeyOther})
		}
	}
	return out
}
