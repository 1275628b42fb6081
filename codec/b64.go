package codec

import "github.com/cvsouth/kericore/kerierr"

const b64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// IntToB64 renders n as a fixed-width, big-endian, base64url digit string of
// length width (the alphabet used by CESR soft/count/index fields).
func IntToB64(n uint64, width int) string {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = b64Chars[n&0x3f]
		n >>= 6
	}
	return string(out)
}

// B64ToInt parses a base64url digit string (CESR soft/count/index alphabet)
// into an integer.
func B64ToInt(s string) (uint64, error) {
	var result uint64
	for i := 0; i < len(s); i++ {
		b := s[i]
		var val uint64
		switch {
		case b >= 'A' && b <= 'Z':
			val = uint64(b - 'A')
		case b >= 'a' && b <= 'z':
			val = uint64(b-'a') + 26
		case b >= '0' && b <= '9':
			val = uint64(b-'0') + 52
		case b == '-':
			val = 62
		case b == '_':
			val = 63
		default:
			return 0, kerierr.ErrInvalidCesr
		}
		result = (result << 6) | val
	}
	return result, nil
}
