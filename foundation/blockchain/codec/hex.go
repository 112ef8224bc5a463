package codec

import (
	"errors"
	"fmt"
)

// ErrInvalidHexLength is returned when decoding input with an odd number
// of characters.
var ErrInvalidHexLength = errors.New("hex input length must be even")

// ErrInvalidHexChar is returned when decoding input containing a character
// outside of 0-9, a-f, A-F.
var ErrInvalidHexChar = errors.New("invalid hex character")

const hexDigits = "0123456789abcdef"

// EncodeHex converts the specified bytes into lowercase hex text. The output
// is always twice the length of the input.
func EncodeHex(src []byte) string {
	dst := make([]byte, len(src)*2)
	for i, b := range src {
		dst[i*2] = hexDigits[b>>4]
		dst[i*2+1] = hexDigits[b&0x0f]
	}
	return string(dst)
}

// DecodeHex converts hex text back into the bytes it represents. Both cases
// are accepted on decode.
func DecodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("decode %d characters: %w", len(s), ErrInvalidHexLength)
	}

	dst := make([]byte, len(s)/2)
	for i := 0; i < len(dst); i++ {
		hi, ok := fromHexChar(s[i*2])
		if !ok {
			return nil, fmt.Errorf("decode character %q: %w", s[i*2], ErrInvalidHexChar)
		}
		lo, ok := fromHexChar(s[i*2+1])
		if !ok {
			return nil, fmt.Errorf("decode character %q: %w", s[i*2+1], ErrInvalidHexChar)
		}
		dst[i] = hi<<4 | lo
	}

	return dst, nil
}

// fromHexChar converts a single hex digit to its value.
func fromHexChar(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}

	return 0, false
}
