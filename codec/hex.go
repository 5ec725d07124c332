package codec

import (
	"encoding/hex"
	"strings"
)

// Hex renders raw bytes as lowercase hex text. Decode accepts an optional
// 0x prefix and ignores whitespace, so dumps can be pasted as-is.
type Hex struct{}

func (Hex) Encode(b []byte) ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(out, b)
	return out, nil
}

func (Hex) Decode(b []byte) ([]byte, error) {
	s := strings.Join(strings.Fields(string(b)), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}
