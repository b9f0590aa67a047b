// Package hex wraps the parts of encoding/hex in use with shorter names.
package hex

import "encoding/hex"

func Enc(b []byte) string { return hex.EncodeToString(b) }

func Dec(s string) ([]byte, error) { return hex.DecodeString(s) }
