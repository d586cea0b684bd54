package normalize

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/cdrflow/cdrflow/internal/common"
)

// decodeText decodes file bytes, trying UTF-8 first and falling back to
// Windows-1252 (the encoding legacy telco exports actually use). The
// fallback must round-trip; bytes no encoding explains fail the file
// with an EncodingError so the batch can continue without it.
func decodeText(data []byte, filename string) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", &common.EncodingError{Filename: filename, Err: err}
	}

	reencoded, err := charmap.Windows1252.NewEncoder().Bytes(decoded)
	if err != nil || !bytes.Equal(reencoded, data) {
		return "", &common.EncodingError{
			Filename: filename,
			Err:      errors.New("content round-trips under no supported encoding"),
		}
	}

	return string(decoded), nil
}
