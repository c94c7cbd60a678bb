package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/japaniel/lexiplan/pkg/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw file bytes to a string. UTF-8 (with or without BOM) and
// BOM-marked UTF-16 decode cleanly. Anything else is retried with the legacy
// encoding of the language (Shift_JIS or GB18030) and finally with invalid
// bytes replaced by U+FFFD; lossy is true in those cases.
func Decode(raw []byte, lang config.Language) (text string, lossy bool) {
	if bytes.HasPrefix(raw, utf8BOM) {
		raw = raw[len(utf8BOM):]
	}
	if bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) || bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, _, err := transform.Bytes(dec, raw); err == nil {
			return string(out), false
		}
	}
	if utf8.Valid(raw) {
		return string(raw), false
	}

	var legacy encoding.Encoding = japanese.ShiftJIS
	if lang == config.Chinese {
		legacy = simplifiedchinese.GB18030
	}
	if out, _, err := transform.Bytes(legacy.NewDecoder(), raw); err == nil && utf8.Valid(out) {
		return string(out), true
	}
	return strings.ToValidUTF8(string(raw), "\uFFFD"), true
}
