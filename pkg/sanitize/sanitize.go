package sanitize

import "strings"

// Markers that end a file name when it reaches the filesystem. The encoded
// form survives one round of URL decoding when the client sent "%2500".
var nullBytes = []string{"%00", "\x00"}

// CutOffPoisonNullByte truncates value at the first null byte marker, either
// the literal "%00" or a raw NUL. Values without a marker come back unchanged.
func CutOffPoisonNullByte(value string) string {
	cut := -1
	for _, marker := range nullBytes {
		if idx := strings.Index(value, marker); idx != -1 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}

	if cut == -1 {
		return value
	}

	return value[:cut]
}
