package slug

import (
	"path/filepath"
	"strings"
)

// MaxFilenameLen caps published filenames, extension included.
const MaxFilenameLen = 100

// Make derives a lowercase hyphen-separated slug from a display name.
// Runs of non-alphanumeric characters collapse to a single hyphen.
// Idempotent: Make(Make(s)) == Make(s).
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	return b.String()
}

// Filename builds a publish-safe filename from a display name and an
// optional section prefix, preserving the extension of the original file.
func Filename(section, name, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))

	stem := Make(name)
	if section != "" {
		if prefix := Make(section); prefix != "" {
			stem = prefix + "-" + stem
		}
	}
	if stem == "" {
		stem = Make(strings.TrimSuffix(originalFilename, ext))
	}

	if len(stem)+len(ext) > MaxFilenameLen {
		stem = strings.TrimRight(stem[:MaxFilenameLen-len(ext)], "-")
	}

	return stem + ext
}

// Stem strips the extension and returns the slug of what remains.
func Stem(filename string) string {
	return Make(strings.TrimSuffix(filename, filepath.Ext(filename)))
}
