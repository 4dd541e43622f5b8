package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ErrDisallowedExtension is returned when an upload's extension is not an image type we accept
var ErrDisallowedExtension = errors.New("unsupported file type")

// allowedExtensions is the upload allow-list, compared lowercase
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

// stampLayout prefixes every stored name (YYYYmmddHHMMSS)
const stampLayout = "20060102150405"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Uploader persists an uploaded file and returns the reference stored on the record
type Uploader interface {
	Save(ctx context.Context, storedName, contentType string, r io.Reader) (string, error)
	// Remove deletes a file by the reference Save returned. References the store did
	// not issue are ignored.
	Remove(ctx context.Context, ref string) error
}

// Allowed reports whether the extension of a sanitized filename is on the allow-list
func Allowed(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(name[i+1:])]
}

// SanitizeFilename reduces a client filename to a safe ASCII name: compatibility
// decomposition, non-ASCII dropped, path separators and whitespace runs become
// underscores, anything outside [A-Za-z0-9_.-] removed, leading/trailing dots and
// underscores trimmed. The result may be empty.
func SanitizeFilename(name string) string {
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	ascii := strings.NewReplacer("/", " ", "\\", " ").Replace(b.String())
	joined := strings.Join(strings.Fields(ascii), "_")
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
}

// StoredName sanitizes the client filename, checks the allow-list and prefixes the
// upload timestamp. It returns ErrDisallowedExtension when the file must be rejected.
func StoredName(original string, at time.Time) (string, error) {
	name := SanitizeFilename(original)
	if !Allowed(name) {
		return "", ErrDisallowedExtension
	}
	return at.Format(stampLayout) + "_" + name, nil
}
