// package shared defines shared helpers
package shared

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] that appends to the file at path, creating parent directories as needed.
//
// Used while the TUI owns the terminal.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(f), nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// GenerateState returns a random URL-safe token for the OAuth state parameter.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// FormatDuration renders milliseconds as "X min Y sec".
func FormatDuration(ms int) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d min %d sec", seconds/60, seconds%60)
}

var genreAcronyms = map[string]string{
	"Edm": "EDM",
	"Dnb": "DnB",
	"Uk":  "UK",
	"Pov": "POV",
	"Mbp": "MBP",
	"Atl": "ATL",
	"Nyc": "NYC",
}

// CapitalizeGenre title-cases a catalog genre and restores known acronyms.
//
//	"uk garage" -> "UK Garage", "edm" -> "EDM"
func CapitalizeGenre(genre string) string {
	words := strings.Fields(genre)
	for i, w := range words {
		words[i] = titleWord(w)
		if acronym, ok := genreAcronyms[words[i]]; ok {
			words[i] = acronym
		}
	}
	return strings.Join(words, " ")
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
// Hyphenated parts are treated as separate words.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		parts := strings.Split(w, "-")
		for j, p := range parts {
			parts[j] = titleWord(p)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeName lower-cases and collapses whitespace, used for case-insensitive name comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(name, " ")))
}
