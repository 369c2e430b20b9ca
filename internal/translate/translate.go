// Package translate turns card names, typed by hand or listed in a text
// file, into their canonical English names via the lookup client.
package translate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"mtgcollections/internal/fsutil"
	"mtgcollections/internal/logging"
	"mtgcollections/internal/lookup"
)

// Lookuper resolves one name. *lookup.Client satisfies it.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (lookup.Result, error)
}

// linePattern splits an optional "<n>x" quantity prefix from the name.
var linePattern = regexp.MustCompile(`^(\d+x\s*)?(.+)$`)

// ParseLine splits a list line into its quantity prefix and card name.
// ok is false for blank lines.
func ParseLine(line string) (prefix, name string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", "", false
	}
	m := linePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// OutputPath returns where TranslateFile writes the translation of path.
func OutputPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_en" + ext
}

// Translator runs lookups in order and remembers their answers.
type Translator struct {
	lookup Lookuper
	logger *zap.Logger
	memo   map[string]lookup.Result
}

// New creates a translator on top of l.
func New(l Lookuper, logger *zap.Logger) *Translator {
	return &Translator{
		lookup: l,
		logger: logging.For(logger, logging.CategoryTranslate),
		memo:   make(map[string]lookup.Result),
	}
}

// Resolve returns the lookup result for name, asking upstream at most once
// per distinct name.
func (t *Translator) Resolve(ctx context.Context, name string) (lookup.Result, error) {
	if r, ok := t.memo[name]; ok {
		t.logger.Debug("Lookup cache hit", zap.String("name", name))
		return r, nil
	}
	r, err := t.lookup.Lookup(ctx, name)
	if err != nil {
		return lookup.Result{}, err
	}
	t.memo[name] = r
	return r, nil
}

// TranslateNames looks every name up in order and hands each result to fn.
// A miss is passed on like any other result. Any error stops the run.
func (t *Translator) TranslateNames(ctx context.Context, names []string, fn func(lookup.Result)) error {
	for _, name := range names {
		r, err := t.Resolve(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to translate %q: %w", name, err)
		}
		if !r.Found {
			t.logger.Warn("Card not found", zap.String("name", name))
		}
		fn(r)
	}
	return nil
}

// TranslateFile rewrites a card list with English names, keeping quantity
// prefixes and blank lines, and returns the path of the written file.
// Names with no match are kept as written. Nothing is written unless every
// line was handled.
func (t *Translator) TranslateFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(data)
	trailingNewline := strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")

	var lines []string
	if text != "" || !trailingNewline {
		lines = strings.Split(text, "\n")
	}
	out := make([]string, 0, len(lines))
	missing := 0

	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")
		prefix, name, ok := ParseLine(body)
		if !ok {
			out = append(out, line)
			continue
		}

		r, err := t.Resolve(ctx, name)
		if err != nil {
			return "", fmt.Errorf("line %d: failed to translate %q: %w", i+1, name, err)
		}
		if !r.Found {
			missing++
			t.logger.Warn("Card not found, keeping original name",
				zap.Int("line", i+1),
				zap.String("name", name),
			)
			out = append(out, line)
			continue
		}

		translated := prefix + r.Name
		if cr {
			translated += "\r"
		}
		out = append(out, translated)
	}

	result := strings.Join(out, "\n")
	if trailingNewline {
		result += "\n"
	}

	dest := OutputPath(path)
	if err := fsutil.WriteFileAtomic(dest, []byte(result), 0o644); err != nil {
		return "", fmt.Errorf("failed to write translation: %w", err)
	}
	t.logger.Info("Translation written",
		zap.String("path", dest),
		zap.Int("lines", len(lines)),
		zap.Int("not_found", missing),
	)
	return dest, nil
}
