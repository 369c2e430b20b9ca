package collection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"mtgcollections/internal/fsutil"
	"mtgcollections/internal/logging"
	"mtgcollections/internal/types"
)

// timestampLayout matches an ISO 8601 UTC instant with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// Timestamp renders t for use in output file names: UTC ISO 8601 with
// colons and dots replaced by dashes, e.g. 2024-05-01T13-45-09-123Z.
func Timestamp(t time.Time) string {
	return timestampReplacer.Replace(t.UTC().Format(timestampLayout))
}

// DumpFileName returns the name of the full JSON dump for a timestamp.
func DumpFileName(ts string) string {
	return "cards_" + ts + ".json"
}

// SummaryFileName returns the name of a language summary for a timestamp.
func SummaryFileName(lang types.Language, ts string) string {
	return fmt.Sprintf("cards_%s_%s.txt", lang, ts)
}

// SummaryFile is one written per-language summary.
type SummaryFile struct {
	Language types.Language
	Path     string
	Distinct int // distinct names
	Total    int // observations
}

// Artifacts lists every file written by one export.
type Artifacts struct {
	Dump      string
	Summaries []SummaryFile // in types.Languages() order
}

// Paths returns every artifact path, dump first.
func (a Artifacts) Paths() []string {
	paths := []string{a.Dump}
	for _, s := range a.Summaries {
		paths = append(paths, s.Path)
	}
	return paths
}

// Exporter writes a finished collection to a directory.
type Exporter struct {
	Dir    string
	Now    func() time.Time // defaults to time.Now
	Logger *zap.Logger
}

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string, logger *zap.Logger) *Exporter {
	return &Exporter{Dir: dir, Now: time.Now, Logger: logger}
}

// Export writes the full dump and one summary per supported language.
// All files share a timestamp taken once, at the start of the export.
func (e *Exporter) Export(c types.Collection) (Artifacts, error) {
	if err := validate(c); err != nil {
		return Artifacts{}, err
	}

	now := e.Now
	if now == nil {
		now = time.Now
	}
	ts := Timestamp(now())
	log := logging.For(e.Logger, logging.CategoryExport)

	dump, err := MarshalDump(c)
	if err != nil {
		return Artifacts{}, err
	}
	dumpPath := filepath.Join(e.Dir, DumpFileName(ts))
	if err := fsutil.WriteFileAtomic(dumpPath, dump, 0o644); err != nil {
		return Artifacts{}, fmt.Errorf("failed to write dump: %w", err)
	}
	log.Debug("Dump written", zap.String("path", dumpPath), zap.Int("cards", c.Len()))

	art := Artifacts{Dump: dumpPath}
	buckets := Aggregate(c)
	for _, lang := range types.Languages() {
		b := buckets[lang]
		path := filepath.Join(e.Dir, SummaryFileName(lang, ts))
		if err := fsutil.WriteFileAtomic(path, []byte(strings.Join(b.Lines(), "\n")), 0o644); err != nil {
			return Artifacts{}, fmt.Errorf("failed to write %s summary: %w", lang, err)
		}
		art.Summaries = append(art.Summaries, SummaryFile{
			Language: lang,
			Path:     path,
			Distinct: len(b),
			Total:    b.Total(),
		})
		log.Debug("Summary written", zap.String("language", string(lang)), zap.String("path", path), zap.Int("distinct", len(b)))
	}

	return art, nil
}

// MarshalDump serializes c exactly, indented two spaces, with an empty
// collection rendered as an empty array.
func MarshalDump(c types.Collection) ([]byte, error) {
	if c.Cards == nil {
		c = types.NewCollection()
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal collection: %w", err)
	}
	return b, nil
}

// ReadDump loads a collection previously written by Export.
func ReadDump(path string) (types.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Collection{}, fmt.Errorf("failed to read dump: %w", err)
	}
	var c types.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return types.Collection{}, fmt.Errorf("failed to parse dump %s: %w", path, err)
	}
	if c.Cards == nil {
		c = types.NewCollection()
	}
	if err := validate(c); err != nil {
		return types.Collection{}, fmt.Errorf("dump %s: %w", path, err)
	}
	return c, nil
}

// validate checks every card against the supported language set so that
// no observation can fall outside the per-language summaries.
func validate(c types.Collection) error {
	for i, card := range c.Cards {
		if strings.TrimSpace(card.Name) == "" {
			return fmt.Errorf("card %d has an empty name", i)
		}
		if !card.Language.Valid() {
			return fmt.Errorf("card %d (%q) has unsupported language %q", i, card.Name, card.Language)
		}
	}
	return nil
}
