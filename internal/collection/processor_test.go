package collection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mtgcollections/internal/types"
)

// fakeExtractor answers by file content: each photo fixture holds a key.
type fakeExtractor struct {
	replies map[string][]types.Card
	fail    map[string]error
	calls   []string
	mimes   []string
}

func (f *fakeExtractor) ExtractCards(ctx context.Context, image []byte, mimeType string) (types.Collection, error) {
	key := string(image)
	f.calls = append(f.calls, key)
	f.mimes = append(f.mimes, mimeType)
	if err, ok := f.fail[key]; ok {
		return types.Collection{}, err
	}
	c := types.NewCollection()
	c.Append(f.replies[key]...)
	return c, nil
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

var (
	bolt   = types.Card{Name: "Lightning Bolt", Language: types.LangEN}
	island = types.Card{Name: "Island", Language: types.LangEN}
	ilha   = types.Card{Name: "Ilha", Language: types.LangPT}
)

func TestProcessDirectory_NonImagesOnly(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"notes.txt": "a", "cards.json": "b", "photo.gif": "c"})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))

	ext := &fakeExtractor{}
	got, err := NewProcessor(ext, zap.NewNop(), NopObserver{}).ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 0, got.Len())
	assert.NotNil(t, got.Cards)
	assert.Empty(t, ext.calls, "no extraction calls for non-image files")
}

func TestProcessDirectory_SkipsFailedFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.jpg":  "A",
		"b.JPEG": "B",
		"c.png":  "C",
	})

	ext := &fakeExtractor{
		replies: map[string][]types.Card{
			"A": {bolt, island},
			"C": {ilha, bolt},
		},
		fail: map[string]error{
			"B": &types.MalformedResponseError{Service: types.ServiceVision, Detail: "not json"},
		},
	}

	core, logs := observer.New(zapcore.InfoLevel)
	got, err := NewProcessor(ext, zap.New(core), nil).ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)

	want := []types.Card{bolt, island, ilha, bolt}
	if diff := cmp.Diff(want, got.Cards); diff != "" {
		t.Fatalf("collection mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"A", "B", "C"}, ext.calls)
	assert.Equal(t, []string{"image/jpeg", "image/jpeg", "image/png"}, ext.mimes)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.True(t, strings.HasSuffix(warns[0].ContextMap()["file"].(string), "b.JPEG"))
}

func TestProcessDirectory_AllFail(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.jpg": "A", "b.jpg": "B"})

	ext := &fakeExtractor{fail: map[string]error{
		"A": &types.UpstreamError{Service: types.ServiceVision, Err: errors.New("quota")},
		"B": errors.New("anything else"),
	}}
	got, err := NewProcessor(ext, zap.NewNop(), NopObserver{}).ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Len(t, ext.calls, 2)
}

func TestProcessDirectory_MissingDirectoryIsFatal(t *testing.T) {
	_, err := NewProcessor(&fakeExtractor{}, zap.NewNop(), NopObserver{}).
		ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestProcessDirectory_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.jpg": "A"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ext := &fakeExtractor{}
	_, err := NewProcessor(ext, zap.NewNop(), NopObserver{}).ProcessDirectory(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ext.calls)
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) OnStart(total int) {
	r.events = append(r.events, "start")
}
func (r *recordingObserver) OnFile(index, total int, path string) {
	r.events = append(r.events, filepath.Base(path))
}
func (r *recordingObserver) OnFileFailed(index, total int, path string, err error) {
	r.events = append(r.events, "failed:"+filepath.Base(path))
}
func (r *recordingObserver) OnDone(c types.Collection, failed int) {
	r.events = append(r.events, "done")
}

func TestProcessDirectory_ObserverEvents(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"1.jpg": "A", "2.jpg": "B"})

	obs := &recordingObserver{}
	ext := &fakeExtractor{fail: map[string]error{"B": errors.New("boom")}}
	_, err := NewProcessor(ext, zap.NewNop(), obs).ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "1.jpg", "2.jpg", "failed:2.jpg", "done"}, obs.events)
}

// Two JPEGs, the first yields one card and the second fails: the dump holds
// the one card, the en summary lists it and the pt summary is empty.
func TestProcessAndExport_TwoFileScenario(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, map[string]string{"first.jpg": "first", "second.jpg": "second"})

	ext := &fakeExtractor{
		replies: map[string][]types.Card{"first": {bolt}},
		fail:    map[string]error{"second": &types.UpstreamError{Service: types.ServiceVision, Err: errors.New("500")}},
	}
	got, err := NewProcessor(ext, zap.NewNop(), NopObserver{}).ProcessDirectory(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, []types.Card{bolt}, got.Cards)

	exp := &Exporter{Dir: out, Now: func() time.Time { return time.Date(2024, 5, 1, 13, 45, 9, 123e6, time.UTC) }}
	art, err := exp.Export(got)
	require.NoError(t, err)

	en, err := os.ReadFile(filepath.Join(out, "cards_en_2024-05-01T13-45-09-123Z.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1x Lightning Bolt", string(en))

	pt, err := os.ReadFile(filepath.Join(out, "cards_pt_2024-05-01T13-45-09-123Z.txt"))
	require.NoError(t, err)
	assert.Empty(t, pt)

	back, err := ReadDump(art.Dump)
	require.NoError(t, err)
	assert.Equal(t, got, back)
}
