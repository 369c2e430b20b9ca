package collection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImage(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPG", "b.jpeg", "b.JpEg", "c.png", "c.PNG", "dir/x.jpg"} {
		assert.True(t, IsImage(name), name)
	}
	for _, name := range []string{"a.gif", "a.webp", "jpg", "a.jpg.txt", "", ".png.bak"} {
		assert.False(t, IsImage(name), name)
	}
	assert.Equal(t, []string{".jpg", ".jpeg", ".png"}, ImageExtensions())
}

func TestListImages_ListingOrderAndFilter(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.png", "a.JPG", "readme.md", "b.jpeg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "album.png"), 0o755))

	files, err := ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.jpeg"),
		filepath.Join(dir, "c.png"),
	}, files)
}
