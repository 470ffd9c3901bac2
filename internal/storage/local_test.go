package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	st, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "/api/v1/files"})
	require.NoError(t, err)
	return st
}

func TestLocalStorage_SaveAndGet(t *testing.T) {
	st := newTestLocalStorage(t)
	ctx := context.Background()

	content := "receipt bytes"
	err := st.Save(ctx, "receipt/user1/abc.png", strings.NewReader(content), "image/png")
	require.NoError(t, err)

	reader, err := st.Get(ctx, "receipt/user1/abc.png")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	size, err := st.GetSize(ctx, "receipt/user1/abc.png")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
}

func TestLocalStorage_SaveOverwrites(t *testing.T) {
	st := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, "cv/user1/cv.pdf", strings.NewReader("old"), "application/pdf"))
	require.NoError(t, st.Save(ctx, "cv/user1/cv.pdf", strings.NewReader("new"), "application/pdf"))

	reader, err := st.Get(ctx, "cv/user1/cv.pdf")
	require.NoError(t, err)
	defer reader.Close()

	data, _ := io.ReadAll(reader)
	assert.Equal(t, "new", string(data))
}

// TestLocalStorage_TraversalConfined - путь с "../" не должен выводить
// запись за пределы каталога хранилища
func TestLocalStorage_TraversalConfined(t *testing.T) {
	base := t.TempDir()
	st, err := NewLocalStorage(Config{BasePath: base})
	require.NoError(t, err)
	ctx := context.Background()

	err = st.Save(ctx, "../escape.txt", strings.NewReader("outside"), "text/plain")
	require.NoError(t, err)

	// Файл лег внутрь base, а не рядом с ним
	_, statErr := os.Stat(filepath.Join(filepath.Dir(base), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr), "файл не должен оказаться вне хранилища")

	_, statErr = os.Stat(filepath.Join(base, "escape.txt"))
	assert.NoError(t, statErr)
}

func TestLocalStorage_ExistsAndDelete(t *testing.T) {
	st := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, "receipt/u/r.png", strings.NewReader("x"), "image/png"))

	exists, err := st.Exists(ctx, "receipt/u/r.png")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, st.Delete(ctx, "receipt/u/r.png"))

	exists, err = st.Exists(ctx, "receipt/u/r.png")
	require.NoError(t, err)
	assert.False(t, exists)

	// Повторное удаление не ошибка
	assert.NoError(t, st.Delete(ctx, "receipt/u/r.png"))
}

func TestLocalStorage_GetURL(t *testing.T) {
	st := newTestLocalStorage(t)

	url, err := st.GetURL(context.Background(), "receipt/u/r.png")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/receipt/u/r.png", url)
}
