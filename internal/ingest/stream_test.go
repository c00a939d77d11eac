package ingest

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCSVMissingFile(t *testing.T) {
	_, err := OpenCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVStreamShortRowsPadded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	data := "id,title,genres\n1,First,Action\n2,Second\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := OpenCSV(path)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, Record{"id": "1", "title": "First", "genres": "Action"}, rec)

	rec, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "", rec["genres"], "missing trailing field reads as empty")

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestMemoryStreamReplay(t *testing.T) {
	s := NewMemoryStream([]Record{{"id": "1"}, {"id": "2"}})

	first, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", first["id"])

	_, err = s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)

	s.Rewind()
	again, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}
