package tempstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WritesContent(t *testing.T) {
	s := New(t.TempDir(), 0)

	f, err := s.Store(context.Background(), strings.NewReader("audio bytes"), "lecture.mp3")
	require.NoError(t, err)

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "audio bytes", string(data))
	assert.Equal(t, "lecture.mp3", filepath.Base(f.Path))
	assert.Equal(t, int64(len("audio bytes")), f.Size)
	assert.Equal(t, s.Root(), filepath.Dir(f.Dir))
}

func TestStore_UniqueDirectoriesUnderConcurrency(t *testing.T) {
	s := New(t.TempDir(), 0)

	const n = 20
	var wg sync.WaitGroup
	paths := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := s.Store(context.Background(), strings.NewReader("x"), "same.wav")
			errs[i] = err
			if f != nil {
				paths[i] = f.Path
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[paths[i]], "duplicate path %s", paths[i])
		seen[paths[i]] = true
	}
}

func TestStore_SizeLimit(t *testing.T) {
	root := t.TempDir()
	s := New(root, 4)

	_, err := s.Store(context.Background(), bytes.NewReader([]byte("12345")), "big.bin")
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed writes must not leave scratch directories")

	f, err := s.Store(context.Background(), bytes.NewReader([]byte("1234")), "ok.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.Size)
}

func TestStore_CancelledContext(t *testing.T) {
	s := New(t.TempDir(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Store(ctx, strings.NewReader("x"), "a.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFile_Remove(t *testing.T) {
	s := New(t.TempDir(), 0)
	f, err := s.Store(context.Background(), strings.NewReader("x"), "a.txt")
	require.NoError(t, err)

	require.NoError(t, f.Remove())
	_, err = os.Stat(f.Dir)
	assert.True(t, os.IsNotExist(err))

	var nilFile *File
	assert.NoError(t, nilFile.Remove())
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"lecture.mp3", "lecture.mp3"},
		{"../../etc/passwd", "passwd.bin"},
		{"C:\\Users\\me\\notes.PDF", "notes.pdf"},
		{"my lecture (final).m4a", "my_lecture_final.m4a"},
		{"", "upload.bin"},
		{"..", "upload.bin"},
		{".hidden", "upload.hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}
