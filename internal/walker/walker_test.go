package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/savefmt/internal/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"start.save":               "start",
		"notes.txt":                "not a save",
		"campaign/turn1.save":      "turn1",
		"campaign/turn2.SAVE":      "turn2",
		"campaign/old/turn0.save":  "turn0",
		"backup/start.save":        "copy",
		"campaign/old/deep/x.save": "deep",
	}
	for rel, data := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	}
	return root
}

func paths(entries []FileEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestWalk(t *testing.T) {
	t.Parallel()
	root := tree(t)

	tests := []struct {
		name    string
		options func(o *WalkOptions)
		want    []string
	}{
		{
			name:    "Defaults",
			options: func(o *WalkOptions) {},
			want: []string{
				"backup/start.save",
				"campaign/old/deep/x.save",
				"campaign/old/turn0.save",
				"campaign/turn1.save",
				"campaign/turn2.SAVE",
				"start.save",
			},
		},
		{
			name:    "MaxDepth",
			options: func(o *WalkOptions) { o.MaxDepth = 2 },
			want:    []string{"backup/start.save", "campaign/turn1.save", "campaign/turn2.SAVE", "start.save"},
		},
		{
			name:    "Exclude",
			options: func(o *WalkOptions) { o.ExcludePatterns = []string{"old", "backup/*"} },
			want:    []string{"campaign/turn1.save", "campaign/turn2.SAVE", "start.save"},
		},
		{
			name:    "AllFiles",
			options: func(o *WalkOptions) { o.Extensions = nil; o.MaxDepth = 1 },
			want:    []string{"notes.txt", "start.save"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultWalkOptions()
			tt.options(&opts)
			entries, err := Walk(context.Background(), root, opts)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, paths(entries))
		})
	}
}

func TestWalkEntries(t *testing.T) {
	t.Parallel()
	root := tree(t)

	opts := DefaultWalkOptions()
	opts.MaxDepth = 1
	entries, err := Walk(context.Background(), root, opts)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "start", e.Name())
	assert.Equal(t, int64(5), e.Size)
	assert.False(t, e.ModTime.IsZero())
	assert.Equal(t, hash.Bytes([]byte("start"), hash.BLAKE3).Hash, e.Hash)
	assert.NoError(t, e.Error)

	opts.ComputeHashes = false
	entries, err = Walk(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Empty(t, entries[0].Hash)
}

func TestWalkErrors(t *testing.T) {
	t.Parallel()
	root := tree(t)

	_, err := Walk(context.Background(), filepath.Join(root, "missing"), DefaultWalkOptions())
	assert.Error(t, err)

	_, err = Walk(context.Background(), filepath.Join(root, "start.save"), DefaultWalkOptions())
	assert.ErrorContains(t, err, "not a directory")

	stop := errors.New("stop")
	calls := 0
	err = WalkWithCallback(context.Background(), root, DefaultWalkOptions(), func(FileEntry) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Walk(ctx, root, DefaultWalkOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
