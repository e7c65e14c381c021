package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutosaveName(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 10, 17, 9, 5, 3, 0, time.UTC)
	name := AutosaveName("auto-game", ts)
	assert.Equal(t, "auto-game-20261017-090503", name)

	prefix, got, err := ParseAutosaveName(name + SaveFileExt)
	require.NoError(t, err)
	assert.Equal(t, "auto-game", prefix)
	assert.True(t, ts.Equal(got))

	for _, bad := range []string{"game", "auto-2026-1017", "auto_20261017-090503", "auto-20261317-090503"} {
		_, _, err := ParseAutosaveName(bad)
		assert.Error(t, err, bad)
	}
}

func TestApplyRotationPolicy(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 17, 18, 0, 0, 0, time.UTC)
	var saves []SaveInfo
	// three autosaves today, one per day for the five days before
	for i := 0; i < 3; i++ {
		ts := now.Add(-time.Duration(i) * time.Hour)
		saves = append(saves, SaveInfo{Name: AutosaveName("auto", ts), Timestamp: ts})
	}
	for d := 1; d <= 5; d++ {
		ts := now.Add(-time.Duration(d) * 24 * time.Hour)
		saves = append(saves, SaveInfo{Name: AutosaveName("auto", ts), Timestamp: ts})
	}

	tests := []struct {
		name       string
		policy     RotationPolicy
		wantDelete int
	}{
		{name: "Keep all", policy: RotationPolicy{}, wantDelete: 0},
		{name: "Newest two", policy: RotationPolicy{MaxAutosaves: 2}, wantDelete: 6},
		{name: "Newest two plus three days", policy: RotationPolicy{MaxAutosaves: 2, KeepDaily: 3}, wantDelete: 4},
		{name: "Max age", policy: RotationPolicy{MaxAge: 72 * time.Hour}, wantDelete: 2},
		{name: "Max age wins over daily", policy: RotationPolicy{MaxAutosaves: 1, KeepDaily: 10, MaxAge: 36 * time.Hour}, wantDelete: 6},
		{name: "Default", policy: DefaultRotationPolicy(), wantDelete: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := append([]SaveInfo(nil), saves...)
			got := ApplyRotationPolicy(input, tt.policy, now)
			assert.Len(t, got, tt.wantDelete)
			assert.Equal(t, saves, input, "input must not be reordered")
		})
	}

	assert.Nil(t, ApplyRotationPolicy(nil, RotationPolicy{MaxAutosaves: 1}, now))

	// deletions are the oldest saves, newest first
	got := ApplyRotationPolicy(saves, RotationPolicy{MaxAutosaves: 6}, now)
	assert.Equal(t, []string{saves[6].Name, saves[7].Name}, got)
}
