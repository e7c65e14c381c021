package hash

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testString     = "This is a test string."
	expectedBlake3 = "bb029e052c87d2e6353f1dceb1f3511744e9a1cf643b240091ede3787e985a57"
	expectedSHA256 = "3eec256a587cccf72f71d2342b6dfab0bbca01697c7e7014540bdd62b72120da"
)

func TestBytes(t *testing.T) {
	t.Parallel()

	data := []byte(testString)
	expectedXXH64 := fmt.Sprintf("%016x", xxhash.Sum64(data))

	tests := []struct {
		name      string
		data      []byte
		algorithm Algorithm
		want      Result
		wantErr   bool
	}{
		{
			name:      "BLAKE3",
			data:      data,
			algorithm: BLAKE3,
			want:      Result{Hash: expectedBlake3, Algorithm: BLAKE3, Size: int64(len(data))},
		},
		{
			name:      "XXH64",
			data:      data,
			algorithm: XXH64,
			want:      Result{Hash: expectedXXH64, Algorithm: XXH64, Size: int64(len(data))},
		},
		{
			name:      "SHA256",
			data:      data,
			algorithm: SHA256,
			want:      Result{Hash: expectedSHA256, Algorithm: SHA256, Size: int64(len(data))},
		},
		{
			name:      "Empty data",
			data:      []byte{},
			algorithm: BLAKE3,
			want:      Result{Hash: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", Algorithm: BLAKE3},
		},
		{
			name:      "Empty data XXH64",
			data:      nil,
			algorithm: XXH64,
			want:      Result{Hash: "ef46db3751d8e999", Algorithm: XXH64},
		},
		{
			name:      "Invalid algorithm",
			data:      data,
			algorithm: UndefinedAlgorithm,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Bytes(tt.data, tt.algorithm)
			if tt.wantErr {
				require.Error(t, got.Error)
				return
			}
			require.NoError(t, got.Error)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.sav")
	require.NoError(t, os.WriteFile(path, []byte(testString), 0o644))

	got := File(path, DefaultOptions())
	require.NoError(t, got.Error)
	assert.Equal(t, expectedBlake3, got.Hash)
	assert.Equal(t, int64(len(testString)), got.Size)

	got = File(path, Options{Algorithm: SHA256, BufferSize: 3})
	require.NoError(t, got.Error)
	assert.Equal(t, expectedSHA256, got.Hash)

	got = File(filepath.Join(t.TempDir(), "missing.sav"), DefaultOptions())
	assert.Error(t, got.Error)

	got = File(path, Options{Algorithm: UndefinedAlgorithm})
	assert.Error(t, got.Error)
}

func TestVerifyAndEqual(t *testing.T) {
	t.Parallel()

	ok, err := Verify([]byte(testString), expectedSHA256, SHA256)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify([]byte("other"), expectedSHA256, SHA256)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Verify(nil, "", UndefinedAlgorithm)
	assert.Error(t, err)

	assert.True(t, Equal("ABCDEF", "abcdef"))
	assert.False(t, Equal("abc", "abd"))
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	for a := BLAKE3; a < UndefinedAlgorithm; a++ {
		got, err := ParseAlgorithm(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	got, err := ParseAlgorithm("xxh64")
	require.NoError(t, err)
	assert.Equal(t, XXH64, got)

	_, err = ParseAlgorithm("md5")
	assert.Error(t, err)
	assert.Equal(t, "Undefined", UndefinedAlgorithm.String())
}
