package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Algorithm represents a supported digest algorithm.
type Algorithm int

const (
	// BLAKE3 is the default algorithm for catalog digests.
	BLAKE3 Algorithm = iota
	// XXH64 is fast and non-cryptographic; used for file checksums.
	XXH64
	// SHA256 is provided for interoperability with external tooling.
	SHA256
	// UndefinedAlgorithm is used for error handling.
	UndefinedAlgorithm
)

func (a Algorithm) String() string {
	switch a {
	case BLAKE3:
		return "BLAKE3"
	case XXH64:
		return "XXH64"
	case SHA256:
		return "SHA256"
	default:
		return "Undefined"
	}
}

// ParseAlgorithm returns the algorithm with the given name, ignoring case
func ParseAlgorithm(name string) (Algorithm, error) {
	for a := BLAKE3; a < UndefinedAlgorithm; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, nil
		}
	}
	return UndefinedAlgorithm, fmt.Errorf("unsupported hash algorithm: %q", name)
}

// Options configures the hashing behavior.
type Options struct {
	// Algorithm to use for hashing.
	Algorithm Algorithm
	// BufferSize is the size of the buffer used for reading files.
	BufferSize int
}

// DefaultOptions returns the default hashing options.
func DefaultOptions() Options {
	return Options{
		Algorithm:  BLAKE3,
		BufferSize: 1024 * 1024,
	}
}

// Result represents the result of a hashing operation.
type Result struct {
	// Hash is the hex-encoded hash string.
	Hash string
	// Error is any error that occurred during hashing.
	Error error
	// Algorithm is the algorithm used for hashing.
	Algorithm Algorithm
	// Size is the size of the hashed data in bytes.
	Size int64
}

func newHasher(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case BLAKE3:
		return blake3.New(), nil
	case XXH64:
		return xxhash.New(), nil
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
}

// File computes the hash of a file using the specified algorithm.
func File(path string, opts Options) Result {
	if opts.Algorithm == UndefinedAlgorithm {
		return Result{Algorithm: opts.Algorithm, Error: fmt.Errorf("undefined hashing algorithm")}
	}

	file, err := os.Open(path)
	if err != nil {
		return Result{Algorithm: opts.Algorithm, Error: fmt.Errorf("failed to open file '%s': %w", path, err)}
	}
	defer file.Close()

	hasher, err := newHasher(opts.Algorithm)
	if err != nil {
		return Result{Algorithm: opts.Algorithm, Error: err}
	}

	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultOptions().BufferSize
	}

	size, err := io.CopyBuffer(hasher, file, make([]byte, bufferSize))
	if err != nil {
		return Result{Algorithm: opts.Algorithm, Error: fmt.Errorf("failed to read file '%s': %w", path, err)}
	}

	return Result{
		Hash:      hex.EncodeToString(hasher.Sum(nil)),
		Algorithm: opts.Algorithm,
		Size:      size,
	}
}

// Bytes computes the hash of a byte slice.
func Bytes(data []byte, algorithm Algorithm) Result {
	if algorithm == UndefinedAlgorithm {
		return Result{Algorithm: algorithm, Error: fmt.Errorf("undefined hashing algorithm")}
	}

	hasher, err := newHasher(algorithm)
	if err != nil {
		return Result{Algorithm: algorithm, Error: err}
	}

	if _, err := hasher.Write(data); err != nil {
		return Result{Algorithm: algorithm, Error: fmt.Errorf("failed to hash data: %w", err)}
	}

	return Result{
		Hash:      hex.EncodeToString(hasher.Sum(nil)),
		Algorithm: algorithm,
		Size:      int64(len(data)),
	}
}

// Equal compares two hex digests, ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Verify checks whether data matches the expected digest.
func Verify(data []byte, expected string, algorithm Algorithm) (bool, error) {
	result := Bytes(data, algorithm)
	if result.Error != nil {
		return false, result.Error
	}
	return Equal(result.Hash, expected), nil
}
