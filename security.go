package cvault

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"runtime"

	"github.com/google/uuid"
)

// Zeroize overwrites the buffer with zero bytes. The KeepAlive call
// keeps the write from being treated as a dead store.
func Zeroize(buf []byte) error {
	if buf == nil {
		return ErrNilInput
	}

	for i := range buf {
		buf[i] = 0
	}

	runtime.KeepAlive(buf)

	return nil
}

// RandomBytes returns n bytes from the OS CSPRNG
func RandomBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	out := make([]byte, n)

	if _, err := io.ReadFull(rand.Reader, out); err != nil {
		return nil, fmt.Errorf("%w: csprng read: %v", ErrSyscall, err)
	}

	return out, nil
}

// ConstantTimeEqual reports whether a and b hold the same bytes.
// Runtime depends only on the length; differing lengths compare false.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateUUID returns a random RFC 4122 version 4 UUID string,
// 36 characters, built from 16 CSPRNG bytes
func GenerateUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("%w: uuid: %v", ErrSyscall, err)
	}

	return id.String(), nil
}

// charsetFor maps a CharsetFlag to its character set. Unknown flags
// fall back to the full set.
func charsetFor(flag CharsetFlag) string {
	switch flag {
	case CHARSET_ALPHANUM:
		return "abcdefghijklmnopqrstuvwxyz" +
			"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
			"0123456789"
	case CHARSET_ALPHA:
		return "abcdefghijklmnopqrstuvwxyz" +
			"ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	case CHARSET_UPPER:
		return "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	case CHARSET_LOWER:
		return "abcdefghijklmnopqrstuvwxyz"
	case CHARSET_DIGITS_SYMBOLS:
		return "0123456789" +
			"!@#$%^&*()-_=+"
	case CHARSET_SYMBOLS:
		return "!@#$%^&*()-_=+"
	case CHARSET_DIGITS:
		return "0123456789"
	default:
		return "abcdefghijklmnopqrstuvwxyz" +
			"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
			"0123456789" +
			"!@_#)$%=^+&*(-"
	}
}

// GeneratePassword returns a random password of the given length drawn
// from the selected character set. Rejection sampling keeps the byte
// distribution unbiased.
func GeneratePassword(length int, flag CharsetFlag) ([]byte, error) {
	if length <= 0 || length > PASSWORD_MAX_LENGTH {
		return nil, fmt.Errorf("%w: password length %d", ErrInvalidSize, length)
	}

	charset := charsetFor(flag)
	charsetSize := len(charset)

	// largest multiple of the charset size that fits in a byte
	maxValid := 256 - (256 % charsetSize)

	out := make([]byte, length)
	var b [1]byte

	for i := 0; i < length; {
		if _, err := rand.Read(b[:]); err != nil {
			return nil, fmt.Errorf("%w: csprng read: %v", ErrSyscall, err)
		}

		if int(b[0]) >= maxValid {
			continue
		}

		out[i] = charset[int(b[0])%charsetSize]
		i++
	}

	return out, nil
}
