package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

const addressHexLen = 40

// ParseAddress validates an Ethereum-style wallet address and returns its
// EIP-55 checksummed form. All-lowercase and all-uppercase inputs are
// accepted without checksum; mixed case must match the checksum.
func ParseAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != addressHexLen+2 || (s[:2] != "0x" && s[:2] != "0X") {
		return "", ErrInvalidAddress
	}
	body := s[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return "", ErrInvalidAddress
	}

	checksummed := checksum(strings.ToLower(body))
	lower, upper := strings.ToLower(body), strings.ToUpper(body)
	if body != lower && body != upper && "0x"+body != checksummed {
		return "", ErrInvalidAddress
	}
	return checksummed, nil
}

// SameAddress compares two addresses case-insensitively. Empty never matches.
func SameAddress(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}

// ShortAddress renders 0x1234...abcd for user-facing messages.
func ShortAddress(a string) string {
	if len(a) < 10 {
		return a
	}
	return a[:6] + "..." + a[len(a)-4:]
}

func checksum(lowerHex string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lowerHex))
	digest := h.Sum(nil)

	out := []byte(lowerHex)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 32
		}
	}
	return "0x" + string(out)
}
