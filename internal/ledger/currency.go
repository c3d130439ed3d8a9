// Package ledger canonicalizes ledger-native serializations: currency codes,
// classic addresses, polymorphic amounts, epoch timestamps, and transaction
// metadata.
package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

// Field widths in bytes for hex-encoded ledger string fields.
const (
	currencyFieldWidth       = 20
	credentialTypeFieldWidth = 128
)

// DecodeCurrency converts a ledger currency code to its human-readable form.
// Short codes pass through unchanged. A 40-hex-digit code is stripped of its
// trailing zero bytes and interpreted as ASCII text; if the remainder is
// malformed or contains a non-printable byte, the original string is returned
// unchanged rather than guessing.
func DecodeCurrency(raw string) string {
	decoded, err := decodeHexField(raw, currencyFieldWidth)
	if err != nil {
		return raw
	}
	return decoded
}

// EncodeCurrency converts a human currency code to its 40-hex-digit ledger
// form. It fails with ErrInvalidLength rather than truncating or padding
// invalid input.
func EncodeCurrency(human string) (string, error) {
	return encodeHexField(human, currencyFieldWidth)
}

// DecodeCredentialType decodes a hex credential-type field (128-byte width)
// using the same fallback rules as DecodeCurrency.
func DecodeCredentialType(raw string) string {
	decoded, err := decodeHexField(raw, credentialTypeFieldWidth)
	if err != nil {
		return raw
	}
	return decoded
}

// EncodeCredentialType encodes a human credential type into its fixed-width
// hex ledger form.
func EncodeCredentialType(human string) (string, error) {
	return encodeHexField(human, credentialTypeFieldWidth)
}

// ToLedgerCurrency renders a human code the way ledger queries expect it:
// standard three-character codes as-is, anything else hex-encoded to the
// currency field width.
func ToLedgerCurrency(human string) (string, error) {
	if human == domain.NativeCurrency {
		return human, nil
	}
	if len(human) == 3 {
		return human, nil
	}
	return EncodeCurrency(human)
}

func decodeHexField(raw string, width int) (string, error) {
	if len(raw) != width*2 || !isHex(raw) {
		return "", fmt.Errorf("not a %d-digit hex field", width*2)
	}

	// Strip trailing zero-byte pairs.
	trimmed := raw
	for strings.HasSuffix(trimmed, "00") {
		trimmed = trimmed[:len(trimmed)-2]
	}
	if len(trimmed) == 0 {
		return "", fmt.Errorf("all-zero hex field")
	}
	if len(trimmed)%2 != 0 {
		return "", fmt.Errorf("odd hex remainder")
	}

	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return "", err
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return "", fmt.Errorf("non-printable byte 0x%02x", c)
		}
	}
	return string(b), nil
}

func encodeHexField(human string, width int) (string, error) {
	b := []byte(human)
	if len(b) == 0 {
		return "", fmt.Errorf("empty value: %w", domain.ErrInvalidLength)
	}
	if len(b) > width {
		return "", fmt.Errorf("value %d bytes exceeds %d-byte field: %w", len(b), width, domain.ErrInvalidLength)
	}
	out := strings.ToUpper(hex.EncodeToString(b))
	return out + strings.Repeat("0", width*2-len(out)), nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
