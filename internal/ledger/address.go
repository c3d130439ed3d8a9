package ledger

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// addressAlphabet is the ledger's base58 dictionary. It differs from the
// Bitcoin alphabet: 'r' leads so that account addresses start with "r".
var addressAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

// accountIDPrefix is the version byte for classic account addresses.
const accountIDPrefix = 0x00

// DecodeClassicAddress decodes and checksums a classic account address,
// returning the 20-byte account ID.
func DecodeClassicAddress(addr string) ([20]byte, error) {
	var id [20]byte

	raw, err := base58.DecodeAlphabet(addr, addressAlphabet)
	if err != nil {
		return id, fmt.Errorf("ledger: decode address %q: %w", addr, err)
	}
	if len(raw) != 25 {
		return id, fmt.Errorf("ledger: address %q: payload is %d bytes, want 25", addr, len(raw))
	}
	if raw[0] != accountIDPrefix {
		return id, fmt.Errorf("ledger: address %q: bad version byte 0x%02x", addr, raw[0])
	}
	if !bytes.Equal(raw[21:], checksum(raw[:21])) {
		return id, fmt.Errorf("ledger: address %q: checksum mismatch", addr)
	}

	copy(id[:], raw[1:21])
	return id, nil
}

// EncodeClassicAddress encodes a 20-byte account ID as a classic address.
func EncodeClassicAddress(id [20]byte) string {
	payload := make([]byte, 0, 25)
	payload = append(payload, accountIDPrefix)
	payload = append(payload, id[:]...)
	payload = append(payload, checksum(payload)...)
	return base58.EncodeAlphabet(payload, addressAlphabet)
}

// ValidClassicAddress reports whether addr decodes to a well-formed,
// checksummed account address.
func ValidClassicAddress(addr string) bool {
	_, err := DecodeClassicAddress(addr)
	return err == nil
}

// checksum is the first four bytes of a double SHA-256.
func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}
