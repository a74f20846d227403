package queryir

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainQuery separates query fingerprints from any other hash the
// repository computes. The version suffix allows the algorithm to change.
const DomainQuery = "shaclq/query/v1"

// Fingerprint returns a stable identifier for compiled query text.
// Text is NFC-normalised first so equivalent Unicode spellings agree.
//
// Format: hex(SHA256(domain + 0x00 + nfc(text)))
func Fingerprint(text string) string {
	h := sha256.New()
	h.Write([]byte(DomainQuery))
	h.Write([]byte{0x00})
	h.Write([]byte(norm.NFC.String(text)))
	return hex.EncodeToString(h.Sum(nil))
}
