package configdoc

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Parse decodes arbitrary JSON text into a Partial. Unknown fields are
// ignored; malformed input yields a descriptive error and no partial.
func Parse(text string) (Partial, error) {
	var p Partial
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&p); err != nil {
		return Partial{}, fmt.Errorf("parsing config: %w", err)
	}
	return p, nil
}

// Serialize renders d as canonical compact JSON with sorted keys. Two
// documents with equal content always serialize to identical bytes.
func Serialize(d Document) string {
	b, err := json.Marshal(d)
	if err != nil {
		// Document contains only JSON-safe types.
		return "{}"
	}
	var tree map[string]any
	if err := json.Unmarshal(b, &tree); err != nil {
		return "{}"
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// Fingerprint returns a short deterministic content hash of d, computed over
// the canonical serialization. It doubles as the optimistic-concurrency
// version tag and as the cache key that keeps stateful editing widgets from
// leaking values across unrelated documents.
func Fingerprint(d Document) string {
	sum := md5.Sum([]byte(Serialize(d)))
	return hex.EncodeToString(sum[:])[:8]
}

// Export renders d as pretty-printed JSON (2-space indent, UTF-8 with
// unicode and emoji left unescaped) suitable for download and for a
// byte-for-byte round trip through Parse.
func Export(d Document) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}
