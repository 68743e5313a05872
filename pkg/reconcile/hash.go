package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// Hash computes the content hash over a vehicle's canonical fields. The
// fields are serialized as RFC 8785 canonical JSON (sorted keys, normalized
// numbers) and digested with SHA-256, so two semantically identical payloads
// hash identically regardless of field ordering. Media URLs must not be part
// of the input; callers hash only the mergeable fields.
func Hash(fields map[string]any) (string, error) {
	if fields == nil {
		fields = map[string]any{}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return "", errors.WrapParse("json", "canonical fields", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", errors.WrapParse("json", "canonical fields", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// hashContent folds the display name into the canonical form before hashing.
// A rename with otherwise identical fields must still register as a data
// change.
func hashContent(name string, fields map[string]any) (string, error) {
	canonical := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		canonical[k] = v
	}
	canonical["display_name"] = name
	return Hash(canonical)
}
