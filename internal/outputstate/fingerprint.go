package outputstate

import "github.com/inful/mdfp"

// Fingerprint identifies the exact content written for id. A differing
// fingerprint on disk means the output was edited after generation.
func Fingerprint(id string, content []byte) string {
	return mdfp.CalculateFingerprintFromParts("id: "+id, string(content))
}
