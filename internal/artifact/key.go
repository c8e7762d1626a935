package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
)

// keyLen is the number of hex characters kept from the digest. Long enough to
// separate distinct parameter sets, short enough for filenames.
const keyLen = 12

// Key derives a deterministic fingerprint for a stage invocation from its
// effective parameters. Same stage + params always yields the same key,
// independent of process or machine. Params must be JSON-encodable; maps are
// fine because encoding/json sorts their keys.
func Key(stage string, params any) (string, error) {
	h := sha256.New()
	if err := writeString(h, stage); err != nil {
		return "", err
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("artifact: marshaling key params: %w", err)
	}
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil))[:keyLen], nil
}

// ChainKey derives a key for a stage that consumes another stage's output, so
// a parameter change upstream invalidates everything downstream.
func ChainKey(stage, upstreamKey string, params any) (string, error) {
	return Key(stage, struct {
		Upstream string `json:"upstream"`
		Params   any    `json:"params"`
	}{Upstream: upstreamKey, Params: params})
}

func writeString(w io.Writer, s string) error {
	// Null byte delimiter prevents hash collisions between adjacent parts.
	_, err := w.Write([]byte(s + "\x00"))
	return err
}
