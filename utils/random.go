package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RequestID returns a short random hex id attached to every outbound
// request for log correlation.
func RequestID() (string, error) {
	byt := make([]byte, 8)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return hex.EncodeToString(byt), nil
}
