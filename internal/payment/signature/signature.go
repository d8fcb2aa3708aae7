// Package signature implements the HMAC request signing shared by the
// VNPay and MoMo integrations. Both providers sign a canonical string of
// request parameters and compare lowercase hex digests.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"sort"
	"strings"
)

// Algo selects the HMAC hash function.
type Algo int

const (
	SHA256 Algo = iota
	SHA512
)

func (a Algo) newHash() func() hash.Hash {
	if a == SHA512 {
		return sha512.New
	}
	return sha256.New
}

// Canonical builds the provider canonical string from params: keys sorted
// lexicographically, joined as key=value with '&', raw values without URL
// encoding. Keys listed in exclude are skipped. Empty values stay in as
// "key=" so both sides sign the same parameter set.
func Canonical(params map[string]string, exclude ...string) string {
	skip := make(map[string]struct{}, len(exclude))
	for _, k := range exclude {
		skip[k] = struct{}{}
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if _, ok := skip[k]; ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	return sb.String()
}

// HMACHex returns the lowercase hex HMAC digest of data under secret.
func HMACHex(algo Algo, secret, data string) string {
	mac := hmac.New(algo.newHash(), []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign canonicalizes params and returns the hex digest.
func Sign(algo Algo, secret string, params map[string]string, exclude ...string) string {
	return HMACHex(algo, secret, Canonical(params, exclude...))
}

// Verify recomputes the digest and compares it to got in constant time.
// An empty secret never verifies.
func Verify(algo Algo, secret string, params map[string]string, got string, exclude ...string) bool {
	if secret == "" || got == "" {
		return false
	}
	want := Sign(algo, secret, params, exclude...)
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

// VerifyRaw compares got against the digest of a pre-built canonical string.
// MoMo uses a fixed field order rather than sorted keys, so its callers
// build the raw string themselves.
func VerifyRaw(algo Algo, secret, raw, got string) bool {
	if secret == "" || got == "" {
		return false
	}
	want := HMACHex(algo, secret, raw)
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}
