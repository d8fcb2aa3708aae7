package signature

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func TestCanonicalSortsKeysAndKeepsEmptyValues(t *testing.T) {
	params := map[string]string{
		"vnp_Amount":  "10000000",
		"vnp_TmnCode": "DEMO",
		"vnp_Command": "pay",
		"vnp_Locale":  "",
	}

	got := Canonical(params)
	want := "vnp_Amount=10000000&vnp_Command=pay&vnp_Locale=&vnp_TmnCode=DEMO"
	if got != want {
		t.Errorf("canonical = %q, want %q", got, want)
	}
}

func TestVerifyRoundTripsEmptyValuedParam(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":   "order-1",
		"vnp_BankCode": "",
		"vnp_Amount":   "100",
	}
	sig := Sign(SHA512, "secret", params)
	if !Verify(SHA512, "secret", params, sig) {
		t.Fatal("params with empty value did not verify")
	}

	// dropping the empty param changes the canonical string
	delete(params, "vnp_BankCode")
	if Verify(SHA512, "secret", params, sig) {
		t.Error("signature verified after empty-valued param removed")
	}
}

func TestCanonicalExcludesKeys(t *testing.T) {
	params := map[string]string{
		"vnp_Amount":         "10000000",
		"vnp_SecureHash":     "deadbeef",
		"vnp_SecureHashType": "HmacSHA512",
	}

	got := Canonical(params, "vnp_SecureHash", "vnp_SecureHashType")
	if got != "vnp_Amount=10000000" {
		t.Errorf("canonical = %q, want only vnp_Amount", got)
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	params := map[string]string{
		"vnp_Amount":    "5000000",
		"vnp_TxnRef":    "order-123",
		"vnp_TmnCode":   "DEMO",
		"vnp_OrderInfo": "Thanh toan don hang order-123",
	}

	sig := Sign(SHA512, "secret", params)
	if !Verify(SHA512, "secret", params, sig) {
		t.Fatal("signature did not verify against its own params")
	}

	// Any mutated value must fail verification.
	params["vnp_Amount"] = "5000001"
	if Verify(SHA512, "secret", params, sig) {
		t.Error("signature verified after amount changed")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	params := map[string]string{"vnp_TxnRef": "order-1"}
	sig := Sign(SHA512, "secret", params)

	if Verify(SHA512, "other", params, sig) {
		t.Error("signature verified under a different secret")
	}
}

func TestVerifyEmptySecretOrDigest(t *testing.T) {
	params := map[string]string{"vnp_TxnRef": "order-1"}

	if Verify(SHA512, "", params, Sign(SHA512, "", params)) {
		t.Error("empty secret must never verify")
	}
	if Verify(SHA512, "secret", params, "") {
		t.Error("empty digest must never verify")
	}
}

func TestVerifyAcceptsUppercaseDigest(t *testing.T) {
	params := map[string]string{"vnp_TxnRef": "order-1", "vnp_Amount": "100"}
	sig := Sign(SHA512, "secret", params)

	upper := ""
	for _, r := range sig {
		if r >= 'a' && r <= 'f' {
			r -= 32
		}
		upper += string(r)
	}
	if !Verify(SHA512, "secret", params, upper) {
		t.Error("uppercase hex digest rejected")
	}
}

func TestHMACHexMatchesStdlib(t *testing.T) {
	mac := hmac.New(sha512.New, []byte("k"))
	mac.Write([]byte("data"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := HMACHex(SHA512, "k", "data"); got != want {
		t.Errorf("HMACHex = %q, want %q", got, want)
	}
}

func TestVerifyRaw(t *testing.T) {
	raw := "accessKey=ak&amount=10000&orderId=order-1"
	sig := HMACHex(SHA256, "sk", raw)

	if !VerifyRaw(SHA256, "sk", raw, sig) {
		t.Fatal("raw signature did not verify")
	}
	if VerifyRaw(SHA256, "sk", raw+"&x=1", sig) {
		t.Error("raw signature verified for a different payload")
	}
	if VerifyRaw(SHA256, "", raw, sig) {
		t.Error("empty secret must never verify")
	}
}
