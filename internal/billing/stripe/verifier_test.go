package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendly/vendly/internal/billing/domain"
)

const testSecret = "whsec_test_secret"

func signPayload(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%s.%s", timestamp, payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := []byte(`{"type":"invoice.paid"}`)
	timestamp := "1700000000"

	headers := http.Header{}
	headers.Set("Stripe-Signature", fmt.Sprintf("t=%s,v1=%s", timestamp, signPayload(testSecret, timestamp, payload)))

	require.NoError(t, v.Verify(payload, headers))
}

func TestVerifyAcceptsAnyMatchingScheme(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := []byte(`{"type":"invoice.paid"}`)
	timestamp := "1700000000"

	// Secret rotation sends two v1 signatures; one match is enough.
	headers := http.Header{}
	headers.Set("Stripe-Signature", fmt.Sprintf(
		"t=%s,v1=%s,v1=%s",
		timestamp,
		signPayload("whsec_old_secret", timestamp, payload),
		signPayload(testSecret, timestamp, payload),
	))

	require.NoError(t, v.Verify(payload, headers))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	v := NewVerifier(testSecret)
	timestamp := "1700000000"

	headers := http.Header{}
	headers.Set("Stripe-Signature", fmt.Sprintf("t=%s,v1=%s", timestamp, signPayload(testSecret, timestamp, []byte(`{"amount":100}`))))

	err := v.Verify([]byte(`{"amount":999}`), headers)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyRejectsMalformedHeader(t *testing.T) {
	v := NewVerifier(testSecret)

	for _, header := range []string{"", "v1=deadbeef", "t=1700000000", "garbage"} {
		headers := http.Header{}
		if header != "" {
			headers.Set("Stripe-Signature", header)
		}
		err := v.Verify([]byte(`{}`), headers)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature, "header %q", header)
	}
}

func TestVerifyWithoutSecretIsNotConfigured(t *testing.T) {
	v := NewVerifier("  ")

	headers := http.Header{}
	headers.Set("Stripe-Signature", "t=1,v1=deadbeef")

	assert.ErrorIs(t, v.Verify([]byte(`{}`), headers), domain.ErrNotConfigured)
}
