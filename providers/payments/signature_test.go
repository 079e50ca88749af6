package payments

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalStringIsOrderIndependent(t *testing.T) {
	bodyA := []byte(`{"state":"completed","resource":{"reference":"ORD-1","amount":"10.00"},"event_type":"ORDER.PAYMENT.RECEIVED"}`)
	bodyB := []byte(`{"event_type":"ORDER.PAYMENT.RECEIVED","resource":{"amount":"10.00","reference":"ORD-1"},"state":"completed"}`)

	canonicalA, err := CanonicalString(bodyA)
	require.NoError(t, err)
	canonicalB, err := CanonicalString(bodyB)
	require.NoError(t, err)

	assert.Equal(t, canonicalA, canonicalB)
}

func TestCanonicalStringSortsKeysAndPrefixesNestedObjects(t *testing.T) {
	body := []byte(`{"event_type":"ORDER.PAYMENT.RECEIVED","resource":{"reference":"ORD-1001","amount":"10.00","currency":"EUR"},"state":"completed"}`)

	canonical, err := CanonicalString(body)
	require.NoError(t, err)

	assert.Equal(t,
		"event_typeORDER.PAYMENT.RECEIVEDresourceamount10.00resourcecurrencyEURresourcereferenceORD-1001statecompleted",
		canonical)
}

func TestCanonicalStringSkipsSignatureKeyAtAnyDepth(t *testing.T) {
	body := []byte(`{"signature":"deadbeef","state":"completed","resource":{"Signature":"cafe","reference":"ORD-1"}}`)

	canonical, err := CanonicalString(body)
	require.NoError(t, err)

	assert.NotContains(t, canonical, "deadbeef")
	assert.NotContains(t, canonical, "cafe")
	assert.Equal(t, "resourcereferenceORD-1statecompleted", canonical)
}

func TestCanonicalStringSkipsEmptyAndWhitespaceKeys(t *testing.T) {
	body := []byte(`{"":"ghost","  ":"ghost2","a":"b"}`)

	canonical, err := CanonicalString(body)
	require.NoError(t, err)

	assert.Equal(t, "ab", canonical)
}

func TestCanonicalStringPreservesNumberSourceText(t *testing.T) {
	body := []byte(`{"amount":10.50,"count":3}`)

	canonical, err := CanonicalString(body)
	require.NoError(t, err)

	assert.Equal(t, "amount10.50count3", canonical)
}

func TestCanonicalStringRendersBooleansAndNulls(t *testing.T) {
	body := []byte(`{"final":true,"note":null,"test":false}`)

	canonical, err := CanonicalString(body)
	require.NoError(t, err)

	assert.Equal(t, "finaltruenotetestfalse", canonical)
}

func TestCanonicalStringRejectsArrays(t *testing.T) {
	body := []byte(`{"items":["a","b"],"state":"completed"}`)

	_, err := CanonicalString(body)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedArrayField)
}

func TestCanonicalStringRejectsInvalidJSON(t *testing.T) {
	_, err := CanonicalString([]byte(`{"state":`))
	assert.Error(t, err)
}

func TestComputeSignatureKnownVector(t *testing.T) {
	// Independently computed: HMAC-SHA-256("abc", "refREF123amount10.00")
	signature, err := ComputeSignature("abc", "refREF123amount10.00")
	require.NoError(t, err)

	assert.Equal(t, "21dd172fbd2b6ce8dbcee624dc894a65c1dfabcc90ab33f53e83495eddb9dfbd", signature)
	assert.Len(t, signature, 64)
	assert.Equal(t, strings.ToLower(signature), signature)
}

func TestComputeSignatureRequiresSecret(t *testing.T) {
	_, err := ComputeSignature("", "refREF123")
	assert.ErrorIs(t, err, ErrNoWebhookSecret)

	_, err = ComputeSignature("   ", "refREF123")
	assert.ErrorIs(t, err, ErrNoWebhookSecret)
}

func TestVerifySignatureMatches(t *testing.T) {
	canonical := "refREF123amount10.00"
	signature, err := ComputeSignature("abc", canonical)
	require.NoError(t, err)

	match, err := VerifySignature("abc", canonical, signature)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestVerifySignatureIsHexCaseInsensitive(t *testing.T) {
	canonical := "refREF123amount10.00"
	signature, err := ComputeSignature("abc", canonical)
	require.NoError(t, err)

	match, err := VerifySignature("abc", canonical, strings.ToUpper(signature))
	require.NoError(t, err)
	assert.True(t, match)
}

func TestVerifySignatureRejectsMismatch(t *testing.T) {
	match, err := VerifySignature("abc", "refREF123amount10.00", strings.Repeat("00", 32))
	require.NoError(t, err)
	assert.False(t, match)
}

func TestVerifySignatureRejectsMalformedHex(t *testing.T) {
	match, err := VerifySignature("abc", "refREF123amount10.00", "not-hex-at-all")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestVerifySignatureRequiresSecret(t *testing.T) {
	_, err := VerifySignature("", "refREF123amount10.00", strings.Repeat("00", 32))
	assert.ErrorIs(t, err, ErrNoWebhookSecret)
}
