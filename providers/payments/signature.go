package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoWebhookSecret means the webhook secret is missing from the
	// gateway settings. Operator misconfiguration, never retried.
	ErrNoWebhookSecret = errors.New("no webhook secret configured for xMoney")

	// ErrUnsupportedArrayField is returned when a webhook payload carries
	// an array value. xMoney does not sign array fields and the canonical
	// form for them is undefined, so we refuse rather than guess.
	ErrUnsupportedArrayField = errors.New("array values are not supported in signed payloads")
)

// signatureKey is excluded from the canonical string wherever it appears.
const signatureKey = "signature"

// CanonicalString rebuilds the exact string the gateway signed from a raw
// JSON body. The result is independent of key order and whitespace in the
// transport representation: keys are visited in ascending ordinal order,
// nested objects contribute their ancestor key names as an accumulated
// prefix (no separator), and every leaf appends prefix+key+value.
func CanonicalString(rawBody []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(rawBody))
	// Keep numbers as their source text; 10.50 must not become 10.5.
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return "", fmt.Errorf("error decoding webhook body: %w", err)
	}

	var sb strings.Builder
	if err := appendCanonical(&sb, payload, ""); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func appendCanonical(sb *strings.Builder, obj map[string]interface{}, keyPrefix string) error {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.TrimSpace(key) == "" || strings.EqualFold(key, signatureKey) {
			continue
		}

		switch value := obj[key].(type) {
		case map[string]interface{}:
			if err := appendCanonical(sb, value, keyPrefix+key); err != nil {
				return err
			}
		case []interface{}:
			return fmt.Errorf("%w: field %q", ErrUnsupportedArrayField, key)
		default:
			sb.WriteString(keyPrefix)
			sb.WriteString(key)
			sb.WriteString(canonicalValue(value))
		}
	}
	return nil
}

// canonicalValue renders a leaf the way the gateway does before signing:
// raw text, no quoting, nulls as the empty string.
func canonicalValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ComputeSignature returns the lowercase hex HMAC-SHA-256 digest of the
// canonical string under the shared webhook secret.
func ComputeSignature(webhookSecret string, canonical string) (string, error) {
	if strings.TrimSpace(webhookSecret) == "" {
		return "", ErrNoWebhookSecret
	}

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature recomputes the HMAC over the canonical string and
// compares it to the claimed signature in constant time. The hex
// comparison is case-insensitive. The computed digest never leaves this
// function, so it cannot leak into logs or responses.
func VerifySignature(webhookSecret string, canonical string, claimedSignature string) (bool, error) {
	if strings.TrimSpace(webhookSecret) == "" {
		return false, ErrNoWebhookSecret
	}

	claimed, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(claimedSignature)))
	if err != nil {
		return false, nil
	}

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(canonical))
	return hmac.Equal(mac.Sum(nil), claimed), nil
}
