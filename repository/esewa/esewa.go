// Package esewa implements the eSewa ePay v2 form contract: building the
// signed field map the client posts to the gateway, and re-verifying that
// signature when the gateway redirects back.
package esewa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
)

// SignedFields is the ordered field subset covered by the signature.
// The order is part of the gateway contract; reordering breaks verification.
var SignedFields = []string{"total_amount", "transaction_uuid", "product_code"}

type Gateway struct {
	MerchantCode string
	SecretKey    string
	FormURL      string
}

func New(merchantCode, secretKey, formURL string) *Gateway {
	return &Gateway{MerchantCode: merchantCode, SecretKey: secretKey, FormURL: formURL}
}

// Sign joins "name=value" pairs with commas in the given field order and
// returns the base64 HMAC-SHA256 of the message. Deterministic.
func Sign(secret string, fields []string, values map[string]string) string {
	pairs := make([]string, 0, len(fields))
	for _, name := range fields {
		pairs = append(pairs, name+"="+values[name])
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, ",")))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// BuildForm assembles the full field map for the gateway's form endpoint,
// including signed_field_names and the signature over SignedFields.
func (g *Gateway) BuildForm(totalAmount float64, txnUUID, successURL, failureURL string) map[string]string {
	amount := FormatAmount(totalAmount)
	values := map[string]string{
		"amount":                  amount,
		"tax_amount":              "0",
		"product_service_charge":  "0",
		"product_delivery_charge": "0",
		"total_amount":            amount,
		"transaction_uuid":        txnUUID,
		"product_code":            g.MerchantCode,
		"success_url":             successURL,
		"failure_url":             failureURL,
	}
	values["signed_field_names"] = strings.Join(SignedFields, ",")
	values["signature"] = Sign(g.SecretKey, SignedFields, values)
	return values
}

// Verify recomputes the signature for the given total_amount and
// transaction_uuid and compares it against sig in constant time.
func (g *Gateway) Verify(sig string, totalAmount float64, txnUUID string) bool {
	want := Sign(g.SecretKey, SignedFields, map[string]string{
		"total_amount":     FormatAmount(totalAmount),
		"transaction_uuid": txnUUID,
		"product_code":     g.MerchantCode,
	})
	return hmac.Equal([]byte(sig), []byte(want))
}

// FormatAmount renders a currency value the way the gateway expects:
// minimal decimal digits, no trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
