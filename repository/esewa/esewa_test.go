package esewa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testSecret = "8gBm/:&EnhH.1/q"

func TestSign_Deterministic(t *testing.T) {
	values := map[string]string{
		"total_amount":     "300",
		"transaction_uuid": "tx-123",
		"product_code":     "EPAYTEST",
	}

	a := Sign(testSecret, SignedFields, values)
	b := Sign(testSecret, SignedFields, values)
	require.NotEmpty(t, a)
	require.Equal(t, a, b)
}

func TestSign_SensitiveToValueAndOrder(t *testing.T) {
	values := map[string]string{
		"total_amount":     "300",
		"transaction_uuid": "tx-123",
		"product_code":     "EPAYTEST",
	}
	base := Sign(testSecret, SignedFields, values)

	changed := map[string]string{
		"total_amount":     "300.5",
		"transaction_uuid": "tx-123",
		"product_code":     "EPAYTEST",
	}
	require.NotEqual(t, base, Sign(testSecret, SignedFields, changed))

	reordered := []string{"transaction_uuid", "total_amount", "product_code"}
	require.NotEqual(t, base, Sign(testSecret, reordered, values))

	require.NotEqual(t, base, Sign("other-secret", SignedFields, values))
}

func TestBuildForm(t *testing.T) {
	gw := New("EPAYTEST", testSecret, "https://rc-epay.esewa.com.np/api/epay/main/v2/form")

	values := gw.BuildForm(60, "uuid-1", "http://b/success", "http://b/failure")

	require.Equal(t, "60", values["total_amount"])
	require.Equal(t, "60", values["amount"])
	require.Equal(t, "0", values["tax_amount"])
	require.Equal(t, "0", values["product_service_charge"])
	require.Equal(t, "0", values["product_delivery_charge"])
	require.Equal(t, "uuid-1", values["transaction_uuid"])
	require.Equal(t, "EPAYTEST", values["product_code"])
	require.Equal(t, "http://b/success", values["success_url"])
	require.Equal(t, "http://b/failure", values["failure_url"])
	require.Equal(t, "total_amount,transaction_uuid,product_code", values["signed_field_names"])

	require.Equal(t, Sign(testSecret, SignedFields, values), values["signature"])
}

func TestVerify(t *testing.T) {
	gw := New("EPAYTEST", testSecret, "")

	values := gw.BuildForm(123.45, "uuid-2", "s", "f")
	sig := values["signature"]

	require.True(t, gw.Verify(sig, 123.45, "uuid-2"))
	require.False(t, gw.Verify(sig, 123.46, "uuid-2"))
	require.False(t, gw.Verify(sig, 123.45, "uuid-3"))
	require.False(t, gw.Verify("bogus", 123.45, "uuid-2"))
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "60", FormatAmount(60))
	require.Equal(t, "60.5", FormatAmount(60.5))
	require.Equal(t, "4.17", FormatAmount(4.17))
}
