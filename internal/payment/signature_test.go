package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignMatchesManualHMAC(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("top-secret"))
	mac.Write([]byte("order_1|pay_1"))
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, Sign("top-secret", "order_1", "pay_1"))
}

func TestVerify(t *testing.T) {
	sig := Sign("top-secret", "order_1", "pay_1")

	assert.True(t, Verify("top-secret", "order_1", "pay_1", sig))
	assert.True(t, Verify("top-secret", "order_1", "pay_1", strings.ToUpper(sig)))
	assert.False(t, Verify("other-secret", "order_1", "pay_1", sig))
	assert.False(t, Verify("top-secret", "order_2", "pay_1", sig))
	assert.False(t, Verify("top-secret", "order_1", "pay_2", sig))
	assert.False(t, Verify("top-secret", "order_1", "pay_1", sig[:10]))
	assert.False(t, Verify("top-secret", "order_1", "pay_1", ""))
	assert.False(t, Verify("", "order_1", "pay_1", Sign("", "order_1", "pay_1")))
}
