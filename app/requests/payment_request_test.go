package requests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method, target, body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c
}

func TestValidateCreatePaymentJSON(t *testing.T) {
	c := newContext(http.MethodPost, "/api/payments/create", `{"reservation_id":12,"amount":45000.5,"client_email":"ana@example.com"}`)

	req, err := ValidateCreatePayment(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), req.ReservationID)
	require.NotNil(t, req.Amount)
	assert.Equal(t, "45000.5", req.Amount.String())
	assert.Equal(t, "ana@example.com", req.ClientEmail)
}

func TestValidateCreatePaymentQuery(t *testing.T) {
	c := newContext(http.MethodPost, "/api/payments/create?reservation_id=7", "")

	req, err := ValidateCreatePayment(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), req.ReservationID)
	assert.Nil(t, req.Amount)
}

func TestValidateCreatePaymentQueryAlias(t *testing.T) {
	c := newContext(http.MethodPost, "/api/payments/create?reservationId=7", "")
	req, err := ValidateCreatePayment(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), req.ReservationID)

	// 两个参数同时存在时以 reservation_id 为准
	c = newContext(http.MethodPost, "/api/payments/create?reservation_id=8&reservationId=7", "")
	req, err = ValidateCreatePayment(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), req.ReservationID)

	c = newContext(http.MethodPost, "/api/payments/create?reservationId=x", "")
	_, err = ValidateCreatePayment(c)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestValidateCreatePaymentErrors(t *testing.T) {
	cases := map[string]*gin.Context{
		"missing id":      newContext(http.MethodPost, "/api/payments/create", `{}`),
		"bad query id":    newContext(http.MethodPost, "/api/payments/create?reservation_id=abc", ""),
		"negative amount": newContext(http.MethodPost, "/api/payments/create", `{"reservation_id":1,"amount":-3}`),
		"bad email":       newContext(http.MethodPost, "/api/payments/create", `{"reservation_id":1,"client_email":"nope"}`),
		"malformed json":  newContext(http.MethodPost, "/api/payments/create", `{"reservation_id":`),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateCreatePayment(c)
			assert.Error(t, err)
		})
	}
}

func TestValidateWebhook(t *testing.T) {
	c := newContext(http.MethodPost, "/api/payments/webhook?id=5&status=APPROVED&topic=payment", "")
	req, err := ValidateWebhook(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), req.ID)
	assert.Equal(t, "APPROVED", req.Status)
	assert.Equal(t, "payment", req.Topic)

	c = newContext(http.MethodPost, "/api/payments/webhook", `{"id":6,"status":"REJECTED"}`)
	req, err = ValidateWebhook(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), req.ID)

	c = newContext(http.MethodPost, "/api/payments/webhook?id=5", "")
	_, err = ValidateWebhook(c)
	assert.Error(t, err)
}
