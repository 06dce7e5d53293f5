package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Issued()
	m.Issued()
	m.Rotated()
	m.Revoked()
	m.RotationFailed("not_found")
	m.RotationFailed("not_found")
	m.RotationFailed("expired")
	m.Verified(true)
	m.Verified(false)
	m.Verified(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.issued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rotated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.revoked))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rotationFailures.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rotationFailures.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifications.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.verifications.WithLabelValues("rejected")))
}

func TestHandler_ExposesCounters(t *testing.T) {
	m := New()
	m.Issued()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gophauth_tokens_issued_total 1")
}
