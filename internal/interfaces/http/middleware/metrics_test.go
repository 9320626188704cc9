package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fpm2805/ayuda-penco/internal/infrastructure/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/beneficiaries/:key", okHandler)

	serve(router, httptest.NewRequest(http.MethodGet, "/beneficiaries/12345678-5", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/beneficiaries/9876543-3", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	// One series per route pattern, never per path
	assert.Equal(t, 2, promtestutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestMetrics_NilMetrics(t *testing.T) {
	router := gin.New()
	router.Use(Metrics(nil))
	router.GET("/health", okHandler)

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
