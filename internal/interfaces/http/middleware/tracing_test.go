package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(t.Context())
	})
	return recorder
}

func attrValue(attrs []attribute.KeyValue, key string) string {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value.AsString()
		}
	}
	return ""
}

func TestTracing(t *testing.T) {
	recorder := setupTestTracer(t)

	router := gin.New()
	router.Use(
		RequestID(),
		Tracing(TracingConfig{ServiceName: "ayuda-penco-test", Enabled: true}),
		Session(distribution.Session{Center: "Sede Central", Officer: "Turno"}),
		TraceAttributes(),
	)
	router.GET("/lookup", okHandler)
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/lookup", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	serve(router, req)
	serve(router, httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	attrs := spans[0].Attributes()
	assert.Equal(t, "req-42", attrValue(attrs, "request_id"))
	assert.Equal(t, "Sede Central", attrValue(attrs, "distribution.center"))
	assert.Equal(t, "Turno", attrValue(attrs, "distribution.officer"))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	recorder := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}), TraceAttributes())
	router.GET("/lookup", okHandler)

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/lookup", nil)).Code)
	assert.Empty(t, recorder.Ended())
}
