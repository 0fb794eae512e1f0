package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORS())
	router.POST("/api/v1/videos", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": "abc"})
	})
	router.GET("/api/v1/videos/abc/segments/1/video", func(c *gin.Context) {
		c.Header("Content-Disposition", `attachment; filename="part_01.mp4"`)
		c.String(http.StatusOK, "bytes")
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/videos", nil)
		req.Header.Set("Origin", "https://player.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("download response exposes the part filename", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc/segments/1/video", nil)
		req.Header.Set("Origin", "https://player.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("request without origin passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestRequestSizeLimitWithSize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const limit = 64 * 1024

	router := gin.New()
	router.Use(RequestSizeLimitWithSize(limit))
	router.POST("/videos", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": "abc"})
	})
	router.GET("/videos", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"videos": []string{}})
	})

	t.Run("upload under the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := strings.Repeat("a", limit/2)
		req := httptest.NewRequest(http.MethodPost, "/videos", strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("announced oversize upload is refused before reading", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := strings.Repeat("a", limit*2)
		req := httptest.NewRequest(http.MethodPost, "/videos", strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "max_bytes")
	})

	t.Run("chunked oversize upload is capped while reading", func(t *testing.T) {
		w := httptest.NewRecorder()
		// Hiding the reader's length leaves ContentLength unset, the way
		// a chunked upload arrives.
		body := io.MultiReader(strings.NewReader(strings.Repeat("a", limit*2)))
		req := httptest.NewRequest(http.MethodPost, "/videos", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("reads are not limited", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/videos", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func setupRateLimitedRouter(t *testing.T, rps, burst int) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rateLimiters := &sync.Map{}
	cleanupStop := make(chan struct{})
	cleanupInitialized := &sync.Once{}

	router := gin.New()
	router.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, rps, burst))
	router.POST("/videos/abc/transcription", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"stage": "not_started"})
	})

	return router, func() { close(cleanupStop) }
}

func doTranscribeRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/videos/abc/transcription", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestPerClientRateLimit(t *testing.T) {
	t.Run("burst exhaustion blocks with retry hint", func(t *testing.T) {
		router, stop := setupRateLimitedRouter(t, 1, 2)
		defer stop()

		blocked := 0
		for i := 0; i < 4; i++ {
			w := doTranscribeRequest(router, "127.0.0.1:40000")
			if w.Code == http.StatusTooManyRequests {
				blocked++
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
			}
		}

		assert.Greater(t, blocked, 0, "burst past the limit should be throttled")
	})

	t.Run("spaced requests within the rate pass", func(t *testing.T) {
		// 100 ms apart at 50 rps refills several tokens per gap, so the
		// bucket never empties.
		router, stop := setupRateLimitedRouter(t, 50, 3)
		defer stop()

		for i := 0; i < 5; i++ {
			if i > 0 {
				time.Sleep(100 * time.Millisecond)
			}
			w := doTranscribeRequest(router, "127.0.0.1:40000")
			assert.Equal(t, http.StatusAccepted, w.Code, "request %d should not be throttled", i+1)
		}
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		router, stop := setupRateLimitedRouter(t, 1, 1)
		defer stop()

		doTranscribeRequest(router, "10.0.0.1:40000")
		w := doTranscribeRequest(router, "10.0.0.1:40000")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		w = doTranscribeRequest(router, "10.0.0.2:40000")
		assert.Equal(t, http.StatusAccepted, w.Code, "a fresh client has its own bucket")
	})
}

func TestSweepStaleLimiters(t *testing.T) {
	limiters := &sync.Map{}
	limiters.Store("10.0.0.1", &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
		lastSeen: time.Now().Add(-time.Hour),
	})
	limiters.Store("10.0.0.2", &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
		lastSeen: time.Now(),
	})

	sweepStaleLimiters(limiters, 10*time.Minute)

	_, staleKept := limiters.Load("10.0.0.1")
	assert.False(t, staleKept, "idle client limiter should be evicted")
	_, freshKept := limiters.Load("10.0.0.2")
	assert.True(t, freshKept, "active client limiter should survive")
}
