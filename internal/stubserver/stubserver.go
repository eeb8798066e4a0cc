// Package stubserver runs a scriptable upstream for client stack tests.
package stubserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// Server is an httptest server with a fixed set of routes:
//
//	GET  /ok                 200 {"ok":"ok"}
//	ANY  /echo               method, path, query, headers and body as JSON
//	GET  /status/:code       responds with code
//	GET  /flaky/:key?fail=N  503 for the first N calls per key, then 200
//	GET  /slow?delay=D       waits D (or until the client goes away)
type Server struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

// Echo is the body returned by /echo.
type Echo struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   map[string]string `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// New starts a stub server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{hits: make(map[string]int)}
	engine := gin.New()
	engine.Use(s.count)

	engine.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	engine.Any("/echo", echo)
	engine.GET("/status/:code", func(c *gin.Context) {
		code, err := strconv.Atoi(c.Param("code"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
			return
		}
		c.JSON(code, gin.H{"status": code})
	})
	engine.GET("/flaky/:key", s.flaky)
	engine.GET("/slow", slow)

	s.Server = httptest.NewServer(engine)
	t.Cleanup(s.Close)
	return s
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) count(c *gin.Context) {
	s.mu.Lock()
	s.hits[c.Request.URL.Path]++
	s.mu.Unlock()
	c.Next()
}

func (s *Server) flaky(c *gin.Context) {
	fail, _ := strconv.Atoi(c.DefaultQuery("fail", "1"))
	s.mu.Lock()
	n := s.hits[c.Request.URL.Path]
	s.mu.Unlock()

	if n <= fail {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "try again", "attempt": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": "ok", "attempt": n})
}

func echo(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	e := Echo{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Query:   make(map[string]string),
		Headers: make(map[string]string),
		Body:    string(body),
	}
	for k := range c.Request.URL.Query() {
		e.Query[k] = c.Query(k)
	}
	for k := range c.Request.Header {
		e.Headers[k] = c.GetHeader(k)
	}
	c.JSON(http.StatusOK, e)
}

func slow(c *gin.Context) {
	d, err := time.ParseDuration(c.DefaultQuery("delay", "1s"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid delay"})
		return
	}
	select {
	case <-time.After(d):
		c.JSON(http.StatusOK, gin.H{"slept": d.String()})
	case <-c.Request.Context().Done():
	}
}
