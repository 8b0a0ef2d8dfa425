package util

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogHandler provides middleware that logs all requests and response codes
// using logrus.
func LogHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rwi := &rwInterceptor{ResponseWriter: w}
		next.ServeHTTP(rwi, r)

		entry := log.WithField("took", time.Since(start))
		switch code := rwi.statusCode; {
		case code >= 500:
			entry.Errorf("%s %s -> %d", r.Method, r.URL.Path, code)
		case code >= 400:
			entry.Warnf("%s %s -> %d", r.Method, r.URL.Path, code)
		default:
			entry.Debugf("%s %s -> %d", r.Method, r.URL.Path, code)
		}
	})
}

type rwInterceptor struct {
	http.ResponseWriter
	statusCode int
}

func (rwi *rwInterceptor) WriteHeader(code int) {
	rwi.statusCode = code
	rwi.ResponseWriter.WriteHeader(code)
}

func (rwi *rwInterceptor) Write(b []byte) (int, error) {
	if rwi.statusCode == 0 {
		rwi.WriteHeader(http.StatusOK)
	}
	return rwi.ResponseWriter.Write(b)
}

func (rwi *rwInterceptor) Flush() {
	if f, ok := rwi.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack is required by websocket upgrades.
func (rwi *rwInterceptor) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rwi.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	// A hijacked connection never reports a status, 101 is what the client
	// got.
	rwi.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}
