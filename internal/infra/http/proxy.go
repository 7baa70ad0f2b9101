package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"meridian/internal/domain"

	"github.com/gin-gonic/gin"
)

// Hop-by-hop headers are meaningful only for the single connection they
// travel on; they are stripped in both directions.
var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Proxy-Connection":    {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// proxyHandler forwards method, path suffix, headers and body verbatim to
// the binding's downstream and relays the response unchanged. The inbound
// request context flows into the downstream call, so a client disconnect
// cancels it instead of leaving it running.
func (s *Server) proxyHandler(binding domain.RouteBinding) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := binding.BaseURL + c.Param("path")
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
		if err != nil {
			writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
			return
		}
		copyProxyHeaders(req.Header, c.Request.Header)
		if principal, ok := getPrincipal(c); ok {
			req.Header.Set("X-User-ID", principal.ID)
			if principal.HasOrganization() {
				req.Header.Set("X-Organization-ID", principal.OrganizationID)
			}
		}
		if id := requestIDFrom(c); id != "" {
			req.Header.Set("X-Request-ID", id)
		}

		resp, err := s.proxyClient.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || c.Request.Context().Err() != nil {
				// Client is gone; there is nobody to answer.
				c.Abort()
				return
			}
			log.Printf("proxy %s %s -> %s failed: %v", c.Request.Method, c.Request.URL.Path, binding.Name, err)
			s.writeUpstreamError(c, err)
			return
		}
		defer resp.Body.Close()

		header := c.Writer.Header()
		for key, values := range resp.Header {
			if _, hop := hopByHopHeaders[http.CanonicalHeaderKey(key)]; hop {
				continue
			}
			for _, v := range values {
				header.Add(key, v)
			}
		}
		c.Status(resp.StatusCode)
		if _, err := io.Copy(c.Writer, resp.Body); err != nil {
			log.Printf("proxy %s relay interrupted: %v", binding.Name, err)
		}
	}
}

func copyProxyHeaders(dst, src http.Header) {
	for key, values := range src {
		canonical := http.CanonicalHeaderKey(key)
		if _, hop := hopByHopHeaders[canonical]; hop {
			continue
		}
		if strings.EqualFold(canonical, "Host") {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

func (s *Server) writeUpstreamError(c *gin.Context, err error) {
	message := "upstream service failure"
	if !s.cfg.IsProduction() {
		message = err.Error()
	}
	writeErrorCode(c, http.StatusInternalServerError, "UPSTREAM_FAILURE", message)
}
