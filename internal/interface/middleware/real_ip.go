package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// forwardingHeaders are consulted in order; for X-Forwarded-For the left-most entry wins.
var forwardingHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// RealIP sets the client IP into Gin context (key: "real_ip"). Forwarding
// headers are honoured only when the direct peer is a loopback or private
// address, i.e. a proxy in front of us; otherwise the peer address is used so
// callers cannot pick their own rate-limit bucket.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		peer := c.RemoteIP()
		ip := peer
		if isInternal(peer) {
			if fwd := fromHeaders(c); fwd != "" {
				ip = fwd
			}
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func fromHeaders(c *gin.Context) string {
	for _, h := range forwardingHeaders {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		first, _, _ := strings.Cut(v, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return ""
}

func isInternal(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}
