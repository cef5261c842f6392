package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	userIDHeader    = "X-User-ID"
	requestIDKey    = "request_id"
	userIDKey       = "user_id"
)

// RequestID tags every request with an ID, reusing the caller's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start).String(),
			"request_id", c.GetString(requestIDKey),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", append(args, "error", c.Errors.String())...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", args...)
		default:
			log.Info("request handled", args...)
		}
	}
}

func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Code:    codeRateLimited,
				Message: "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// Auth resolves the caller's user ID. With a secret it verifies an HS256 bearer
// token and uses its subject; without one it trusts the X-User-ID header set by
// the gateway in front of the service.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			userID int64
			err    error
		)
		if secret == "" {
			userID, err = parseUserID(c.GetHeader(userIDHeader))
		} else {
			userID, err = userFromToken(c.GetHeader("Authorization"), secret)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: codeUnauthorized, Message: err.Error()})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func userFromToken(header, secret string) (int64, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return 0, errors.New("missing bearer token")
	}

	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}
	return parseUserID(claims.Subject)
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("missing or invalid user id")
	}
	return id, nil
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
