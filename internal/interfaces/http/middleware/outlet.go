package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dishware/backend/internal/infrastructure/logger"
)

// Outlet context keys
const (
	OutletIDKey     = "outlet_id"
	OutletHeaderKey = "X-Outlet-ID"
)

// OutletValidator defines the interface for validating that an outlet exists
// and is active
type OutletValidator interface {
	ValidateOutlet(outletID string) error
}

// OutletMiddlewareConfig holds configuration for outlet middleware
type OutletMiddlewareConfig struct {
	// HeaderEnabled enables X-Outlet-ID header extraction
	HeaderEnabled bool
	// JWTEnabled enables JWT claim extraction (requires JWT middleware to run first)
	JWTEnabled bool
	// SkipPaths are paths that don't require outlet context (e.g., health check)
	SkipPaths []string
	// Required determines if outlet context is mandatory
	Required bool
	// Validator is an optional validator to check if the outlet exists and is active
	Validator OutletValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOutletConfig returns default outlet middleware configuration
func DefaultOutletConfig() OutletMiddlewareConfig {
	return OutletMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/api/v1/health"},
		Required:      true,
		Validator:     nil,
		Logger:        nil,
	}
}

// OutletMiddleware extracts the outlet scope from the request.
// Extraction order: JWT claims > X-Outlet-ID header.
func OutletMiddleware() gin.HandlerFunc {
	return OutletMiddlewareWithConfig(DefaultOutletConfig())
}

// OutletMiddlewareWithConfig returns outlet middleware with custom configuration
func OutletMiddlewareWithConfig(cfg OutletMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var outletID string
		var extractionMethod string

		// Priority 1: JWT claims (if JWT middleware has already run)
		if cfg.JWTEnabled {
			if jwtOutletID, exists := c.Get(JWTOutletIDKey); exists {
				if oid, ok := jwtOutletID.(string); ok && oid != "" {
					outletID = oid
					extractionMethod = "jwt"
				}
			}
		}

		// Priority 2: X-Outlet-ID header
		if outletID == "" && cfg.HeaderEnabled {
			if headerOutletID := c.GetHeader(OutletHeaderKey); headerOutletID != "" {
				outletID = headerOutletID
				extractionMethod = "header"
			}
		}

		if outletID != "" {
			if _, err := uuid.Parse(outletID); err != nil {
				respondUnauthorized(c, "Invalid outlet ID format")
				return
			}
		}

		if outletID == "" && cfg.Required {
			respondUnauthorized(c, "Outlet identification required")
			return
		}

		if outletID != "" && cfg.Validator != nil {
			if err := cfg.Validator.ValidateOutlet(outletID); err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Outlet validation failed",
					zap.String("outlet_id", outletID),
					zap.Error(err),
				)
				respondUnauthorized(c, "Invalid or inactive outlet")
				return
			}
		}

		if outletID != "" {
			// Set in gin context for easy access in handlers
			c.Set(OutletIDKey, outletID)

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithOutletID(ctx, log, outletID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("Outlet identified",
					zap.String("outlet_id", outletID),
					zap.String("method", extractionMethod),
				)
			}
		}

		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetOutletID retrieves the outlet ID from gin.Context
func GetOutletID(c *gin.Context) string {
	if outletID, exists := c.Get(OutletIDKey); exists {
		if oid, ok := outletID.(string); ok {
			return oid
		}
	}
	return ""
}

// GetOutletUUID retrieves the outlet ID as UUID from gin.Context
func GetOutletUUID(c *gin.Context) (uuid.UUID, error) {
	outletID := GetOutletID(c)
	if outletID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(outletID)
}

// MustGetOutletUUID retrieves the outlet ID as UUID or panics if not found.
// Use this only in handlers behind the outlet middleware.
func MustGetOutletUUID(c *gin.Context) uuid.UUID {
	outletUUID, err := GetOutletUUID(c)
	if err != nil || outletUUID == uuid.Nil {
		panic("valid outlet_id not found in context")
	}
	return outletUUID
}

// OptionalOutletMiddleware creates middleware that doesn't require an outlet
func OptionalOutletMiddleware() gin.HandlerFunc {
	cfg := DefaultOutletConfig()
	cfg.Required = false
	return OutletMiddlewareWithConfig(cfg)
}
