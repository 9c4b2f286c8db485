package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/theinvitelink/rsvp-service/internal/models"
)

// Role is the caller's privilege level for one event. It is boolean by
// design: whoever holds the management key (or the owning account) is
// trusted fully, everyone else can read and RSVP only.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleGuest     Role = "guest"
)

// Authorize decides the caller's role for an event. Organizer requires
// either the event's management key or an authenticated account matching the
// owner; there is no intermediate role and no key-recovery path.
func Authorize(evt *models.Event, managementKey, accountID string) Role {
	if evt == nil {
		return RoleGuest
	}
	if managementKey != "" && evt.ManagementKey != "" &&
		subtle.ConstantTimeCompare([]byte(managementKey), []byte(evt.ManagementKey)) == 1 {
		return RoleOrganizer
	}
	if accountID != "" && evt.OwnerAccount == accountID {
		return RoleOrganizer
	}
	return RoleGuest
}

// accountCtxKey is the Gin context key holding the authenticated account id.
const accountCtxKey = "account_id"

// ManagementKey extracts the capability token a caller presented, either as
// the X-Management-Key header or the key query parameter (the form manage
// links use).
func ManagementKey(c *gin.Context) string {
	if k := strings.TrimSpace(c.GetHeader("X-Management-Key")); k != "" {
		return k
	}
	return strings.TrimSpace(c.Query("key"))
}

// SessionMiddleware extracts the opaque account identity from a bearer
// session token issued by the auth provider (HS256, account id in "sub").
// Absent or invalid tokens do not abort: most surfaces work anonymously and
// Authorize simply sees an empty account id.
func SessionMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}
		accountID, err := parseSessionToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err == nil && accountID != "" {
			c.Set(accountCtxKey, accountID)
		}
		c.Next()
	}
}

// AccountID returns the authenticated account id, or "" for anonymous callers.
func AccountID(c *gin.Context) string {
	v, _ := c.Get(accountCtxKey)
	s, _ := v.(string)
	return s
}

func parseSessionToken(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid session token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("session token missing sub claim")
	}
	return sub, nil
}

// AdminMiddleware guards the moderation surface. The admin key is a shared
// secret from config, deliberately outside the per-event capability model:
// moderation supersedes organizers rather than deriving from them.
func AdminMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := strings.TrimSpace(c.GetHeader("X-Admin-Key"))
		if adminKey == "" || presented == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
