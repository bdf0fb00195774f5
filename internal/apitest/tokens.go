package apitest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
	ctxUser          = "apitest_user"
)

var errTokenInvalid = fmt.Errorf("token is invalid or expired")

// IssueTokens signs a fresh token pair for username, as a login would.
func (s *Server) IssueTokens(username string) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.usersByName[username]
	if u == nil {
		return "", ""
	}
	return s.issueLocked(u, accessTokenType), s.issueLocked(u, refreshTokenType)
}

// issueLocked signs a token; s.mu must be held.
func (s *Server) issueLocked(u *user, kind string) string {
	now := time.Now()
	ttl, gen := s.accessTTL, s.accessGen
	if kind == refreshTokenType {
		ttl, gen = s.refreshTTL, s.refreshGen
	}

	claims := jwtlib.MapClaims{
		"token_type": kind,
		"user_id":    u.ID,
		"is_staff":   u.IsAdmin,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
		"jti":        uuid.NewString(),
		"gen":        gen,
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

// verifyLocked checks signature, expiry, type and generation; s.mu must be held.
func (s *Server) verifyLocked(raw, kind string) (*user, error) {
	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, errTokenInvalid
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok || claims["token_type"] != kind {
		return nil, errTokenInvalid
	}

	gen, _ := claims["gen"].(float64)
	current := s.accessGen
	if kind == refreshTokenType {
		current = s.refreshGen
	}
	if int(gen) < current {
		return nil, errTokenInvalid
	}

	id, _ := claims["user_id"].(float64)
	u := s.usersByID[int(id)]
	if u == nil {
		return nil, errTokenInvalid
	}
	return u, nil
}

func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", true
	}
	return parts[1], true
}

func unauthorized(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail, "code": "token_not_valid"})
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, present := bearer(c)
		if !present {
			unauthorized(c, "Authentication credentials were not provided.")
			return
		}

		s.mu.Lock()
		reject := s.rejectAll
		u, err := s.verifyLocked(raw, accessTokenType)
		s.mu.Unlock()

		if reject || err != nil {
			unauthorized(c, "Given token not valid for any token type")
			return
		}
		c.Set(ctxUser, u)
		c.Next()
	}
}

// publicAuth lets unauthenticated requests through. With strict auth enabled
// a bearer token that is present but invalid is still rejected.
func (s *Server) publicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.strictAuth {
			c.Next()
			return
		}
		raw, present := bearer(c)
		if !present {
			c.Next()
			return
		}
		s.mu.Lock()
		_, err := s.verifyLocked(raw, accessTokenType)
		s.mu.Unlock()
		if err != nil {
			unauthorized(c, "Given token not valid for any token type")
			return
		}
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *user {
	return c.MustGet(ctxUser).(*user)
}

func (s *Server) refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"refresh": []string{"This field is required."}})
		return
	}

	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++

	if s.refreshFailCode != 0 {
		c.AbortWithStatusJSON(s.refreshFailCode, gin.H{"detail": "Refresh is unavailable"})
		return
	}
	u, err := s.verifyLocked(req.Refresh, refreshTokenType)
	if err != nil {
		unauthorized(c, "Token is invalid or expired")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": s.issueLocked(u, accessTokenType)})
}
