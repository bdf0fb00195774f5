package apitest

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.usersByName[req.Username]
	if u == nil || u.Password != req.Password {
		abortJSON(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	resp := gin.H{
		"access":  s.issueLocked(u, accessTokenType),
		"refresh": s.issueLocked(u, refreshTokenType),
		"user_id": u.ID,
	}
	if s.adminFlag {
		resp["is_admin"] = u.IsAdmin
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	fieldErrors := gin.H{}
	for field, value := range map[string]string{"username": req.Username, "email": req.Email, "password": req.Password} {
		if strings.TrimSpace(value) == "" {
			fieldErrors[field] = []string{"This field may not be blank."}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByName[req.Username]; taken {
		fieldErrors["username"] = []string{"A user with that username already exists."}
	}
	if len(fieldErrors) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, fieldErrors)
		return
	}

	s.addUserLocked(req.Username, req.Password, req.Email, false)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (s *Server) requestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		abortJSON(c, http.StatusBadRequest, "Email is required")
		return
	}

	s.mu.Lock()
	for _, u := range s.usersByID {
		if u.Email == req.Email {
			s.resetTokens[fmt.Sprint(u.ID)] = uuid.NewString()
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"message": "If this email exists, a reset link will be sent"})
}

func (s *Server) confirmPasswordReset(c *gin.Context) {
	var req struct {
		UID      string `json:"uid"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UID == "" || req.Token == "" || req.Password == "" {
		abortJSON(c, http.StatusBadRequest, "All fields are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resetTokens[req.UID] != req.Token {
		abortJSON(c, http.StatusBadRequest, "Invalid or expired reset link")
		return
	}
	for _, u := range s.usersByID {
		if fmt.Sprint(u.ID) == req.UID {
			u.Password = req.Password
		}
	}
	delete(s.resetTokens, req.UID)
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

func profileJSON(u *user) gin.H {
	var avatar any
	if u.Avatar != "" {
		avatar = u.Avatar
	}
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"avatar":     avatar,
	}
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, profileJSON(currentUser(c)))
}

func (s *Server) updateProfile(c *gin.Context) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		abortJSON(c, http.StatusUnsupportedMediaType, "Expected multipart form data")
		return
	}

	var avatar []byte
	var avatarName string
	if fh, err := c.FormFile("avatar"); err == nil {
		f, err := fh.Open()
		if err != nil {
			abortJSON(c, http.StatusBadRequest, "Unreadable avatar")
			return
		}
		avatar, _ = io.ReadAll(f)
		_ = f.Close()
		avatarName = path.Base(fh.Filename)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := currentUser(c)
	if v, ok := c.GetPostForm("email"); ok {
		u.Email = v
	}
	if v, ok := c.GetPostForm("first_name"); ok {
		u.FirstName = v
	}
	if v, ok := c.GetPostForm("last_name"); ok {
		u.LastName = v
	}
	if avatar != nil {
		s.avatars[u.ID] = avatar
		u.Avatar = "/media/avatars/" + avatarName
	}
	c.JSON(http.StatusOK, profileJSON(u))
}
