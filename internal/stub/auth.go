package stub

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
	"github.com/bitbybit-prep/bitbybit-cli/internal/validator"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login mints a JWT pair for valid credentials. The refresh token is a
// second access-shaped token; the stub has no refresh flow.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	user := s.store.userByName(req.Username)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		return
	}

	access, err := s.issueToken(user.ID, user.IsStaff)
	if err != nil {
		fail(c, http.StatusInternalServerError, "token issue failed")
		return
	}
	refresh, err := s.issueToken(user.ID, user.IsStaff)
	if err != nil {
		fail(c, http.StatusInternalServerError, "token issue failed")
		return
	}

	c.JSON(http.StatusOK, model.TokenPair{Access: access, Refresh: refresh})
}

type registerRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=150"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	RePassword string `json:"re_password" binding:"required,eqfield=Password"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, exists := s.store.byName[req.Username]; exists {
		fail(c, http.StatusBadRequest, "a user with that username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "hash failed")
		return
	}

	user := &stubUser{
		User: model.User{
			ID:       s.store.id(),
			Username: req.Username,
			Email:    req.Email,
		},
		PasswordHash: string(hash),
	}
	s.store.users[user.ID] = user
	s.store.byName[user.Username] = user

	c.JSON(http.StatusCreated, user.User)
}

func (s *Server) me(c *gin.Context) {
	user := s.store.user(currentUser(c))
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user.User)
}

func (s *Server) updateMe(c *gin.Context) {
	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	user := s.store.users[currentUser(c)]
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
		return
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName

	c.JSON(http.StatusOK, user.User)
}

// resetPassword accepts any known email and pretends to send mail.
func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}
	s.log.Info().Str("email", req.Email).Msg("Password reset requested (no mail in stub)")
	c.Status(http.StatusNoContent)
}

func (s *Server) resetPasswordConfirm(c *gin.Context) {
	var req struct {
		UID         string `json:"uid" binding:"required"`
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}
	// The stub never issues reset tokens, so every confirmation is stale.
	fail(c, http.StatusBadRequest, "invalid or expired reset token")
}
