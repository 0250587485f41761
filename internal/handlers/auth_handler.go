package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
)

type AuthHandler struct {
	username  string
	password  string
	jwtSecret string
	ttl       time.Duration
	logger    *logrus.Entry
}

func NewAuthHandler(username, password, jwtSecret string, ttl time.Duration, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		username:  username,
		password:  password,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		logger:    logger.WithField("component", "auth-handler"),
	}
}

// Login exchanges the admin credentials for a short-lived token
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Admin credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if h.password == "" || h.jwtSecret == "" {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "ADMIN_DISABLED",
				Message: "Admin access is not configured",
			},
		})
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		h.logger.WithField("username", req.Username).Warn("Rejected admin login")
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_CREDENTIALS",
				Message: "Invalid username or password",
			},
		})
		return
	}

	token, expiresAt, err := middleware.IssueToken(h.jwtSecret, h.username, h.ttl, time.Now())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "TOKEN_FAILED",
				Message: "Failed to issue token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}
