package apiHttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quepay/backend/internal/service"
)

func (h *Handler) initRoutes(router *gin.Engine) {
	router.GET("/", h.statistics)

	authed := router.Group("/", h.apiKeyMiddleware)
	authed.POST("/signup", h.signUp)
	authed.POST("/login", h.login)
	authed.POST("/verify-email", h.verifyEmail)
	authed.POST("/resend-verification", h.resendVerification)
}

type signUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"omitempty,phonenumber"`
}

// @Summary Sign up
// @Tags Auth
// @Description Creates a user and emails a verification code
// @Accept json
// @Produce json
// @Param input body signUpRequest true "account info"
// @Success 201 {object} messageResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} statusResponse
// @Failure 500 {object} messageResponse
// @Security ApiKeyAuth
// @Router /signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	err := h.services.Users.SignUp(c.Request.Context(), service.SignUpInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExist) {
			c.AbortWithStatusJSON(http.StatusBadRequest, messageResponse{Message: "Email already exists"})
			return
		}
		internalErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, messageResponse{Message: "User created successfully"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary Log in
// @Tags Auth
// @Description Exchanges credentials for a one hour bearer token
// @Accept json
// @Produce json
// @Param input body loginRequest true "credentials"
// @Success 200 {object} loginResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Security ApiKeyAuth
// @Router /login [post]
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	token, err := h.services.Users.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, messageResponse{Message: "User does not exist!"})
			return
		}
		if errors.Is(err, service.ErrIncorrectPassword) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, messageResponse{Message: "Incorrect Password!"})
			return
		}
		internalErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Message: "Logged in successfully", Token: token})
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// @Summary Verify email
// @Tags Auth
// @Description Confirms the emailed 6-digit code
// @Accept json
// @Produce json
// @Param input body verifyEmailRequest true "email and code"
// @Success 200 {object} messageResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} statusResponse
// @Failure 500 {object} messageResponse
// @Security ApiKeyAuth
// @Router /verify-email [post]
func (h *Handler) verifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	if err := h.services.Users.VerifyEmail(c.Request.Context(), req.Email, req.Code); err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredCode) {
			c.AbortWithStatusJSON(http.StatusBadRequest, messageResponse{Message: "Invalid or expired verification code"})
			return
		}
		internalErrorResponse(c, err)
		return
	}

	messageOK(c, "Email verified successfully")
}

type resendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary Resend verification code
// @Tags Auth
// @Description Issues a new code unless one is still live
// @Accept json
// @Produce json
// @Param input body resendVerificationRequest true "email"
// @Success 200 {object} messageResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} statusResponse
// @Failure 404 {object} messageResponse
// @Failure 429 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Security ApiKeyAuth
// @Router /resend-verification [post]
func (h *Handler) resendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	if err := h.services.Users.ResendVerification(c.Request.Context(), req.Email); err != nil {
		var throttled *service.ResendThrottledError

		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, messageResponse{Message: "User not found."})
		case errors.Is(err, service.ErrAlreadyVerified):
			c.AbortWithStatusJSON(http.StatusBadRequest, messageResponse{Message: "This account has already been verified."})
		case errors.As(err, &throttled):
			c.AbortWithStatusJSON(http.StatusTooManyRequests, messageResponse{
				Message: fmt.Sprintf("Please wait %d seconds before requesting a new verification code.", throttled.RetryAfter),
			})
		default:
			internalErrorResponse(c, err)
		}
		return
	}

	messageOK(c, "A new verification code has been sent to your email address.")
}

// @Summary Service statistics
// @Tags Info
// @Description Public project info
// @Produce json
// @Success 200 {object} statisticsResponse
// @Failure 500 {object} messageResponse
// @Router / [get]
func (h *Handler) statistics(c *gin.Context) {
	c.JSON(http.StatusOK, statisticsResponse{
		Success: true,
		Statistics: statistics{
			ProjectName:   h.config.Project.Name,
			OtherCoolInfo: h.config.Project.Info,
			Website:       h.config.Project.Website,
		},
	})
}
