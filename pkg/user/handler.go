package user

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/suara-kampus/band-manager/pkg/model"

	"github.com/suara-kampus/band-manager/internal/errdef"
	"github.com/suara-kampus/band-manager/internal/handler"

	"github.com/suara-kampus/band-manager/pkg/token"
	"github.com/gin-gonic/gin"
)

func NewHandler(userService userService, tokenService tokenService) Handler {
	return Handler{
		userService,
		tokenService,
	}
}

type Handler struct {
	userService  userService
	tokenService tokenService
}

type userService interface {
	SignUp(ctx context.Context, name, email, password string, instruments []string) (*model.User, error)
	ValidateEmail(ctx context.Context, token uuid.UUID) error
	FindById(ctx context.Context, id uint) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, id uint, name string, level model.OrganizationLevel, instruments []string) (*model.User, error)
	Delete(ctx context.Context, id uint) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, password string) error
}

type tokenService interface {
	GetTokens(user *model.User, previousTokenId string) (*token.Tokens, error)
	ValidateRefreshToken(ctx context.Context, tokenString string) (*token.RefreshTokenData, error)
	SignOut(userId uint) error
}

type SignUpRequest struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,gte=12,lte=128"`
	Instruments []string `json:"instruments"`
}

// SignUp user
func (h Handler) SignUp(c *gin.Context) {
	// swagger:route POST /users signUp
	//
	// SignUp member
	//
	// Sign up a club member. New accounts always start at the TALENT level;
	// managers promote members afterwards.
	//
	// responses:
	//   201: User
	//   400: Error
	//   415: Error
	var request SignUpRequest

	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.userService.SignUp(c.Request.Context(), request.Name, request.Email, request.Password, request.Instruments)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ValidateEmail user
func (h Handler) ValidateEmail(c *gin.Context) {
	// swagger:route GET /users/validate/{token} validateEmail
	//
	// Validate email
	//
	// responses:
	//   200:
	//   400: Error
	//   404: Error
	emailToken, err := uuid.Parse(c.Param("token"))
	if err != nil {
		_ = c.Error(errdef.NewBadRequest("invalid email token"))
		return
	}

	if err := h.userService.ValidateEmail(c.Request.Context(), emailToken); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusOK)
}

// SignIn user
func (h Handler) SignIn(c *gin.Context) {
	// swagger:route POST /tokens signIn
	//
	// Sign in
	//
	// Sign in... And get tokens
	//
	// security:
	//   basicAuth:
	//
	// responses:
	//   201: Tokens
	//   401: Error
	//   403: Error
	//   404: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	tokens, err := h.tokenService.GetTokens(user, "")
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, tokens)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken user
func (h Handler) RefreshToken(c *gin.Context) {
	// swagger:route POST /refresh refreshToken
	//
	// Refresh tokens
	//
	// responses:
	//   201: Tokens
	//   400: Error
	//   401: Error
	var request RefreshTokenRequest

	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	refreshToken, err := h.tokenService.ValidateRefreshToken(c.Request.Context(), request.RefreshToken)
	if err != nil {
		_ = c.AbortWithError(http.StatusUnauthorized, err)
		return
	}

	user, err := h.userService.FindById(c.Request.Context(), refreshToken.UserId)
	if err != nil {
		if errdef.IsNotFound(err) {
			_ = c.AbortWithError(http.StatusUnauthorized, err)
		} else {
			_ = c.Error(err)
		}
		return
	}

	tokens, err := h.tokenService.GetTokens(user, refreshToken.ID.String())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, tokens)
}

// Me user
func (h Handler) Me(c *gin.Context) {
	// swagger:route GET /me me
	//
	// User details
	//
	// Current user details
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: User
	//   401: Error
	//   404: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	current, err := h.userService.FindById(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, current)
}

// SignOut user
func (h Handler) SignOut(c *gin.Context) {
	// swagger:route DELETE /users signOut
	//
	// Sign out
	//
	// Invalidates all refresh tokens of the current user. Access tokens stay
	// valid until they expire.
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200:
	//	401: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.tokenService.SignOut(user.ID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusOK)
}

// FindById user
func (h Handler) FindById(c *gin.Context) {
	// swagger:route GET /users/{id} findUserById
	//
	// Find member
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: User
	//	401: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.FindById(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// FindAll user
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /users findAllUsers
	//
	// Find members
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: []User
	//	401: Error
	//	403: Error
	users, err := h.userService.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type UpdateUserRequest struct {
	Name              string                  `json:"name" binding:"required"`
	OrganizationLevel model.OrganizationLevel `json:"organizationLvl" binding:"required,oneof=COMMISSIONER PENGURUS SPECTA TALENT"`
	Instruments       []string                `json:"instruments"`
}

// Update user
func (h Handler) Update(c *gin.Context) {
	// swagger:route PUT /users/{id} updateUser
	//
	// Update member
	//
	// Update a member's name, organization level and instruments. Managers only.
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: User
	//	400: Error
	//	401: Error
	//	403: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request UpdateUserRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, request.Name, request.OrganizationLevel, request.Instruments)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete user
func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /users/{id} deleteUser
	//
	// Delete member
	//
	// Security:
	//	oauth2:
	//
	// Responses:
	//	202:
	//	401: Error
	//	403: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		return
	}

	if user.ID == id {
		_ = c.Error(errdef.NewBadRequest("cannot delete the current user"))
		return
	}

	err = h.userService.Delete(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset user
func (h Handler) RequestPasswordReset(c *gin.Context) {
	// swagger:route POST /users/request-reset requestPasswordReset
	//
	// Request password reset
	//
	// Always returns 200 so the endpoint can't be used to probe for accounts.
	//
	// responses:
	//	200:
	//	400: Error
	var request RequestPasswordResetRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.userService.RequestPasswordReset(c.Request.Context(), request.Email); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusOK)
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,gte=12,lte=128"`
}

// ResetPassword user
func (h Handler) ResetPassword(c *gin.Context) {
	// swagger:route POST /users/reset-password resetPassword
	//
	// Reset password
	//
	// responses:
	//	200:
	//	400: Error
	//	404: Error
	var request ResetPasswordRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), request.Token, request.Password); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusOK)
}
