package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/service"
	"github.com/azorastack/market/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const JWTTokenExpire = 24 * time.Hour

type AuthHandler struct {
	userService UserServicer
	jwtSecret   []byte
}

func NewAuthHandler(userService UserServicer, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtSecret:   jwtSecret,
	}
}

type UserRegisterParams struct {
	Email    string `binding:"required,email"          json:"email"`
	Password string `binding:"required,min=6,max=255"  json:"password"`
	Name     string `binding:"required,min=1,max=100"  json:"name"`
	Role     string `binding:"omitempty,oneof=BUYER SELLER" json:"role"`
}

type UserResponse struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      domain.RoleType `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

// Register POST RouteGroup + RegisterRoute. Creates the account and signs
// the user in. The ADMIN role cannot be self-assigned.
func (h *AuthHandler) Register(c *gin.Context) {
	var params UserRegisterParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	role := domain.RoleType(params.Role)
	if role == "" {
		role = domain.RoleBuyer
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, createErr := h.userService.Register(ctx, service.RegisterUserArgs{
		Email:    params.Email,
		Password: params.Password,
		Name:     params.Name,
		Role:     role,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			_ = c.AbortWithError(http.StatusConflict, errors.New("user with this email already exists")).
				SetType(gin.ErrorTypePublic)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, createErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Role, JWTTokenExpire, h.jwtSecret)
	if tokenErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, tokenErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusCreated, gin.H{"user": newUserResponse(user)})
}

type UserLoginParams struct {
	Email    string `binding:"required,email"         json:"email"`
	Password string `binding:"required,min=6,max=255" json:"password"`
}

// Login POST RouteGroup + LoginRoute.
func (h *AuthHandler) Login(c *gin.Context) {
	var params UserLoginParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.userService.Login(ctx, params.Email, params.Password)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrPasswordMissMatch) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Role, JWTTokenExpire, h.jwtSecret)
	if tokenErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, tokenErr).SetType(gin.ErrorTypePrivate)
		return
	}
	c.Header("Authorization", "Bearer "+token)

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

type BankDetailsParams struct {
	BankName          string `binding:"required,min=2,max=100"  json:"bank_name"`
	AccountNumber     string `binding:"required,min=6,max=30"   json:"account_number"`
	IFSCCode          string `binding:"required,min=4,max=20"   json:"ifsc_code"`
	AccountHolderName string `binding:"required,min=2,max=100"  json:"account_holder_name"`
	UPIID             string `binding:"omitempty,max=100"       json:"upi_id"`
}

// UpdateBankDetails PUT RouteGroup + BankDetailsRoute. Replaces the payout
// destination on the current user's profile.
func (h *AuthHandler) UpdateBankDetails(c *gin.Context) {
	var params BankDetailsParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	err := h.userService.UpdateBankDetails(ctx, getUserIDFromContext(c), domain.BankDetails{
		BankName:          params.BankName,
		AccountNumber:     params.AccountNumber,
		IFSCCode:          params.IFSCCode,
		AccountHolderName: params.AccountHolderName,
		UPIID:             params.UPIID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrIncompleteBankDetails) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.AbortWithStatus(http.StatusOK)
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
