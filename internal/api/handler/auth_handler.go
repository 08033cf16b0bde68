package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lendingledger/ledger-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account. Keys other than email and password are
// stored as profile data.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Email, password and optional profile fields"
// @Success      200   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse  "email already registered"
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	fields, err := bindFields(c)
	if err != nil {
		return err
	}

	req := registerRequest{}
	req.Email, _ = fields["email"].(string)
	req.Password, _ = fields["password"].(string)
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "email", "password", "_id":
			continue
		}
		profile[k] = v
	}

	id, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Profile:  profile,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, registerResponse{YourID: id, Message: "User registered successfully"})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{JWTToken: res.Token, UserID: res.UserID})
}

// UserData returns the caller's own public profile.
//
// @Summary      Get own user data
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  userDataResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /getUserData/{userId} [post]
func (h *AuthHandler) UserData(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	profile, err := h.authService.Profile(c.Request().Context(), c.Param("userId"), subject)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userDataResponse{Username: profile.Email, ID: profile.ID})
}
