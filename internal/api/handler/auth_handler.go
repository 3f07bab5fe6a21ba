package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registeredUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

type emailCheck struct {
	Exists bool `json:"exists"`
}

// Register creates a new user account. "name" is accepted as an alias of
// "username".
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      409   {object}  envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" {
		req.Username = req.Name
	}
	if req.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password required")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	return success(c, registeredUser{ID: user.ID, Email: user.Email}, "User registered")
}

// Login authenticates a user and returns its profile with a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return success(c, loginResponse{
		ID:       sess.User.ID,
		Email:    sess.User.Email,
		Username: sess.User.Username,
		Role:     sess.User.Role,
		Token:    sess.Token,
	}, "Login success")
}

// CheckEmail reports whether an account already uses an email.
//
// @Summary      Check email availability
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Email to check"
// @Success      200    {object}  envelope
// @Failure      400    {object}  envelope
// @Router       /auth/check-email [get]
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email query param required")
	}
	if h.authService.EmailExists(c.Request().Context(), email) {
		return success(c, emailCheck{Exists: true}, "Email exists")
	}
	return success(c, emailCheck{Exists: false}, "Email available")
}

// Logout is stateless; tokens simply expire.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return success(c, nil, "Logged out")
}
