package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Nekrasovv/web_store/internal/mykafka"
	"github.com/Nekrasovv/web_store/internal/service"
	"github.com/Nekrasovv/web_store/pkg/logging"
)

// EventPublisher is the producer surface the handlers need. *mykafka.Producer
// satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type AuthHandler struct {
	Svc          *service.AuthService
	Producer     EventPublisher
	CookieSecure bool
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.UserEventsTopic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "all fields are required")
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to register user")
		}
	}

	h.publish(c, req.Username, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user registered successfully",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "all fields are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to log in")
		}
	}

	c.SetCookie(createCookie(RefreshCookieName, pair.RefreshToken, RefreshCookiePath, pair.RefreshExp, h.CookieSecure))

	h.publish(c, req.Username, map[string]any{
		"type":     "user_logged_in",
		"user_id":  pair.User.ID,
		"username": pair.User.Username,
	})

	// the access token goes in the body only; callers resend it as a bearer header
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": pair.AccessToken,
		"user":        pair.User,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no refresh token provided")
	}

	pair, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		case errors.Is(err, service.ErrInvalidRefreshToken):
			return echo.NewHTTPError(http.StatusForbidden, "invalid refresh token")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to refresh token")
		}
	}

	c.SetCookie(createCookie(RefreshCookieName, pair.RefreshToken, RefreshCookiePath, pair.RefreshExp, h.CookieSecure))

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no token found")
	}

	userID, err := h.Svc.Logout(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid refresh token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to logout")
	}

	c.SetCookie(deleteCookie(RefreshCookieName, RefreshCookiePath, h.CookieSecure))

	// keyed by id: the cookie value is a credential and never leaves the process
	h.publish(c, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":    "user_logged_out",
		"user_id": userID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out successfully",
	})
}
