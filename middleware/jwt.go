package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/archeryapi/models"
)

// Context keys set by JWT.
const (
	keyMemberID = "member_id"
	keyUsername = "username"
	keyRole     = "role"
)

// Claims extends jwt.RegisteredClaims with the signed-in member.
type Claims struct {
	MemberID int    `json:"member_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWT returns an Echo middleware that validates the Authorization header token
// using the provided signing key. A "Bearer " prefix is optional.
func JWT(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer "))
			if token == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing authorization header")
			}

			claims := &Claims{}
			tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			if !tkn.Valid || claims.MemberID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(keyMemberID, claims.MemberID)
			c.Set(keyUsername, claims.Username)
			c.Set(keyRole, claims.Role)
			return next(c)
		}
	}
}

// AdminOnly rejects members without the admin role. It must run after JWT.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// MemberID returns the signed-in member's id, or 0.
func MemberID(c echo.Context) int {
	id, _ := c.Get(keyMemberID).(int)
	return id
}

// IsAdmin reports whether the signed-in member is an admin.
func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(keyRole).(string)
	return role == models.RoleAdmin
}
