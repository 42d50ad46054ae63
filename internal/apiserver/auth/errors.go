package auth

import (
	"errors"
	"net/http"
)

// 认证错误
var (
	ErrMissingToken       = errors.New("access token not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("role not allowed")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("password is not correct")
)

// StatusCode 将认证错误映射为 HTTP 状态码
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// gateMessage 网关拒绝请求时返回给客户端的消息
func gateMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "Access token not found"
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to access this route"
	default:
		return "Invalid token"
	}
}
