package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Các loại lỗi của booking engine. Handler phân biệt bằng errors.Is
// nên message có thể đổi mà không vỡ contract.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid booking state")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
)

// ErrAlreadyPending là một dạng ErrValidation riêng cho check duplicate-pending.
var ErrAlreadyPending = fmt.Errorf("%w: already has a pending booking", ErrValidation)

// HTTPStatus ánh xạ loại lỗi sang mã HTTP tại boundary.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
