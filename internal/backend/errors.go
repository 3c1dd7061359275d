package backend

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrTransport 后端不可达或响应无法读取
	ErrTransport = errors.New("backend transport failed")
	// ErrRejected 后端以 4xx 拒绝请求
	ErrRejected = errors.New("backend rejected request")
	// ErrServer 后端返回 5xx
	ErrServer = errors.New("backend server error")
	// ErrResponseInvalid 响应体无法解析
	ErrResponseInvalid = errors.New("backend response invalid")
)

// APIError 后端非 2xx 响应（GlobalExceptionHandler 的错误体）
type APIError struct {
	Status           int               `json:"status"`
	Message          string            `json:"message"`
	Path             string            `json:"path,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// Error 实现 error
func (e *APIError) Error() string {
	return fmt.Sprintf("backend status %d: %s", e.Status, e.UserMessage())
}

// Unwrap 按状态码归类为 ErrRejected 或 ErrServer
func (e *APIError) Unwrap() error {
	if e.Status >= http.StatusInternalServerError {
		return ErrServer
	}
	return ErrRejected
}

// UserMessage 面向用户的错误信息（优先使用后端原文）
func (e *APIError) UserMessage() string {
	msg := strings.TrimSpace(e.Message)
	if len(e.ValidationErrors) > 0 {
		fields := make([]string, 0, len(e.ValidationErrors))
		for field := range e.ValidationErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		details := make([]string, 0, len(fields))
		for _, field := range fields {
			details = append(details, fmt.Sprintf("%s: %s", field, e.ValidationErrors[field]))
		}
		if msg == "" {
			return strings.Join(details, "; ")
		}
		return msg + " (" + strings.Join(details, "; ") + ")"
	}
	if msg != "" {
		return msg
	}
	return defaultStatusMessage(e.Status)
}

func defaultStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusUnauthorized:
		return "Please log in to continue"
	case http.StatusForbidden:
		return "Access Denied"
	case http.StatusNotFound:
		return "Resource Not Found"
	case http.StatusRequestEntityTooLarge:
		return "File size is too large"
	}
	if status >= http.StatusInternalServerError {
		return "Server error. Please try again later."
	}
	return "An unexpected error occurred"
}

// AsAPIError 提取 APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus 判断是否为指定状态码的 APIError
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

// IsUnavailable 判断是否为网络不可达或服务端故障
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrServer) || errors.Is(err, ErrResponseInvalid)
}
