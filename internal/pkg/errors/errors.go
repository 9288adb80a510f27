package errors

import (
	"errors"
	"fmt"
)

// 預定義錯誤類型
var (
	// 配置相關
	ErrConfigInvalid     = errors.New("configuration is invalid")
	ErrConfigParseFailed = errors.New("failed to parse configuration")

	// 遠程調用
	ErrTransport = errors.New("backend unreachable")
	ErrBackend   = errors.New("backend reported failure")
	ErrDecode    = errors.New("failed to decode backend response")

	// 調用方輸入
	ErrValidation = errors.New("invalid request")

	// 操作相關
	ErrOperationNotFound = errors.New("operation not found")
	ErrOperationRunning  = errors.New("operation is already running")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrUnknownSubsystem  = errors.New("unknown subsystem")
)

// 錯誤代碼，出現在 Error() 的前綴中
const (
	CodeTransport  = "Transport"
	CodeBackend    = "Backend"
	CodeDecode     = "Decode"
	CodeValidation = "Validation"
)

// Error 遠程調用或參數錯誤；Message 為發生錯誤的調用，Detail 為面向用戶的原因
type Error struct {
	Code    string
	Message string
	Err     error
	Detail  string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport 請求未得到任何應答 (連接失敗、超時、取消)
func Transport(op string, err error) error {
	return &Error{
		Code:    CodeTransport,
		Message: op,
		Err:     fmt.Errorf("%w: %w", ErrTransport, err),
		Detail:  err.Error(),
	}
}

// Backend 後端應答了，但報告失敗
func Backend(op, reason string) error {
	return &Error{
		Code:    CodeBackend,
		Message: op,
		Err:     fmt.Errorf("%w: %s", ErrBackend, reason),
		Detail:  reason,
	}
}

// Decode 應答無法解析
func Decode(op string, err error) error {
	return &Error{
		Code:    CodeDecode,
		Message: op,
		Err:     fmt.Errorf("%w: %w", ErrDecode, err),
		Detail:  err.Error(),
	}
}

// Validation 調用方參數有誤 (未知操作、未知配置等)
func Validation(cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		cause = ErrValidation
	}
	return &Error{
		Code:    CodeValidation,
		Message: msg,
		Err:     fmt.Errorf("%w: %w", ErrValidation, cause),
		Detail:  msg,
	}
}

// IsValidation 是否為參數錯誤
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsTransport 是否為傳輸錯誤
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

// IsBackend 是否為後端報告的失敗
func IsBackend(err error) bool { return errors.Is(err, ErrBackend) }

// Reason 面向用戶的錯誤文本
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return err.Error()
}

// CodeOf 錯誤鏈中最外層 *Error 的代碼，沒有時為空
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is 同標準庫 errors.Is
func Is(err, target error) bool { return errors.Is(err, target) }
