package service

import (
	"errors"
	"fmt"

	"budget/repository"
)

// ErrorKind 业务错误分类
type ErrorKind int

const (
	// KindValidation 参数缺失或格式错误
	KindValidation ErrorKind = iota + 1
	// KindNotFound 引用的记录不存在，总是先于权限校验
	KindNotFound
	// KindForbidden 记录存在但当前用户无权操作
	KindForbidden
	// KindConflict 状态冲突，如重复作废、未受邀加入、所有者退出
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error 业务错误，直接返回给调用方，不做重试
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string // 字段级校验信息，仅 KindValidation 使用
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validation 参数校验错误
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound 记录不存在
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Forbidden 权限不足
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Conflict 状态冲突
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf 返回错误分类，非业务错误返回 0
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind 判断 err 是否为指定分类的业务错误
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// notFoundOr 将存储层的 ErrNotFound 转换为业务 NotFound，其它错误原样返回
func notFoundOr(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound(message)
	}
	return err
}
