package madns

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrResolution 解析失败
	ErrResolution = errors.New("madns: resolution failed")

	// ErrRecursionLimit 超过最大递归深度
	ErrRecursionLimit = errors.New("madns: max recursion depth exceeded")

	// ErrNoRecords 未找到 DNS 记录（NXDOMAIN 或无应答）
	//
	// 后端返回此错误时解析器产出零个结果，不视为失败。
	ErrNoRecords = errors.New("madns: no DNS records found")

	// ErrEmptyAddr 空多地址
	ErrEmptyAddr = errors.New("madns: empty multiaddr")
)

// ResolutionError 解析失败，包装底层原因
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("madns: resolution failed: %v", e.Err)
	}
	return fmt.Sprintf("madns: failed to resolve %s: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Is 匹配 ErrResolution
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// RecursionLimitError dnsaddr 递归深度耗尽
//
// 同时匹配 ErrResolution 与 ErrRecursionLimit。
type RecursionLimitError struct {
	Host  string
	Depth int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("madns: max recursion depth exceeded for %s (depth %d)", e.Host, e.Depth)
}

// Is 匹配 ErrResolution 与 ErrRecursionLimit
func (e *RecursionLimitError) Is(target error) bool {
	return target == ErrResolution || target == ErrRecursionLimit
}
