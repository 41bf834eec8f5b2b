package multiaddr

import (
	"errors"
	"fmt"
)

// 通用错误
var (
	// ErrParse 所有解析错误（字符串/二进制）的公共匹配目标
	ErrParse = errors.New("multiaddr: parse error")

	// ErrProtocolNotFound 注册表中不存在该协议
	ErrProtocolNotFound = errors.New("multiaddr: protocol not found")

	// ErrProtocolExists 协议名称或代码已被占用
	ErrProtocolExists = errors.New("multiaddr: protocol exists")

	// ErrRegistryLocked 注册表已锁定，拒绝任何修改
	ErrRegistryLocked = errors.New("multiaddr: protocol registry is locked and does not accept any new values")

	// ErrProtocolLookup 地址合法，但不包含所请求的协议
	ErrProtocolLookup = errors.New("multiaddr: protocol not present in address")

	// ErrNotEncapsulated Decapsulate 时目标地址不是当前地址的一部分
	ErrNotEncapsulated = errors.New("multiaddr: address does not contain subaddress")

	// ErrUnknownCodec 编解码器名称未注册
	ErrUnknownCodec = errors.New("multiaddr: unknown codec")

	// ErrNoPeerID 地址中没有 /p2p 组件
	ErrNoPeerID = errors.New("multiaddr: no peer ID in multiaddr")
)

// ============================================================================
//                              解析错误
// ============================================================================

// StringParseError 字符串形式的多地址无法解析
type StringParseError struct {
	// Message 错误描述
	Message string

	// String 原始输入字符串
	String string

	// Protocol 出错时正在处理的协议名（可能为空）
	Protocol string

	// Err 底层原因
	Err error
}

func (e *StringParseError) Error() string {
	msg := fmt.Sprintf("invalid multiaddr %q", e.String)
	if e.Protocol != "" {
		msg += " protocol " + e.Protocol
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StringParseError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrParse) 成立
func (e *StringParseError) Is(target error) bool { return target == ErrParse }

// BinaryParseError 二进制形式的多地址无法解析
type BinaryParseError struct {
	Message string

	// Binary 原始输入字节
	Binary []byte

	// Protocol 最后一个成功解析的协议名，或出错的协议名
	Protocol string

	Err error
}

func (e *BinaryParseError) Error() string {
	msg := "invalid binary multiaddr"
	if e.Protocol != "" {
		msg += " protocol " + e.Protocol
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s (binary: %x)", msg, e.Binary)
}

func (e *BinaryParseError) Unwrap() error { return e.Err }

func (e *BinaryParseError) Is(target error) bool { return target == ErrParse }

// ============================================================================
//                              查找与注册表错误
// ============================================================================

// ProtocolLookupError 地址不包含所请求的协议
type ProtocolLookupError struct {
	Protocol Protocol
	Addr     string
}

func (e *ProtocolLookupError) Error() string {
	return fmt.Sprintf("multiaddr %q does not contain protocol %s", e.Addr, e.Protocol.Name)
}

func (e *ProtocolLookupError) Is(target error) bool { return target == ErrProtocolLookup }

// ProtocolNotFoundError 注册表中没有匹配的名称或代码
type ProtocolNotFoundError struct {
	// Value 查找的名称（string）或代码（int）
	Value any

	// Kind "name" 或 "code"
	Kind string
}

func (e *ProtocolNotFoundError) Error() string {
	return fmt.Sprintf("no protocol with %s %v found", e.Kind, e.Value)
}

func (e *ProtocolNotFoundError) Is(target error) bool { return target == ErrProtocolNotFound }

// ProtocolExistsError 名称或代码已被其它协议占用
type ProtocolExistsError struct {
	// Protocol 已占用该名称/代码的协议
	Protocol Protocol

	// Kind 冲突字段："name" 或 "code"
	Kind string

	// Value 冲突的名称或代码
	Value any
}

func (e *ProtocolExistsError) Error() string {
	return fmt.Sprintf("protocol with %s %v already exists (registered as %s)", e.Kind, e.Value, e.Protocol.Name)
}

func (e *ProtocolExistsError) Is(target error) bool { return target == ErrProtocolExists }
