package multiaddr

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"
)

// fspathCodec 文件系统路径（unix）
//
// 路径协议：字符串中该协议之后的全部片段构成一个值。
// 存储的路径保留开头的 '/'。
type fspathCodec struct{}

func (fspathCodec) Size() int    { return LengthPrefixedVarSize }
func (fspathCodec) IsPath() bool { return true }

func (c fspathCodec) StringToBytes(p Protocol, s string) ([]byte, error) {
	path, err := url.PathUnescape(s)
	if err != nil {
		return nil, stringValueError(p, s, "invalid escape in path", err)
	}
	if strings.Trim(path, "/") == "" {
		return nil, stringValueError(p, s, "empty path", errEmptyValue)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return []byte(path), nil
}

func (c fspathCodec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid path", err)
	}

	segments := strings.Split(strings.TrimPrefix(string(b), "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segments, "/"), nil
}

func (fspathCodec) ValidateBytes(b []byte) error {
	if len(b) == 0 {
		return errEmptyValue
	}
	if !utf8.Valid(b) {
		return errors.New("invalid UTF-8")
	}
	return nil
}

// httpPathCodec HTTP 路径（http-path）
//
// 字符串为单个完整转义的片段，'/' 以 %2F 表示。
type httpPathCodec struct{}

func (httpPathCodec) Size() int    { return LengthPrefixedVarSize }
func (httpPathCodec) IsPath() bool { return false }

func (c httpPathCodec) StringToBytes(p Protocol, s string) ([]byte, error) {
	path, err := url.PathUnescape(s)
	if err != nil {
		return nil, stringValueError(p, s, "invalid percent-escape in path", err)
	}
	if path == "" {
		return nil, stringValueError(p, s, "empty http path is not allowed", errEmptyValue)
	}
	return []byte(path), nil
}

func (c httpPathCodec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid http path", err)
	}
	return url.PathEscape(string(b)), nil
}

func (httpPathCodec) ValidateBytes(b []byte) error {
	if len(b) == 0 {
		return errEmptyValue
	}
	if !utf8.Valid(b) {
		return errors.New("invalid UTF-8")
	}
	return nil
}
