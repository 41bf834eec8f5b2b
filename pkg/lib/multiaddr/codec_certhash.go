package multiaddr

import (
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// certhashCodec 证书哈希：multibase 编码的多重哈希，输出统一为 base64url
type certhashCodec struct{}

func (certhashCodec) Size() int    { return LengthPrefixedVarSize }
func (certhashCodec) IsPath() bool { return false }

func (c certhashCodec) StringToBytes(p Protocol, s string) ([]byte, error) {
	_, b, err := multibase.Decode(s)
	if err != nil {
		return nil, stringValueError(p, s, "failed to decode multibase string", err)
	}
	if err := c.ValidateBytes(b); err != nil {
		return nil, stringValueError(p, s, "invalid certhash", err)
	}
	return b, nil
}

func (c certhashCodec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid certhash", err)
	}
	s, err := multibase.Encode(multibase.Base64url, b)
	if err != nil {
		return "", binaryValueError(p, b, "failed to encode certhash", err)
	}
	return s, nil
}

func (certhashCodec) ValidateBytes(b []byte) error {
	_, err := multihash.Decode(b)
	return err
}
