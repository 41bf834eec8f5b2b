package multiaddr

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// cidCodec 节点标识（p2p/ipfs）
//
// 字符串接受 base58 CIDv0 多重哈希，或 multibase 编码的 libp2p-key CIDv1。
// 二进制形式统一存储为多重哈希。可表示为 CIDv0 时优先输出 base58，
// 否则输出 base32 CIDv1。
type cidCodec struct{}

func (cidCodec) Size() int    { return LengthPrefixedVarSize }
func (cidCodec) IsPath() bool { return false }

func (cidCodec) StringToBytes(p Protocol, s string) ([]byte, error) {
	if s == "" {
		return nil, stringValueError(p, s, "empty peer ID", errEmptyValue)
	}

	if raw, err := base58.Decode(s); err == nil && isCIDv0Multihash(raw) {
		return raw, nil
	}

	c, err := cid.Decode(s)
	if err != nil {
		return nil, stringValueError(p, s, "invalid CID", err)
	}
	if c.Version() != 0 && c.Type() != cid.Libp2pKey {
		return nil, stringValueError(p, s,
			fmt.Sprintf("%q multiaddr CIDs must use the libp2p-key multicodec", p.Name), nil)
	}
	return []byte(c.Hash()), nil
}

func (cidCodec) BytesToString(p Protocol, b []byte) (string, error) {
	if len(b) == 0 {
		return "", binaryValueError(p, b, "empty peer ID", errEmptyValue)
	}

	if isCIDv0Multihash(b) {
		return base58.Encode(b), nil
	}

	// 外部来源可能直接写入 CID 字节
	if c, err := cid.Cast(b); err == nil {
		if c.Version() != 0 && c.Type() != cid.Libp2pKey {
			return "", binaryValueError(p, b,
				fmt.Sprintf("%q multiaddr CIDs must use the libp2p-key multicodec", p.Name), nil)
		}
		mh := []byte(c.Hash())
		if isCIDv0Multihash(mh) {
			return base58.Encode(mh), nil
		}
		s, err := c.StringOfBase(multibase.Base32)
		if err != nil {
			return "", binaryValueError(p, b, "cannot encode CID", err)
		}
		return s, nil
	}

	mh, err := multihash.Cast(b)
	if err != nil {
		return "", binaryValueError(p, b, "invalid multihash", err)
	}
	s, err := cid.NewCidV1(cid.Libp2pKey, mh).StringOfBase(multibase.Base32)
	if err != nil {
		return "", binaryValueError(p, b, "cannot encode CID", err)
	}
	return s, nil
}

func (c cidCodec) ValidateBytes(b []byte) error {
	if len(b) == 0 {
		return errEmptyValue
	}
	if isCIDv0Multihash(b) {
		return nil
	}
	_, err := c.BytesToString(Protocol{Name: "p2p"}, b)
	return err
}

// isCIDv0Multihash 判断字节是否为可用 base58 表示的多重哈希
// （sha2-256 或 identity，且长度字段与实际长度一致）
func isCIDv0Multihash(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	if b[0] != multihash.SHA2_256 && b[0] != multihash.IDENTITY {
		return false
	}
	return len(b) == int(b[1])+2
}
