package multiaddr

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// domainCodec 变长域名（dns/dns4/dns6/dnsaddr/sni）
//
// 按 UTS-46 校验，但以原始 UTF-8 存储。
type domainCodec struct {
	profile *idna.Profile
}

func newDomainCodec() domainCodec {
	return domainCodec{
		profile: idna.New(
			idna.MapForLookup(),
			idna.BidiRule(),
			idna.ValidateLabels(true),
			// 允许 _dnsaddr 这类下划线标签
			idna.StrictDomainName(false),
		),
	}
}

func (domainCodec) Size() int    { return LengthPrefixedVarSize }
func (domainCodec) IsPath() bool { return false }

func (c domainCodec) StringToBytes(p Protocol, s string) ([]byte, error) {
	if err := c.validate(s); err != nil {
		return nil, stringValueError(p, s, "invalid domain name", err)
	}
	return []byte(s), nil
}

func (c domainCodec) BytesToString(p Protocol, b []byte) (string, error) {
	if err := c.ValidateBytes(b); err != nil {
		return "", binaryValueError(p, b, "invalid domain name", err)
	}
	return string(b), nil
}

func (c domainCodec) ValidateBytes(b []byte) error {
	if !utf8.Valid(b) {
		return errors.New("invalid UTF-8")
	}
	return c.validate(string(b))
}

func (c domainCodec) validate(s string) error {
	if s == "" {
		return errEmptyValue
	}
	if strings.ContainsRune(s, '/') {
		return errors.New("domain name contains '/'")
	}
	if _, err := c.profile.ToASCII(s); err != nil {
		return err
	}
	return nil
}
