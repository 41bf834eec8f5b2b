package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/dep2p/go-multiaddr/pkg/lib/multiaddr"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, BackendSystem, cfg.Resolver.Backend)
	assert.Equal(t, 32, cfg.Resolver.MaxDepth)
	assert.Equal(t, 5*time.Second, cfg.Resolver.Timeout.Duration())
	assert.Equal(t, 5*time.Minute, cfg.Resolver.CacheTTL.Duration())

	assert.Error(t, ValidateAll(nil))
}

// TestConfig_ValidateAggregates 所有问题汇总到同一个错误
func TestConfig_ValidateAggregates(t *testing.T) {
	cfg := NewConfig()
	cfg.Resolver.Backend = "carrier-pigeon"
	cfg.Resolver.MaxDepth = 0
	cfg.Resolver.Server = "no-port"
	cfg.Protocols = []ProtocolConfig{{Code: 0x300000, Name: "bad/name", Codec: multiaddr.CodecUTF8}}
	cfg.Aliases = []AliasConfig{{Protocol: "tcp"}}
	cfg.Log.Level = "madns=loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 6)
}

// TestResolverConfig 测试解析配置
func TestResolverConfig(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		assert.NoError(t, DefaultResolverConfig().Validate())
	})

	t.Run("WithServer", func(t *testing.T) {
		cfg := DefaultResolverConfig().WithServer("1.1.1.1:53").WithMaxDepth(4)
		assert.Equal(t, "1.1.1.1:53", cfg.Server)
		assert.Equal(t, 4, cfg.MaxDepth)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Negative", func(t *testing.T) {
		cfg := DefaultResolverConfig()
		cfg.Timeout = Duration(-time.Second)
		cfg.CacheSize = -1
		cfg.CacheTTL = Duration(-time.Second)
		assert.Len(t, multierr.Errors(cfg.Validate()), 3)
	})
}

// TestFromJSON 未出现的字段保留默认值
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"resolver": {"backend": "client", "server": "127.0.0.1:5353", "timeout": "2s", "max_depth": 8},
		"protocols": [{"code": 3145728, "name": "shard", "codec": "utf8"}],
		"log": {"level": "madns=debug,warn"}
	}`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendClient, cfg.Resolver.Backend)
	assert.Equal(t, 2*time.Second, cfg.Resolver.Timeout.Duration())
	assert.Equal(t, 8, cfg.Resolver.MaxDepth)
	assert.Equal(t, 512, cfg.Resolver.CacheSize)
	require.Len(t, cfg.Protocols, 1)
	assert.Equal(t, "shard", cfg.Protocols[0].Name)

	_, err = FromJSON([]byte(`{"resolver": {"timeout": true}}`))
	assert.Error(t, err)
}

// TestLoad 测试从文件加载
func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"resolver": {"max_depth": 3}}`), 0o600))
	cfg, err = Load(good)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Resolver.MaxDepth)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"resolver": {"max_depth": -1}}`), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestBuildRegistry 按配置扩展注册表
func TestBuildRegistry(t *testing.T) {
	cfg := NewConfig()
	reg, err := cfg.BuildRegistry()
	require.NoError(t, err)
	assert.Same(t, multiaddr.DefaultRegistry(), reg)

	cfg.Protocols = []ProtocolConfig{
		{Code: 0x300000, Name: "shard", Codec: multiaddr.CodecUTF8},
		{Code: 0x300001, Name: "beacon"},
	}
	cfg.Aliases = []AliasConfig{
		{Protocol: "shard", Name: "sh"},
		{Protocol: "tcp", Code: 0x300002},
	}
	reg, err = cfg.BuildRegistry()
	require.NoError(t, err)

	m, err := multiaddr.NewMultiaddrWithRegistry(reg, "/ip4/1.2.3.4/sh/eu/beacon")
	require.NoError(t, err)
	assert.Equal(t, "/ip4/1.2.3.4/shard/eu/beacon", m.String())

	p, err := reg.FindByCode(0x300002)
	require.NoError(t, err)
	assert.Equal(t, "tcp", p.Name)

	// 默认注册表不受影响
	_, err = multiaddr.ProtocolWithName("shard")
	assert.ErrorIs(t, err, multiaddr.ErrProtocolNotFound)
}

// TestBuildRegistry_Conflicts 冲突全部汇总返回
func TestBuildRegistry_Conflicts(t *testing.T) {
	cfg := NewConfig()
	cfg.Protocols = []ProtocolConfig{
		{Code: multiaddr.P_TCP, Name: "tcp2"},
		{Code: 0x300000, Name: "udp"},
	}
	cfg.Aliases = []AliasConfig{
		{Protocol: "missing", Name: "m"},
		{Protocol: "missing", Code: 0x300009},
	}

	_, err := cfg.BuildRegistry()
	require.Error(t, err)
	assert.ErrorIs(t, err, multiaddr.ErrProtocolExists)
	assert.ErrorIs(t, err, multiaddr.ErrProtocolNotFound)
	assert.Len(t, multierr.Errors(err), 4)
}

// TestLogConfig 测试日志配置
func TestLogConfig(t *testing.T) {
	assert.NoError(t, LogConfig{}.Validate())
	assert.NoError(t, LogConfig{Level: "madns=debug, warn"}.Validate())
	assert.Error(t, LogConfig{Level: "verbose"}.Validate())

	assert.NoError(t, LogConfig{}.Apply())
	assert.NoError(t, LogConfig{Level: "config-test=info"}.Apply())
	assert.Error(t, LogConfig{Level: "=info"}.Apply())
}

// TestDurations 测试时间配置的 JSON 形式
func TestDurations(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`1000000`), &d))
	assert.Equal(t, time.Millisecond, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &d))

	data, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(data))
	assert.Equal(t, "2s", Duration(2*time.Second).String())
}

// TestCloneConfig 克隆后修改互不影响
func TestCloneConfig(t *testing.T) {
	assert.Nil(t, CloneConfig(nil))

	cfg := NewConfig()
	cfg.Protocols = []ProtocolConfig{{Code: 0x300000, Name: "shard"}}
	cloned := CloneConfig(cfg)
	cloned.Protocols[0].Name = "other"
	cloned.Resolver.MaxDepth = 1

	assert.Equal(t, "shard", cfg.Protocols[0].Name)
	assert.Equal(t, 32, cfg.Resolver.MaxDepth)

	data, err := cfg.ToJSON()
	require.NoError(t, err)
	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
