package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dep2p/go-multiaddr/internal/util/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPeer = "QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N"

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Parse(t *testing.T) {
	code, out, _ := runCLI(t, "parse", "/ip4/127.0.0.1/tcp/4001")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "/ip4/127.0.0.1/tcp/4001\n")
	assert.Contains(t, out, "hex: 047f000001060fa1")
	assert.Contains(t, out, "class: loopback")
	assert.Contains(t, out, "ip4 (0x4): 127.0.0.1")
	assert.Contains(t, out, "tcp (0x6): 4001")
}

func TestRun_ParseInvalid(t *testing.T) {
	code, out, errOut := runCLI(t, "parse", "/ip4/999.0.0.1")
	assert.Equal(t, exitUsage, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "错误:")

	code, _, _ = runCLI(t, "parse", "/nope/1")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Decode(t *testing.T) {
	code, out, _ := runCLI(t, "decode", "0x047f000001060fa1")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "/ip4/127.0.0.1/tcp/4001\n", out)

	code, _, _ = runCLI(t, "decode", "zz")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "decode", "04")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Split(t *testing.T) {
	code, out, _ := runCLI(t, "split", "/ip4/1.2.3.4/udp/53/quic-v1")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "/ip4/1.2.3.4\n/udp/53\n/quic-v1\n", out)
}

func TestRun_Peer(t *testing.T) {
	code, out, _ := runCLI(t, "peer", "/ip4/1.2.3.4/tcp/1/p2p/"+testPeer)
	require.Equal(t, exitOK, code)
	assert.Equal(t, testPeer+"\n", out)

	code, _, _ = runCLI(t, "peer", "/ip4/1.2.3.4/tcp/1")
	assert.Equal(t, exitFailure, code)
}

func TestRun_ResolvePassthrough(t *testing.T) {
	code, out, _ := runCLI(t, "-depth", "2", "resolve", "/ip4/1.2.3.4/tcp/1")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "/ip4/1.2.3.4/tcp/1\n", out)
}

func TestRun_Protocols(t *testing.T) {
	code, out, _ := runCLI(t, "protocols")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "ip4")
	assert.Contains(t, out, "dnsaddr")
}

func TestRun_Usage(t *testing.T) {
	code, _, _ := runCLI(t)
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "frobnicate")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "parse")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "-bogus")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
}

func TestRun_ConfigProtocols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maddr.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"protocols": [{"code": 3145728, "name": "shard", "codec": "utf8"}],
		"aliases": [{"protocol": "shard", "name": "sh"}]
	}`), 0o600))

	code, out, _ := runCLI(t, "-config", path, "parse", "/ip4/1.2.3.4/sh/eu")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "/ip4/1.2.3.4/shard/eu\n")

	code, _, _ = runCLI(t, "-config", filepath.Join(t.TempDir(), "missing.json"), "protocols")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Metrics(t *testing.T) {
	code, out, errOut := runCLI(t, "-metrics", "resolve", "/ip4/1.2.3.4/tcp/1")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "/ip4/1.2.3.4/tcp/1\n", out)
	assert.NotContains(t, errOut, "错误")
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "maddr_test_total", Help: "test counter"})
	reg.MustRegister(c)
	c.Add(3)

	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, reg))
	assert.Contains(t, buf.String(), "# TYPE maddr_test_total counter")
	assert.Contains(t, buf.String(), "maddr_test_total 3")
}

func TestRun_LogsToStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maddr.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log": {"level": "cli=debug"}}`), 0o600))
	t.Cleanup(func() { logger.SetLevel("cli", slog.LevelInfo) })

	code, out, errOut := runCLI(t, "-config", path, "split", "/ip4/1.2.3.4/tcp/1")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "/ip4/1.2.3.4\n/tcp/1\n", out)
	assert.Contains(t, errOut, "执行命令")
	assert.Contains(t, errOut, "subsystem=cli")
}

func TestRun_Quiet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maddr.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log": {"level": "cli=debug"}}`), 0o600))
	t.Cleanup(func() { logger.SetLevel("cli", slog.LevelInfo) })

	code, out, errOut := runCLI(t, "-quiet", "-config", path, "split", "/ip4/1.2.3.4")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "/ip4/1.2.3.4\n", out)
	assert.Empty(t, errOut)

	code, _, errOut = runCLI(t, "-quiet", "parse", "/ip4/999.0.0.1")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "错误:")
}
