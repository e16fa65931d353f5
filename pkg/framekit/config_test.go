package framekit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, "standard", cfg.Profile.Name)
	require.Equal(t, "tcp", cfg.Transport.Network)
	require.Equal(t, 5*time.Second, cfg.Transport.DialTimeout)
	require.Equal(t, "json", cfg.Transport.Codec)
	require.Equal(t, "/metrics", cfg.Metrics.Path)

	p, err := cfg.Profile.BuildProfile()
	require.NoError(t, err)
	require.Same(t, Standard, p)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
profile:
  name: sensor
messages:
  - id: 7
    name: heartbeat
    length: 3
  - id: 8
    name: reading
    length: 12
transport:
  network: unix
  address: /tmp/framekit-test.sock
  dial_timeout: 2
  codec: msgpack
logging:
  level: debug
  format: text
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.Transport.DialTimeout)
	require.Equal(t, "unix", cfg.Transport.Network)
	require.Len(t, cfg.Messages, 2)

	reg, err := cfg.BuildRegistry()
	require.NoError(t, err)
	n, ok := reg.Length(8)
	require.True(t, ok)
	require.Equal(t, 12, n)

	opts, err := cfg.ConnOptions(NopLogger(), nil)
	require.NoError(t, err)
	require.Same(t, Sensor, opts.Profile)
	require.Equal(t, "msgpack", opts.Codec.Name())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestCustomProfileConfig(t *testing.T) {
	pc := ProfileConfig{
		Name:        "radio",
		Custom:      true,
		StartBytes:  []int{0xFE},
		LengthWidth: 1,
		Sequence:    true,
		Checksum:    true,
	}
	p, err := pc.BuildProfile()
	require.NoError(t, err)
	require.Equal(t, []byte{0xFE}, p.StartBytes())
	require.Equal(t, 4, p.HeaderSize())
	require.Equal(t, 2, p.FooterSize())

	pc.StartBytes = []int{0x100}
	_, err = pc.BuildProfile()
	require.Error(t, err)

	pc.StartBytes = []int{1, 2, 3}
	_, err = pc.BuildProfile()
	require.ErrorIs(t, err, ErrInvalidProfile)

	_, err = ProfileConfig{Name: "nope"}.BuildProfile()
	require.Error(t, err)
}

func TestConfigRejectsBadMessages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Messages = []MessageSpec{{ID: 1, Length: 1}, {ID: 1, Length: 2}}
	_, err := cfg.BuildRegistry()
	require.Error(t, err)

	cfg.Messages = nil
	cfg.Transport.Codec = "xml"
	_, err = cfg.ConnOptions(nil, nil)
	require.Error(t, err)
}
