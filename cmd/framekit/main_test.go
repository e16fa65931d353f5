package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeRecords(t *testing.T, out string) []frameRecord {
	t.Helper()
	var records []frameRecord
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var rec frameRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestProfilesCommand(t *testing.T) {
	out, _, err := execute(t, "", "profiles")
	require.NoError(t, err)
	for _, name := range []string{"standard", "sensor", "ipc", "bulk", "network"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "90 78")
	assert.Contains(t, out, "seq,sys,comp,len,pkg,msg,crc")
}

func TestEncodeCommand(t *testing.T) {
	out, _, err := execute(t, "", "encode", "--profile", "standard", "--msg-id", "1", "--payload", "AA BB")
	require.NoError(t, err)
	assert.Equal(t, "90710201AABB681A\n", out)
}

func TestEncodeCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown profile", []string{"encode", "--profile", "nope"}},
		{"bad hex", []string{"encode", "--payload", "zz"}},
		{"bad length flag", []string{"encode", "--profile", "sensor", "--length", "7"}},
		{"schema mismatch", []string{"encode", "--profile", "sensor", "--length", "7=3", "--msg-id", "7", "--payload", "01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	// Leading garbage, one frame, a corrupt copy, then the frame again
	input := "0102 90710201AABB681A 90710201AABB6800 90710201AABB681A"
	out, stderr, err := execute(t, input, "decode", "--profile", "standard", "--stats")
	require.NoError(t, err)

	records := decodeRecords(t, out)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, uint8(1), rec.MsgID)
		assert.Equal(t, "aabb", rec.Payload)
		assert.Equal(t, 8, rec.Size)
	}
	assert.Contains(t, stderr, "frames=2")
	assert.Contains(t, stderr, "checksum_failures=1")
}

func TestDecodeCommandRaw(t *testing.T) {
	raw := string([]byte{0x70, 0x07, 0x01, 0x02, 0x03, 0x70, 0x09, 0xFF})
	out, _, err := execute(t, raw, "decode", "--raw", "--profile", "sensor", "--length", "7=3", "--length", "0x09=1")
	require.NoError(t, err)

	records := decodeRecords(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, uint8(7), records[0].MsgID)
	assert.Equal(t, "010203", records[0].Payload)
	assert.Equal(t, uint8(9), records[1].MsgID)
	assert.Equal(t, "ff", records[1].Payload)
}

func TestEncodeDecodeNetwork(t *testing.T) {
	hexFrame, _, err := execute(t, "", "encode", "--profile", "network",
		"--seq", "5", "--sys", "1", "--comp", "2", "--pkg", "3", "--msg-id", "4", "--payload", "0x68656c6c6f")
	require.NoError(t, err)

	out, _, err := execute(t, "", "decode", "--profile", "network", strings.TrimSpace(hexFrame))
	require.NoError(t, err)

	records := decodeRecords(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, frameRecord{
		Sequence: 5, SystemID: 1, ComponentID: 2, PackageID: 3, MsgID: 4,
		Size: 16, Payload: "68656c6c6f",
	}, records[0])
}
