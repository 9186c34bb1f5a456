package cliinspectdump

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/stretchr/testify/require"
)

func writeDump(t *testing.T, path string, snapshot core.RelayerSnapshot) {
	t.Helper()

	bytes, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bytes, 0600))
}

func executeCommand(t *testing.T, args ...string) (string, string) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := GetInspectDumpCommand()
	cmd.Flags().Bool(common.JSONOutputFlag, false, "")
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	require.NoError(t, cmd.Execute())

	return out.String(), errOut.String()
}

func TestInspectDump(t *testing.T) {
	dir := t.TempDir()
	takenAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	writeDump(t, filepath.Join(dir, "logdata-RelayerImpl-0.json"), core.RelayerSnapshot{
		Pair: "alpha",
		Queues: map[core.Direction][]core.PendingEvent{
			core.DirectionSource: {{ChainEvent: core.ChainEvent{TxHash: "0x01"}}, {ChainEvent: core.ChainEvent{TxHash: "0x02"}}},
			core.DirectionTarget: {},
		},
		Completed: []string{"0x00:0"},
		Stats:     core.RelayerStats{Delivered: 1},
		TakenAt:   takenAt,
	})
	writeDump(t, filepath.Join(dir, "logdata-RelayerImpl-1.json"), core.RelayerSnapshot{Pair: "beta", TakenAt: takenAt})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logdata-RelayerImpl-2.json"), []byte("{"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.json"), []byte("{}"), 0600))

	t.Run("cli output", func(t *testing.T) {
		out, errOut := executeCommand(t, "--dir", dir)

		require.Empty(t, errOut)
		require.Contains(t, out, "[Relayer dumps]")
		require.Contains(t, out, "alpha")
		require.Contains(t, out, "beta")
		require.Contains(t, out, "logdata-RelayerImpl-2.json")
		require.Contains(t, out, "error: failed to decode")
		require.NotContains(t, out, "unrelated.json")
	})

	t.Run("json output", func(t *testing.T) {
		var (
			out, errOut bytes.Buffer
			result      CmdResult
		)

		cmd := GetInspectDumpCommand()
		cmd.Flags().Bool(common.JSONOutputFlag, false, "")
		cmd.SetArgs([]string{"--json", filepath.Join(dir, "logdata-RelayerImpl-0.json")})
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)

		require.NoError(t, cmd.Execute())
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Len(t, result.Dumps, 1)
		require.Equal(t, dumpSummary{
			File:      "logdata-RelayerImpl-0.json",
			Pair:      "alpha",
			Source:    2,
			Completed: 1,
			Delivered: 1,
			TakenAt:   takenAt,
		}, result.Dumps[0])
	})

	t.Run("empty directory", func(t *testing.T) {
		out, errOut := executeCommand(t, "--dir", t.TempDir())

		require.Empty(t, out)
		require.Contains(t, errOut, "no dump files found")
	})

	t.Run("missing arguments", func(t *testing.T) {
		cmd := GetInspectDumpCommand()
		cmd.SetArgs(nil)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		require.ErrorContains(t, cmd.Execute(), "specify --dir or at least one dump file")
	})
}
