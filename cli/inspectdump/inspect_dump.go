package cliinspectdump

import (
	"path/filepath"

	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	crashdump "github.com/Ethernal-Tech/bridge-relayer/relayer/crash_dump"
	"github.com/spf13/cobra"
)

func GetInspectDumpCommand() *cobra.Command {
	params := &inspectDumpParams{}

	inspectDumpCmd := &cobra.Command{
		Use:   "inspect-dump [files...]",
		Short: "prints a summary of relayer crash dump files",
		PreRunE: func(_ *cobra.Command, args []string) error {
			return params.validateFlags(args)
		},
		Run: func(cmd *cobra.Command, args []string) {
			runCommand(cmd, args, params)
		},
	}

	params.setFlags(inspectDumpCmd)

	return inspectDumpCmd
}

func runCommand(cmd *cobra.Command, args []string, params *inspectDumpParams) {
	outputter := common.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	files, err := params.dumpFiles(args)
	if err != nil {
		outputter.SetError(err)

		return
	}

	result := &CmdResult{Dumps: make([]dumpSummary, 0, len(files))}

	for _, file := range files {
		snapshot, err := crashdump.LoadDumpFile(file)
		if err != nil {
			result.Dumps = append(result.Dumps, dumpSummary{File: filepath.Base(file), Err: err.Error()})

			continue
		}

		result.Dumps = append(result.Dumps, newDumpSummary(filepath.Base(file), snapshot))
	}

	outputter.SetCommandResult(result)
}

func newDumpSummary(file string, snapshot *core.RelayerSnapshot) dumpSummary {
	return dumpSummary{
		File:      file,
		Pair:      snapshot.Pair,
		Source:    len(snapshot.Queues[core.DirectionSource]),
		Target:    len(snapshot.Queues[core.DirectionTarget]),
		Tracking:  len(snapshot.Tracking),
		Completed: len(snapshot.Completed),
		Failed:    len(snapshot.Failed),
		Delivered: snapshot.Stats.Delivered,
		TakenAt:   snapshot.TakenAt,
	}
}
