package cliinspectdump

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/common"
)

type dumpSummary struct {
	File      string    `json:"file"`
	Pair      string    `json:"pair"`
	Source    int       `json:"source"`
	Target    int       `json:"target"`
	Tracking  int       `json:"tracking"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	Delivered uint64    `json:"delivered"`
	TakenAt   time.Time `json:"takenAt"`
	Err       string    `json:"err,omitempty"`
}

type CmdResult struct {
	Dumps []dumpSummary `json:"dumps"`
}

func (r CmdResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := make([]string, 0, len(r.Dumps)+1)
	rows = append(rows, "File|Pair|Source|Target|Tracking|Completed|Failed|Delivered|Taken At")

	for _, dump := range r.Dumps {
		if dump.Err != "" {
			rows = append(rows, fmt.Sprintf("%s|error: %s|||||||", dump.File, dump.Err))

			continue
		}

		rows = append(rows, fmt.Sprintf("%s|%s|%d|%d|%d|%d|%d|%d|%s",
			dump.File, dump.Pair, dump.Source, dump.Target, dump.Tracking,
			dump.Completed, dump.Failed, dump.Delivered, dump.TakenAt.Format(time.RFC3339)))
	}

	buffer.WriteString("\n[Relayer dumps]\n")
	buffer.WriteString(common.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
