package clirelayer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/bridge-relayer/common"
)

type CmdResult struct {
	Pairs   []string `json:"pairs"`
	DumpDir string   `json:"dumpDir"`
}

func (r CmdResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[Relayer stopped]\n")
	buffer.WriteString(common.FormatKV(
		[]string{
			fmt.Sprintf("Pairs|%s", strings.Join(r.Pairs, ", ")),
			fmt.Sprintf("Dump directory|%s", r.DumpDir),
		}))
	buffer.WriteString("\n")

	return buffer.String()
}
