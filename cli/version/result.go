package cliversion

import (
	"bytes"
	"fmt"

	"github.com/Ethernal-Tech/bridge-relayer/common"
)

type versionCmdResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"buildTime"`
}

func (r versionCmdResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[Version]\n")
	buffer.WriteString(common.FormatKV(
		[]string{
			fmt.Sprintf("Version|%s", r.Version),
			fmt.Sprintf("Commit|%s", r.Commit),
			fmt.Sprintf("Branch|%s", r.Branch),
			fmt.Sprintf("Build time|%s", r.BuildTime),
		}))
	buffer.WriteString("\n")

	return buffer.String()
}
