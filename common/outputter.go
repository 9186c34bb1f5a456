package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
)

const JSONOutputFlag = "json"

type ICommandResult interface {
	GetOutput() string
}

type OutputFormatter interface {
	SetError(err error)
	SetCommandResult(result ICommandResult)
	WriteOutput()
}

func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	if jsonOutput, err := cmd.Flags().GetBool(JSONOutputFlag); err == nil && jsonOutput {
		return &jsonOutputter{commonOutputter: commonOutputter{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}}
	}

	return &cliOutputter{commonOutputter: commonOutputter{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}}
}

type commonOutputter struct {
	errorOutput   error
	commandOutput ICommandResult
	out           io.Writer
	errOut        io.Writer
}

func (c *commonOutputter) SetError(err error) {
	c.errorOutput = err
}

func (c *commonOutputter) SetCommandResult(result ICommandResult) {
	c.commandOutput = result
}

type cliOutputter struct {
	commonOutputter
}

func (c *cliOutputter) WriteOutput() {
	if c.errorOutput != nil {
		_, _ = fmt.Fprintln(c.errOut, c.errorOutput.Error())

		return
	}

	if c.commandOutput != nil {
		_, _ = fmt.Fprintln(c.out, c.commandOutput.GetOutput())
	}
}

type jsonOutputter struct {
	commonOutputter
}

func (j *jsonOutputter) WriteOutput() {
	if j.errorOutput != nil {
		_, _ = fmt.Fprintln(j.errOut, j.errorOutput.Error())

		return
	}

	if j.commandOutput == nil {
		return
	}

	bytes, err := json.MarshalIndent(j.commandOutput, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())

		return
	}

	_, _ = fmt.Fprintln(j.out, string(bytes))
}

// FormatKV formats "key|value" rows as aligned "key = value" lines
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}

// FormatList formats "a|b|c" rows as aligned columns
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}
