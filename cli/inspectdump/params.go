package cliinspectdump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

const (
	dirFlag = "dir"

	dirFlagDesc = "directory holding logdata-*.json dump files"

	dumpFilePattern = "logdata-*.json"
)

type inspectDumpParams struct {
	dir string
}

func (ip *inspectDumpParams) validateFlags(args []string) error {
	if ip.dir == "" && len(args) == 0 {
		return fmt.Errorf("specify --%s or at least one dump file", dirFlag)
	}

	if ip.dir != "" {
		info, err := os.Stat(ip.dir)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", dirFlag, err)
		}

		if !info.IsDir() {
			return fmt.Errorf("invalid --%s: %s is not a directory", dirFlag, ip.dir)
		}
	}

	return nil
}

func (ip *inspectDumpParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&ip.dir,
		dirFlag,
		"",
		dirFlagDesc,
	)
}

// dumpFiles returns explicitly passed files followed by the dump files found in dir
func (ip *inspectDumpParams) dumpFiles(args []string) ([]string, error) {
	files := append([]string(nil), args...)

	if ip.dir != "" {
		matches, err := filepath.Glob(filepath.Join(ip.dir, dumpFilePattern))
		if err != nil {
			return nil, err
		}

		sort.Strings(matches)

		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, errors.New("no dump files found")
	}

	return files, nil
}
