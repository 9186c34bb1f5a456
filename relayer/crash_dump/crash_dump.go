package crashdump

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime/debug"

	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/hashicorp/go-hclog"
)

const dumpFilePerm = 0660

// FileName returns the dump file name of the instance at ordinal i
func FileName(instance core.Relayer, i int) string {
	typeName := "nil"
	if instance != nil {
		typeName = reflect.Indirect(reflect.ValueOf(instance)).Type().Name()
	}

	return fmt.Sprintf("logdata-%s-%d.json", typeName, i)
}

// DumpToFiles writes a snapshot of every instance into dir. Every instance is attempted,
// the result is false if any of them could not be written.
func DumpToFiles(dir string, instances []core.Relayer, logger hclog.Logger) bool {
	if err := common.CreateDirectoryIfNotExists(dir, 0770); err != nil {
		logger.Error("Failed to create dump directory", "dir", dir, "err", err)

		return false
	}

	success := true

	for i, instance := range instances {
		path := filepath.Join(dir, FileName(instance, i))

		if err := dumpInstance(path, instance); err != nil {
			logger.Error("Failed to dump relayer state", "path", path, "err", err)

			success = false

			continue
		}

		logger.Info("Relayer state dumped", "path", path)
	}

	return success
}

func LoadDumpFile(path string) (*core.RelayerSnapshot, error) {
	return common.LoadJSON[core.RelayerSnapshot](path)
}

func dumpInstance(path string, instance core.Relayer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while dumping: %v\n%s", r, string(debug.Stack()))
		}
	}()

	if instance == nil {
		return fmt.Errorf("relayer instance is nil")
	}

	snapshot := instance.Snapshot()

	bytes, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	return common.WriteFileAtomic(path, bytes, dumpFilePerm)
}
