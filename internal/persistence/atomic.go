package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/edu-tools/classroom-repos/pkg/constants"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// writeTempJSON marshals v as indented JSON into a ".tmp" sibling of
// path, fsyncing before close so the bytes are durable before any
// rename is attempted. The parent directory is created if missing.
func writeTempJSON(path string, v any) (tempPath string, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", classroomerrors.NewFileError("create parent directory", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", classroomerrors.NewOther("marshal "+path, err)
	}

	tempPath = path + constants.ProfileTempExt
	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", classroomerrors.NewFileError("open temp file", tempPath, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", classroomerrors.NewFileError("write temp file", tempPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", classroomerrors.NewFileError("sync temp file", tempPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", classroomerrors.NewFileError("close temp file", tempPath, err)
	}

	return tempPath, nil
}

// backupExisting renames path to path+".bak" if path exists, returning
// whether a backup was taken. A missing path is not an error.
func backupExisting(path string) (backed bool, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		if os.IsNotExist(statErr) {
			return false, nil
		}
		return false, classroomerrors.NewFileError("stat existing file", path, statErr)
	}
	if err := os.Rename(path, path+constants.ProfileBakExt); err != nil {
		return false, classroomerrors.NewFileError("backup existing file", path, err)
	}
	return true, nil
}

// cleanupTemp best-effort removes a temp file left over from a failed
// write or an aborted swap.
func cleanupTemp(tempPath string) {
	if tempPath == "" {
		return
	}
	os.Remove(tempPath)
}

// restoreBackup undoes backupExisting: if a backup was taken, it is
// renamed back onto path; otherwise path (now possibly holding a
// partially renamed-in temp) is removed so the swap leaves no trace.
func restoreBackup(path string, backed bool) {
	if backed {
		os.Rename(path+constants.ProfileBakExt, path)
		return
	}
	os.Remove(path)
}

// removeBackup best-effort deletes path+".bak" after a swap has fully
// committed.
func removeBackup(path string) {
	os.Remove(path + constants.ProfileBakExt)
}
