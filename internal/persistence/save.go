package persistence

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/pkg/constants"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// ProfilePath and RosterPath return the on-disk location of a named
// profile's two files inside dir: profiles/<name>.json and
// rosters/<name>.json respectively.
func ProfilePath(dir, name string) string {
	return filepath.Join(dir, "profiles", name+".json")
}

func RosterPath(dir, name string) string {
	return filepath.Join(dir, "rosters", name+".json")
}

// ActiveProfilePath returns the location of the marker file recording
// which profile name is active when none is given explicitly.
func ActiveProfilePath(dir string) string {
	return filepath.Join(dir, "active-profile.txt")
}

// ReadActiveProfile returns the profile name recorded at
// ActiveProfilePath, or "" if no marker file exists yet.
func ReadActiveProfile(dir string) (string, error) {
	data, err := os.ReadFile(ActiveProfilePath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", classroomerrors.NewFileError("read active profile marker", ActiveProfilePath(dir), err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteActiveProfile records name as the active profile, overwriting
// any previous marker. This is a single-file write, not part of the
// profile+roster atomic swap: the marker is a convenience pointer, not
// data that must stay in lockstep with either file.
func WriteActiveProfile(dir, name string) error {
	path := ActiveProfilePath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return classroomerrors.NewFileError("create config directory", filepath.Dir(path), err)
	}
	tempPath := path + constants.ProfileTempExt
	if err := os.WriteFile(tempPath, []byte(name+"\n"), 0o644); err != nil {
		return classroomerrors.NewFileError("write active profile marker", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return classroomerrors.NewFileError("commit active profile marker", path, err)
	}
	return nil
}

// SaveProfileAndRoster commits a profile and its roster as a single
// atomic unit: either both files end up holding the new content, or
// neither does. Existing files are backed up before the swap and the
// backups are restored on any failure partway through; on success the
// backups are deleted.
//
// The sequence: write both temp files (bailing out before touching any
// real file if either write fails), back up whichever targets already
// exist (rolling back completed backups if a later one fails), rename
// both temps onto their targets (rolling back file-by-file on any
// rename failure), then best-effort delete the backups.
func SaveProfileAndRoster(dir string, profile model.Profile, r model.Roster) error {
	profilePath := ProfilePath(dir, profile.Name)
	rosterPath := RosterPath(dir, profile.Name)

	profileTemp, err := writeTempJSON(profilePath, profile)
	if err != nil {
		return err
	}

	rosterTemp, err := writeTempJSON(rosterPath, r)
	if err != nil {
		cleanupTemp(profileTemp)
		return err
	}

	profileBacked, err := backupExisting(profilePath)
	if err != nil {
		cleanupTemp(profileTemp)
		cleanupTemp(rosterTemp)
		return err
	}

	rosterBacked, err := backupExisting(rosterPath)
	if err != nil {
		cleanupTemp(profileTemp)
		cleanupTemp(rosterTemp)
		restoreBackup(profilePath, profileBacked)
		return err
	}

	if err := os.Rename(profileTemp, profilePath); err != nil {
		cleanupTemp(profileTemp)
		cleanupTemp(rosterTemp)
		restoreBackup(profilePath, profileBacked)
		restoreBackup(rosterPath, rosterBacked)
		return classroomerrors.NewFileError("commit profile", profilePath, err)
	}

	if err := os.Rename(rosterTemp, rosterPath); err != nil {
		cleanupTemp(rosterTemp)
		restoreBackup(profilePath, profileBacked)
		restoreBackup(rosterPath, rosterBacked)
		return classroomerrors.NewFileError("commit roster", rosterPath, err)
	}

	if profileBacked {
		removeBackup(profilePath)
	}
	if rosterBacked {
		removeBackup(rosterPath)
	}

	return nil
}
