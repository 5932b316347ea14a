package persistence

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// LoadProfile reads a profile by name, merging leniently over the
// documented defaults: unknown fields are dropped with a warning,
// missing fields keep their default, and a field whose JSON type
// doesn't match falls back to its default with a warning rather than
// failing the whole load.
func LoadProfile(dir, name string) (model.Profile, error) {
	profile := model.DefaultProfile(name)

	path := ProfilePath(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Profile{}, classroomerrors.NewNotFound("profile not found: " + name)
		}
		return model.Profile{}, classroomerrors.NewFileError("read profile", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Profile{}, classroomerrors.NewFileError("parse profile", path, err)
	}

	known := map[string]bool{
		"name": true, "git_connection": true, "lms_connection": true,
		"repo_name_template": true, "directory_layout": true,
		"git_identity_mode": true, "target_dir": true,
	}
	for key := range raw {
		if !known[key] {
			slog.Warn("dropping unknown profile field", "profile", name, "field", key)
		}
	}

	assignField(raw, "name", &profile.Name, name, "profile")
	assignField(raw, "git_connection", &profile.GitConnection, name, "profile")
	assignField(raw, "lms_connection", &profile.LmsConnection, name, "profile")
	assignField(raw, "repo_name_template", &profile.RepoNameTemplate, name, "profile")
	assignField(raw, "directory_layout", &profile.DirectoryLayout, name, "profile")
	assignField(raw, "git_identity_mode", &profile.GitIdentityMode, name, "profile")
	assignField(raw, "target_dir", &profile.TargetDir, name, "profile")

	return profile, nil
}

// LoadRoster reads the roster paired with the named profile. Unlike
// LoadProfile, a roster has no sensible default, so a missing or
// malformed file is an error rather than a lenient merge.
func LoadRoster(dir, name string) (model.Roster, error) {
	path := RosterPath(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Roster{}, classroomerrors.NewNotFound("roster not found: " + name)
		}
		return model.Roster{}, classroomerrors.NewFileError("read roster", path, err)
	}

	var r model.Roster
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Roster{}, classroomerrors.NewFileError("parse roster", path, err)
	}
	return r, nil
}

// assignField unmarshals raw[key] into dest if present and well-typed,
// leaving dest (already holding its default) untouched otherwise. A
// type mismatch is logged rather than propagated.
func assignField[T any](raw map[string]json.RawMessage, key string, dest *T, profileName, kind string) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		slog.Warn("ignoring mistyped field, using default", kind, profileName, "field", key, "error", err)
		return
	}
	*dest = v
}
