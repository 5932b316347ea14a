package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
)

func testRoster() model.Roster {
	return model.Roster{
		Students: []model.Member{{ID: "m1", Name: "Alice", Email: "alice@example.com", Status: model.StatusActive, EnrollmentType: model.EnrollmentStudent}},
	}
}

func TestSaveProfileAndRosterWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	profile := model.DefaultProfile("course1")
	r := testRoster()

	if err := SaveProfileAndRoster(dir, profile, r); err != nil {
		t.Fatalf("SaveProfileAndRoster: %v", err)
	}

	loadedProfile, err := LoadProfile(dir, "course1")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if loadedProfile.RepoNameTemplate != "{assignment}-{group}" {
		t.Errorf("RepoNameTemplate = %q, want default", loadedProfile.RepoNameTemplate)
	}

	loadedRoster, err := LoadRoster(dir, "course1")
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(loadedRoster.Students) != 1 || loadedRoster.Students[0].Name != "Alice" {
		t.Errorf("loaded roster students = %+v", loadedRoster.Students)
	}

	if _, err := os.Stat(ProfilePath(dir, "course1") + ".bak"); !os.IsNotExist(err) {
		t.Error("expected no leftover profile backup after a clean first save")
	}
}

func TestSaveProfileAndRosterOverwritesAndCleansBackups(t *testing.T) {
	dir := t.TempDir()
	profile := model.DefaultProfile("course1")
	r := testRoster()

	if err := SaveProfileAndRoster(dir, profile, r); err != nil {
		t.Fatalf("first save: %v", err)
	}

	profile.TargetDir = "/tmp/repos"
	r.Students = append(r.Students, model.Member{ID: "m2", Name: "Bob", Email: "bob@example.com", Status: model.StatusActive, EnrollmentType: model.EnrollmentStudent})

	if err := SaveProfileAndRoster(dir, profile, r); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := LoadProfile(dir, "course1")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if loaded.TargetDir != "/tmp/repos" {
		t.Errorf("TargetDir = %q, want /tmp/repos", loaded.TargetDir)
	}

	for _, p := range []string{ProfilePath(dir, "course1") + ".bak", RosterPath(dir, "course1") + ".bak"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to be cleaned up, stat err = %v", p, err)
		}
	}
	for _, p := range []string{ProfilePath(dir, "course1") + ".tmp", RosterPath(dir, "course1") + ".tmp"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected no leftover temp file %s", p)
		}
	}
}

func TestSaveProfileAndRosterRollsBackOnRenameFailure(t *testing.T) {
	dir := t.TempDir()
	profile := model.DefaultProfile("course1")
	r := testRoster()

	if err := SaveProfileAndRoster(dir, profile, r); err != nil {
		t.Fatalf("first save: %v", err)
	}

	originalRoster, err := os.ReadFile(RosterPath(dir, "course1"))
	if err != nil {
		t.Fatalf("read original roster: %v", err)
	}

	// Block the roster's backup rename by putting a directory at its
	// ".bak" path: os.Rename of the roster file onto an existing
	// directory fails after the profile has already been backed up.
	rosterPath := RosterPath(dir, "course1")
	if err := os.Mkdir(rosterPath+".bak", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	profile.TargetDir = "/should/not/stick"
	err = SaveProfileAndRoster(dir, profile, r)
	if err == nil {
		t.Fatal("expected error when the roster backup rename is blocked")
	}

	restored, readErr := os.ReadFile(rosterPath)
	if readErr != nil {
		t.Fatalf("read roster after rollback: %v", readErr)
	}
	if string(restored) != string(originalRoster) {
		t.Error("expected roster file to be restored to its pre-swap content on rollback")
	}

	loadedProfile, err := LoadProfile(dir, "course1")
	if err != nil {
		t.Fatalf("LoadProfile after rollback: %v", err)
	}
	if loadedProfile.TargetDir == "/should/not/stick" {
		t.Error("expected profile to be rolled back alongside roster")
	}

	for _, p := range []string{ProfilePath(dir, "course1") + ".tmp", RosterPath(dir, "course1") + ".tmp"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected no leftover temp file %s after rename failure, stat err = %v", p, err)
		}
	}
}

func TestLoadProfileMissingReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadProfile(dir, "ghost"); err == nil {
		t.Fatal("expected NotFound error for missing profile")
	}
}

func TestLoadProfileLenientlyDropsUnknownAndMistypedFields(t *testing.T) {
	dir := t.TempDir()
	raw := map[string]any{
		"name":                 "course1",
		"repo_name_template":   "{group}",
		"directory_layout":     42, // wrong type, should fall back to default
		"made_up_future_field": "ignored",
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(ProfilePath(dir, "course1")), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(ProfilePath(dir, "course1"), data, 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadProfile(dir, "course1")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if profile.RepoNameTemplate != "{group}" {
		t.Errorf("RepoNameTemplate = %q, want {group}", profile.RepoNameTemplate)
	}
	if profile.DirectoryLayout != model.LayoutFlat {
		t.Errorf("DirectoryLayout = %q, want default flat after mistyped field", profile.DirectoryLayout)
	}
}

func TestActiveProfileRoundTrips(t *testing.T) {
	dir := t.TempDir()

	got, err := ReadActiveProfile(dir)
	if err != nil {
		t.Fatalf("ReadActiveProfile on empty dir: %v", err)
	}
	if got != "" {
		t.Errorf("ReadActiveProfile on empty dir = %q, want empty", got)
	}

	if err := WriteActiveProfile(dir, "course1"); err != nil {
		t.Fatalf("WriteActiveProfile: %v", err)
	}
	got, err = ReadActiveProfile(dir)
	if err != nil {
		t.Fatalf("ReadActiveProfile: %v", err)
	}
	if got != "course1" {
		t.Errorf("ReadActiveProfile() = %q, want course1", got)
	}

	if err := WriteActiveProfile(dir, "course2"); err != nil {
		t.Fatalf("WriteActiveProfile overwrite: %v", err)
	}
	got, err = ReadActiveProfile(dir)
	if err != nil {
		t.Fatalf("ReadActiveProfile after overwrite: %v", err)
	}
	if got != "course2" {
		t.Errorf("ReadActiveProfile() after overwrite = %q, want course2", got)
	}
}

func TestConfigDirHonorsEnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom")
	t.Setenv("REPOBEE_CONFIG_DIR", want)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}
