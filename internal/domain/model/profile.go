package model

// GitConnectionSettings describes how a profile reaches its configured
// Git hosting platform.
type GitConnectionSettings struct {
	Kind         string `json:"kind"` // "github", "gitlab", "gitea", "local"
	BaseURL      string `json:"base_url"`
	AccessToken  string `json:"access_token,omitempty"`
	Organization string `json:"organization"`
	User         string `json:"user"`
}

// LmsConnectionSettings describes how a profile reaches its configured LMS.
type LmsConnectionSettings struct {
	Kind        string `json:"kind"` // "canvas", "moodle"
	BaseURL     string `json:"base_url"`
	AccessToken string `json:"access_token,omitempty"`
	Token       string `json:"token,omitempty"`
	CourseID    string `json:"course_id,omitempty"`
}

// Profile is a named, persisted bundle of connection and operation
// settings: which Git platform and LMS to talk to, and how repo
// operations name and lay out their output.
type Profile struct {
	Name             string                `json:"name"`
	GitConnection    GitConnectionSettings `json:"git_connection"`
	LmsConnection    LmsConnectionSettings `json:"lms_connection"`
	RepoNameTemplate string                `json:"repo_name_template"`
	DirectoryLayout  DirectoryLayout       `json:"directory_layout"`
	GitIdentityMode  GitIdentityMode       `json:"git_identity_mode"`
	TargetDir        string                `json:"target_dir"`
}

// DefaultProfile returns a Profile with the documented defaults: a
// "{assignment}-{group}" repo naming template, flat clone layout, and
// email-based git identity.
func DefaultProfile(name string) Profile {
	return Profile{
		Name:             name,
		RepoNameTemplate: "{assignment}-{group}",
		DirectoryLayout:  LayoutFlat,
		GitIdentityMode:  IdentityEmail,
	}
}
