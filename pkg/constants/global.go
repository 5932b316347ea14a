// Package constants defines global constants used throughout the classroom
// repository orchestration engine.
package constants

// Service constants
const (
	// ServiceName identifies this tool in logs and User-Agent headers.
	ServiceName = "classroomctl"
)

// Temp/backup file suffixes used by the profile+roster atomic swap.
const (
	ProfileTempExt = ".tmp"
	ProfileBakExt  = ".bak"
)

// Environment variables consulted for platform and LMS credentials.
const (
	EnvGitHubToken = "CLASSROOM_GITHUB_TOKEN"
	EnvGitLabToken = "CLASSROOM_GITLAB_TOKEN"
	EnvGiteaToken  = "CLASSROOM_GITEA_TOKEN"
	EnvCanvasToken = "CLASSROOM_CANVAS_TOKEN"
	EnvMoodleToken = "CLASSROOM_MOODLE_TOKEN"
)
