// Package export writes roster and coverage data to the formats
// instructors consume outside the tool: YAML team rosters, CSV group
// sets, and XLSX coverage reports.
package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
)

type teamExport struct {
	Assignment string       `yaml:"assignment"`
	Teams      []teamMember `yaml:"teams"`
}

type teamMember struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// identity returns the Git-space identity string for a member under
// mode, or "" if the member has no username under IdentityUsername
// (the caller drops such members silently, matching validation's
// earlier warning for the same condition).
func identity(m model.Member, mode model.GitIdentityMode) string {
	if mode == model.IdentityUsername {
		if m.GitUsername == nil || *m.GitUsername == "" {
			return ""
		}
		return *m.GitUsername
	}
	return m.Email
}

// WriteTeamsYAML writes the resolved groups of an assignment as a YAML
// team roster: {assignment, teams:[{name, members:[identity]}]}.
// Members with no identity under the configured mode are dropped
// silently from their team's member list.
func WriteTeamsYAML(w io.Writer, r model.Roster, assignment model.Assignment, groups []model.Group, mode model.GitIdentityMode) error {
	out := teamExport{Assignment: assignment.Name}
	for _, g := range groups {
		tm := teamMember{Name: g.Name}
		for _, id := range g.MemberIDs {
			member, ok := r.FindMember(id)
			if !ok {
				continue
			}
			ident := identity(member, mode)
			if ident == "" {
				continue
			}
			tm.Members = append(tm.Members, ident)
		}
		out.Teams = append(out.Teams, tm)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(out)
}
