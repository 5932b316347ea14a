package roster

import (
	"fmt"
	"strings"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
)

// IssueKind classifies a validation finding.
type IssueKind string

const (
	IssueDuplicateMemberID       IssueKind = "duplicate_member_id"
	IssueMissingEmail            IssueKind = "missing_email"
	IssueInvalidEmail            IssueKind = "invalid_email"
	IssueDuplicateEmail          IssueKind = "duplicate_email"
	IssueDuplicateAssignmentName IssueKind = "duplicate_assignment_name"

	IssueDuplicateGroupID      IssueKind = "duplicate_group_id"
	IssueDuplicateGroupName    IssueKind = "duplicate_group_name"
	IssueMemberInMultipleGroups IssueKind = "member_in_multiple_groups"
	IssueOrphanMemberRef       IssueKind = "orphan_member_reference"
	IssueEmptyGroup            IssueKind = "empty_group"
	IssueUnassignedStudent     IssueKind = "unassigned_student"
	IssueMissingGitUsername    IssueKind = "missing_git_username"
	IssueInvalidGitUsername    IssueKind = "invalid_git_username"
	IssueDuplicateRepoName     IssueKind = "duplicate_repo_name"
)

// Issue is a single validation finding: a kind, the affected IDs, an
// optional free-text context, and whether it blocks the operation that
// triggered validation.
type Issue struct {
	Kind        IssueKind
	MemberIDs   []model.MemberID
	GroupIDs    []model.GroupID
	Context     string
	Blocking    bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeAssignmentName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// isValidEmail applies the "local@domain.tld" rule: a single '@', non-empty
// local and domain parts, no space in the local part, and a '.' strictly
// inside the domain (not leading or trailing).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	local, domain := parts[0], parts[1]
	if local == "" || domain == "" {
		return false
	}
	if strings.ContainsAny(local, " \t") {
		return false
	}
	dot := strings.Index(domain, ".")
	if dot <= 0 || dot >= len(domain)-1 {
		return false
	}
	return true
}

// ValidateRoster checks roster-level invariants: duplicate member IDs,
// missing/malformed/duplicate emails, and duplicate assignment names.
func ValidateRoster(r model.Roster) []Issue {
	var issues []Issue

	seenIDs := make(map[model.MemberID]bool)
	seenEmails := make(map[string][]model.MemberID)

	for _, m := range r.AllMembers() {
		if seenIDs[m.ID] {
			issues = append(issues, Issue{Kind: IssueDuplicateMemberID, MemberIDs: []model.MemberID{m.ID}, Blocking: true})
		}
		seenIDs[m.ID] = true

		if strings.TrimSpace(m.Email) == "" {
			issues = append(issues, Issue{Kind: IssueMissingEmail, MemberIDs: []model.MemberID{m.ID}, Blocking: false})
			continue
		}
		if !isValidEmail(m.Email) {
			issues = append(issues, Issue{Kind: IssueInvalidEmail, MemberIDs: []model.MemberID{m.ID}, Context: m.Email, Blocking: true})
			continue
		}
		norm := normalizeEmail(m.Email)
		seenEmails[norm] = append(seenEmails[norm], m.ID)
	}

	for email, ids := range seenEmails {
		if len(ids) > 1 {
			issues = append(issues, Issue{Kind: IssueDuplicateEmail, MemberIDs: ids, Context: email, Blocking: true})
		}
	}

	seenNames := make(map[string][]model.AssignmentID)
	for _, a := range r.Assignments {
		norm := normalizeAssignmentName(a.Name)
		seenNames[norm] = append(seenNames[norm], a.ID)
	}
	for name, ids := range seenNames {
		if len(ids) > 1 {
			idStrs := make([]string, len(ids))
			for i, id := range ids {
				idStrs[i] = string(id)
			}
			issues = append(issues, Issue{
				Kind:     IssueDuplicateAssignmentName,
				Context:  fmt.Sprintf("%s: %s", name, strings.Join(idStrs, ", ")),
				Blocking: true,
			})
		}
	}

	return issues
}

// AssignmentValidationConfig parameterizes assignment-level validation
// with caller context not derivable from the roster alone.
type AssignmentValidationConfig struct {
	GitIdentityMode model.GitIdentityMode
	RepoNameTemplate string
}

// ValidateAssignment checks assignment-level invariants: duplicate group
// IDs/names, members in multiple groups, orphan references, empty groups,
// unassigned active students (class-wide only), git identity completeness,
// and duplicate computed repo names.
func ValidateAssignment(r model.Roster, assignment model.Assignment, cfg AssignmentValidationConfig) ([]Issue, error) {
	groups, err := Resolve(r, assignment)
	if err != nil {
		return nil, err
	}

	var issues []Issue

	seenGroupIDs := make(map[model.GroupID]bool)
	seenGroupNames := make(map[string][]model.GroupID)
	memberGroup := make(map[model.MemberID]model.GroupID)
	coveredStudents := make(map[model.MemberID]bool)
	repoNames := make(map[string][]model.GroupID)

	for _, g := range groups {
		if seenGroupIDs[g.ID] {
			issues = append(issues, Issue{Kind: IssueDuplicateGroupID, GroupIDs: []model.GroupID{g.ID}, Blocking: true})
		}
		seenGroupIDs[g.ID] = true

		normName := normalizeAssignmentName(g.Name)
		seenGroupNames[normName] = append(seenGroupNames[normName], g.ID)

		active := r.ActiveMemberIDs(g)
		if len(active) == 0 {
			issues = append(issues, Issue{Kind: IssueEmptyGroup, GroupIDs: []model.GroupID{g.ID}, Blocking: true})
		}

		for _, id := range g.MemberIDs {
			m, ok := r.FindMember(id)
			if !ok {
				issues = append(issues, Issue{Kind: IssueOrphanMemberRef, MemberIDs: []model.MemberID{id}, GroupIDs: []model.GroupID{g.ID}, Blocking: true})
				continue
			}
			if prior, dup := memberGroup[id]; dup && prior != g.ID {
				issues = append(issues, Issue{Kind: IssueMemberInMultipleGroups, MemberIDs: []model.MemberID{id}, GroupIDs: []model.GroupID{prior, g.ID}, Blocking: true})
			}
			memberGroup[id] = g.ID
			coveredStudents[m.ID] = true

			if m.Status == model.StatusActive {
				if cfg.GitIdentityMode == model.IdentityUsername {
					if m.GitUsername == nil || strings.TrimSpace(*m.GitUsername) == "" {
						issues = append(issues, Issue{Kind: IssueMissingGitUsername, MemberIDs: []model.MemberID{id}, Blocking: false})
					} else if m.GitUsernameStatus == model.GitUsernameInvalid {
						issues = append(issues, Issue{Kind: IssueInvalidGitUsername, MemberIDs: []model.MemberID{id}, Blocking: false})
					}
				}
			}
		}

		repoName := expandRepoNameTemplate(cfg.RepoNameTemplate, assignment.Name, g.Name)
		repoNames[repoName] = append(repoNames[repoName], g.ID)
	}

	for name, ids := range seenGroupNames {
		if len(ids) > 1 {
			issues = append(issues, Issue{Kind: IssueDuplicateGroupName, GroupIDs: ids, Context: name, Blocking: true})
		}
	}

	if assignment.AssignmentType == model.AssignmentClassWide {
		for _, s := range r.ActiveStudents() {
			if !coveredStudents[s.ID] {
				issues = append(issues, Issue{Kind: IssueUnassignedStudent, MemberIDs: []model.MemberID{s.ID}, Blocking: true})
			}
		}
	}

	for name, ids := range repoNames {
		if len(ids) > 1 {
			issues = append(issues, Issue{Kind: IssueDuplicateRepoName, GroupIDs: ids, Context: name, Blocking: true})
		}
	}

	return issues, nil
}

// expandRepoNameTemplate substitutes "{assignment}" and "{group}" in
// template with slugified names. An empty template defaults to
// "{assignment}-{group}" per spec.
func expandRepoNameTemplate(template, assignmentName, groupName string) string {
	if template == "" {
		template = "{assignment}-{group}"
	}
	r := strings.NewReplacer(
		"{assignment}", slugifyRepoPart(assignmentName),
		"{group}", slugifyRepoPart(groupName),
	)
	return r.Replace(template)
}

func slugifyRepoPart(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	var out strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out.WriteRune(r)
		default:
			out.WriteRune('-')
		}
	}
	return out.String()
}

// HasBlocking reports whether any issue in the list blocks the operation.
func HasBlocking(issues []Issue) bool {
	for _, i := range issues {
		if i.Blocking {
			return true
		}
	}
	return false
}
