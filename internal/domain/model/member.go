package model

// GitUsernameStatus tracks whether a member's git_username has been
// checked against a platform.
type GitUsernameStatus string

const (
	GitUsernameUnknown GitUsernameStatus = "unknown"
	GitUsernameValid   GitUsernameStatus = "valid"
	GitUsernameInvalid GitUsernameStatus = "invalid"
)

// MemberStatus tracks a member's enrollment state.
type MemberStatus string

const (
	StatusActive     MemberStatus = "active"
	StatusDropped    MemberStatus = "dropped"
	StatusIncomplete MemberStatus = "incomplete"
)

// EnrollmentType determines whether a member is stored in the roster's
// students or staff sequence.
type EnrollmentType string

const (
	EnrollmentStudent  EnrollmentType = "student"
	EnrollmentTeacher  EnrollmentType = "teacher"
	EnrollmentTA       EnrollmentType = "ta"
	EnrollmentDesigner EnrollmentType = "designer"
	EnrollmentObserver EnrollmentType = "observer"
	EnrollmentOther    EnrollmentType = "other"
)

// IsStaff reports whether this enrollment type places a member in the
// roster's staff sequence rather than its students sequence.
func (e EnrollmentType) IsStaff() bool {
	return e != EnrollmentStudent
}

// Member is a person on the roster: a student or a staff member.
type Member struct {
	ID                MemberID          `json:"id"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	StudentNumber     *string           `json:"student_number,omitempty"`
	GitUsername       *string           `json:"git_username,omitempty"`
	GitUsernameStatus GitUsernameStatus `json:"git_username_status"`
	Status            MemberStatus      `json:"status"`
	EnrollmentType    EnrollmentType    `json:"enrollment_type"`
	LmsUserID         *string           `json:"lms_user_id,omitempty"`
	Source            string            `json:"source"`
	CustomFields      map[string]string `json:"custom_fields,omitempty"`
}

// Clone returns a deep copy of the member, safe to mutate independently
// of the original.
func (m Member) Clone() Member {
	out := m
	if m.StudentNumber != nil {
		v := *m.StudentNumber
		out.StudentNumber = &v
	}
	if m.GitUsername != nil {
		v := *m.GitUsername
		out.GitUsername = &v
	}
	if m.LmsUserID != nil {
		v := *m.LmsUserID
		out.LmsUserID = &v
	}
	if m.CustomFields != nil {
		out.CustomFields = make(map[string]string, len(m.CustomFields))
		for k, v := range m.CustomFields {
			out.CustomFields[k] = v
		}
	}
	return out
}
