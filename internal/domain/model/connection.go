package model

import (
	"encoding/json"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// ConnectionKind discriminates a GroupSetConnection.
type ConnectionKind string

const (
	ConnectionKindSystem ConnectionKind = "system"
	ConnectionKindImport ConnectionKind = "import"
	ConnectionKindLms    ConnectionKind = "lms"
)

// SystemType names which system-maintained set a system connection refers to.
type SystemType string

const (
	SystemTypeIndividualStudents SystemType = "individual_students"
	SystemTypeStaff              SystemType = "staff"
)

// GroupSetConnection records where a group set came from: system-managed,
// imported from a CSV, or linked to an LMS group category. A GroupSet
// with a nil connection was created manually in the tool.
type GroupSetConnection struct {
	kind ConnectionKind

	// system
	SystemType SystemType

	// import
	SourceFilename string
	SourcePath     string
	LastUpdated    string

	// lms
	CourseID   string
	CategoryID string
}

type connectionWire struct {
	Kind           ConnectionKind `json:"kind"`
	SystemType     SystemType     `json:"system_type,omitempty"`
	SourceFilename string         `json:"source_filename,omitempty"`
	SourcePath     string         `json:"source_path,omitempty"`
	LastUpdated    string         `json:"last_updated,omitempty"`
	CourseID       string         `json:"course_id,omitempty"`
	CategoryID     string         `json:"category_id,omitempty"`
}

// MarshalJSON projects GroupSetConnection to its tagged-variant wire form.
func (c GroupSetConnection) MarshalJSON() ([]byte, error) {
	wire := connectionWire{Kind: c.kind}
	switch c.kind {
	case ConnectionKindSystem:
		wire.SystemType = c.SystemType
	case ConnectionKindImport:
		wire.SourceFilename = c.SourceFilename
		wire.SourcePath = c.SourcePath
		wire.LastUpdated = c.LastUpdated
	case ConnectionKindLms:
		wire.CourseID = c.CourseID
		wire.CategoryID = c.CategoryID
	}
	return json.Marshal(wire)
}

// UnmarshalJSON parses the tagged-variant wire form back into a
// GroupSetConnection.
func (c *GroupSetConnection) UnmarshalJSON(data []byte) error {
	var wire connectionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Kind {
	case ConnectionKindSystem, ConnectionKindImport, ConnectionKindLms:
	default:
		return classroomerrors.NewValidation("unknown group set connection kind: " + string(wire.Kind))
	}
	c.kind = wire.Kind
	c.SystemType = wire.SystemType
	c.SourceFilename = wire.SourceFilename
	c.SourcePath = wire.SourcePath
	c.LastUpdated = wire.LastUpdated
	c.CourseID = wire.CourseID
	c.CategoryID = wire.CategoryID
	return nil
}

// Kind returns the connection's discriminant.
func (c GroupSetConnection) Kind() ConnectionKind {
	return c.kind
}

// IsSystem reports whether this connection marks a system-managed set
// with the given system type.
func (c GroupSetConnection) IsSystem(t SystemType) bool {
	return c.kind == ConnectionKindSystem && c.SystemType == t
}

// NewSystemConnection builds a system connection for the given system type.
func NewSystemConnection(t SystemType) *GroupSetConnection {
	return &GroupSetConnection{kind: ConnectionKindSystem, SystemType: t}
}

// NewImportConnection builds an import connection recording the source file.
func NewImportConnection(filename, path, lastUpdated string) *GroupSetConnection {
	return &GroupSetConnection{
		kind:           ConnectionKindImport,
		SourceFilename: filename,
		SourcePath:     path,
		LastUpdated:    lastUpdated,
	}
}

// NewLmsConnection builds an LMS-linked connection.
func NewLmsConnection(courseID, categoryID string) *GroupSetConnection {
	return &GroupSetConnection{kind: ConnectionKindLms, CourseID: courseID, CategoryID: categoryID}
}
