package roster

import (
	"github.com/google/uuid"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/pkg/idcodec"
)

func newID() string {
	return idcodec.Encode(uuid.New())
}

func newGroupID() model.GroupID {
	return model.GroupID(newID())
}

func newGroupSetID() model.GroupSetID {
	return model.GroupSetID(newID())
}

func newMemberID() model.MemberID {
	return model.MemberID(newID())
}

func newAssignmentID() model.AssignmentID {
	return model.AssignmentID(newID())
}
