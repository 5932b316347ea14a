package export

import (
	"encoding/csv"
	"io"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
)

// WriteGroupSetCSV emits a group set as CSV with columns group_set_id,
// group_id, group_name, name, email — the format ParseGroupSetCSV
// round-trips. A group with zero members still emits one row with
// blank name/email so the group itself survives a re-import.
func WriteGroupSetCSV(w io.Writer, r model.Roster, gs model.GroupSet) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"group_set_id", "group_id", "group_name", "name", "email"}); err != nil {
		return err
	}

	for _, groupID := range gs.GroupIDs {
		g, ok := r.FindGroup(groupID)
		if !ok {
			continue
		}
		if len(g.MemberIDs) == 0 {
			if err := writer.Write([]string{string(gs.ID), string(g.ID), g.Name, "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, memberID := range g.MemberIDs {
			m, ok := r.FindMember(memberID)
			if !ok {
				continue
			}
			if err := writer.Write([]string{string(gs.ID), string(g.ID), g.Name, m.Name, m.Email}); err != nil {
				return err
			}
		}
	}

	return writer.Error()
}
