package roster

import (
	"fmt"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

func notFoundf(format string, args ...any) error {
	return classroomerrors.NewNotFound(fmt.Sprintf(format, args...))
}
