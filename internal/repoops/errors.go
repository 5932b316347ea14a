package repoops

import (
	"fmt"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

func notFoundf(format string, args ...any) error {
	return classroomerrors.NewNotFound(fmt.Sprintf(format, args...))
}

func isNotFoundErr(err error) bool {
	_, ok := err.(classroomerrors.NotFound)
	return ok
}
