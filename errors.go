package paperlog

import (
	"fmt"

	"github.com/bobinette/paperlog/errors"
)

// PaperNotFound returns the error stores give when id is unknown.
func PaperNotFound(id string) error {
	return errors.New(fmt.Sprintf("paper %s not found", id), errors.NotFound())
}
