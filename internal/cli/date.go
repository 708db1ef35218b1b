package cli

import (
	"time"

	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
)

// dateLayout is DD-MM-YYYY with zero-padded day and month.
const dateLayout = "02-01-2006"

// parseDate parses the target date argument as a UTC calendar day.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid date %q (format: DD-MM-YYYY)", s)
	}
	return t, nil
}
