package playerio

import (
	"errors"
	"fmt"

	apperrors "github.com/duskhaven/duskhaven/internal/platform/errors"
)

// ErrInvalidArgument indicates a nil aggregate or nil row snapshot.
var ErrInvalidArgument = apperrors.New(apperrors.CodeInvalidArgument, "player aggregate and row snapshot are required")

// ErrMalformedRow matches (via errors.Is) any row-parse failure raised by Row
// accessors, distinct from a missing base row.
var ErrMalformedRow = apperrors.New(apperrors.CodeMalformedRow, "malformed player row")

// stepFailure labels a collaborator failure with the step and player it
// belongs to. The cause stays reachable through the error chain so callers
// can still distinguish malformed rows from store faults.
func stepFailure(step, playerName string, cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeStepFailure,
		fmt.Sprintf("step %s failed for player %q", step, playerName),
		map[string]string{"step": step, "player": playerName},
		cause,
	)
}

// FailedStep extracts the step name from a step failure, for operator
// diagnosis and tests.
func FailedStep(err error) (string, bool) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Code == apperrors.CodeStepFailure {
		return appErr.Metadata["step"], true
	}
	return "", false
}
