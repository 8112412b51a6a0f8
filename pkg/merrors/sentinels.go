package merrors

import "errors"

// Sentinel errors are compared with errors.Is against whatever a
// repository or service layer actually returns (a pgconn.PgError
// constraint-violation code, a context.DeadlineExceeded, ...); see
// ValidateBusinessError below for the translation.
var (
	ErrExperimentNotFound   = errors.New("0001")
	ErrPackageNotFound      = errors.New("0002")
	ErrAgentNotFound        = errors.New("0003")
	ErrResultNotFound       = errors.New("0004")
	ErrExperimentNameTaken  = errors.New("0005")
	ErrUnknownToolchain     = errors.New("0006")
	ErrDuplicateToolchain   = errors.New("0007")
	ErrInvalidStateForEdit  = errors.New("0008")
	ErrCrateAlreadyAssigned = errors.New("0009")
	ErrAgentTokenUnknown    = errors.New("0010")
	ErrAgentTokenMissing    = errors.New("0011")
	ErrRetryCapExceeded     = errors.New("0012")
	ErrReportNotReady       = errors.New("0013")
	ErrInvalidModeFlag      = errors.New("0014")
	ErrInternalServer       = errors.New("0099")
)

// ValidateBusinessError maps one of the sentinel errors above to its
// typed, user-facing shape with a fixed message; args is accepted but
// not used. Any other error is returned unchanged.
func ValidateBusinessError(err error, entityType string, args ...any) error {
	switch {
	case errors.Is(err, ErrExperimentNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       ErrExperimentNotFound.Error(),
			Message:    "no experiment exists with the given name",
		}
	case errors.Is(err, ErrPackageNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       ErrPackageNotFound.Error(),
			Message:    "no package exists with the given identifier",
		}
	case errors.Is(err, ErrAgentNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       ErrAgentNotFound.Error(),
			Message:    "no agent is registered under this name",
		}
	case errors.Is(err, ErrResultNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       ErrResultNotFound.Error(),
			Message:    "no result is recorded for this package and toolchain",
		}
	case errors.Is(err, ErrExperimentNameTaken):
		return ConflictError{
			EntityType: entityType,
			Code:       ErrExperimentNameTaken.Error(),
			Message:    "an experiment with this name already exists",
		}
	case errors.Is(err, ErrUnknownToolchain):
		return ValidationError{
			EntityType: entityType,
			Code:       ErrUnknownToolchain.Error(),
			Message:    "the requested toolchain is not recognized",
		}
	case errors.Is(err, ErrDuplicateToolchain):
		return ValidationError{
			EntityType: entityType,
			Code:       ErrDuplicateToolchain.Error(),
			Message:    "an experiment's start and end toolchains must be distinct",
		}
	case errors.Is(err, ErrInvalidStateForEdit):
		return ConflictError{
			EntityType: entityType,
			Code:       ErrInvalidStateForEdit.Error(),
			Message:    "the experiment is not in a state that allows this operation",
		}
	case errors.Is(err, ErrCrateAlreadyAssigned):
		return ConflictError{
			EntityType: entityType,
			Code:       ErrCrateAlreadyAssigned.Error(),
			Message:    "this package/toolchain task is already assigned to another agent",
		}
	case errors.Is(err, ErrRetryCapExceeded):
		return UnprocessableOperationError{
			EntityType: entityType,
			Code:       ErrRetryCapExceeded.Error(),
			Message:    "this task has already been retried the maximum number of times",
		}
	case errors.Is(err, ErrReportNotReady):
		return UnprocessableOperationError{
			EntityType: entityType,
			Code:       ErrReportNotReady.Error(),
			Message:    "a report cannot be generated while the experiment is still running",
		}
	case errors.Is(err, ErrInvalidModeFlag):
		return ValidationError{
			EntityType: entityType,
			Code:       ErrInvalidModeFlag.Error(),
			Message:    "one or more mode flags are not recognized",
		}
	default:
		return err
	}
}
