package plan

import "errors"

// Status constants.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Error variables for plan operations.
var (
	ErrConfigFileNotFound   = errors.New("config file not found")
	ErrConfigFileRead       = errors.New("cannot read config file")
	ErrConfigInvalid        = errors.New("invalid config file")
	ErrPlanDirEmpty         = errors.New("plan-dir cannot be empty")
	ErrFlagRequiresArg      = errors.New("flag requires an argument")
	ErrUnknownFlag          = errors.New("unknown flag")
	ErrPlanFileExists       = errors.New("plan file already exists")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrIDRequired           = errors.New("plan ID is required")
	ErrInvalidID            = errors.New("plan ID must be a positive integer")
	ErrPlanNotPending       = errors.New("plan is not pending")
	ErrPlanNotInProgress    = errors.New("plan is not in_progress")
	ErrPlanNotDone          = errors.New("plan is not done")
	ErrPlanAlreadyDone      = errors.New("plan is already done")
	ErrDepIDRequired        = errors.New("dependency ID is required")
	ErrNotDependentOn       = errors.New("plan does not depend on")
	ErrAlreadyDependentOn   = errors.New("plan already depends on")
	ErrCannotDependOnSelf   = errors.New("plan cannot depend on itself")
	ErrParentNotFound       = errors.New("parent plan not found")
	ErrParentDone           = errors.New("parent plan is already done")
	ErrDuplicateID          = errors.New("duplicate plan ID")
	ErrNoEditorFound        = errors.New("no editor found (set config.editor, $EDITOR, or install vi/nano)")
	ErrEditorFailed         = errors.New("editor failed")
	ErrMissingSchemaVersion = errors.New("missing required field: schema_version")
	ErrUnsupportedSchema    = errors.New("unsupported schema_version")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrStatusInvalid        = errors.New("invalid status")
	ErrPriorityInvalid      = errors.New("invalid priority (must be 1-4)")
	ErrNoFrontmatter        = errors.New("no frontmatter found")
	ErrUnclosedFrontmatter  = errors.New("unclosed frontmatter")
	ErrOffsetOutOfBounds    = errors.New("offset out of bounds")
)
