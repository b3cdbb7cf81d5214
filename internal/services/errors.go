package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceUnreadable     = errors.New("source unreadable")
	ErrClipNotFound         = errors.New("clip not found")
	ErrFilterNotFound       = errors.New("filter not found")
	ErrFilterCycle          = errors.New("filter alias cycle")
	ErrInvalidBarArithmetic = errors.New("invalid bar arithmetic")
	ErrRender               = errors.New("render error")
	ErrDefinition           = errors.New("definition error")
	ErrConfiguration        = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrRender
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must abort the run. A missing clip only drops the
// clip usage that referenced it; every other failure aborts.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrClipNotFound)
}

// Kind returns a short classification label for err, used in log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceUnreadable):
		return "source_unreadable"
	case errors.Is(err, ErrClipNotFound):
		return "clip_not_found"
	case errors.Is(err, ErrFilterCycle):
		return "filter_cycle"
	case errors.Is(err, ErrFilterNotFound):
		return "filter_not_found"
	case errors.Is(err, ErrInvalidBarArithmetic):
		return "invalid_bar_arithmetic"
	case errors.Is(err, ErrDefinition):
		return "definition"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrRender):
		return "render"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "automix failure"
	}
	return strings.Join(parts, ": ")
}
