package errcodes

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Codes for the cataloging error taxonomy. Classification errors
// (unknown_format, empty_file) are recoverable per file and must not abort a
// batch; multi_story_ifid_conflict indicates catalog corruption and aborts
// the single operation.
const (
	CodeUnknownFormat           = "unknown_format"
	CodeEmptyFile               = "empty_file"
	CodeMultiStoryIFIDConflict  = "multi_story_ifid_conflict"
	CodeNoLauncherConfigured    = "no_launcher_configured"
	CodeStoryFileNotFound       = "story_file_not_found"
	CodeNoReleasesFound         = "no_releases_found"
	CodeLauncherError           = "launcher_error"
	CodeInvalidDate             = "invalid_date"
)

// UnknownFormat is returned when the classifier can't identify a story file,
// or when a release has no format recorded at launch time.
func UnknownFormat(name string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("%s is of an unknown format.", name),
		CodeUnknownFormat,
	}
}

// EmptyFile is returned when a story file contains no data.
func EmptyFile(path string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("%s does not contain any data.", path),
		CodeEmptyFile,
	}
}

// MultiStoryIFIDConflict is returned when the IFIDs of a single file resolve
// to more than one story. This should not occur under normal operation.
func MultiStoryIFIDConflict(path string) error {
	return &Error{
		http.StatusConflict,
		fmt.Sprintf("Multiple stories are linked to the IFIDs associated with %s.", path),
		CodeMultiStoryIFIDConflict,
	}
}

// NoLauncherConfigured is returned when no interpreter command is configured
// for a release's format.
func NoLauncherConfigured(format string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("No launcher set for format %q.", format),
		CodeNoLauncherConfigured,
	}
}

// StoryFileNotFound is returned when a release has no file URI or its file no
// longer exists on disk.
func StoryFileNotFound() error {
	return &Error{
		http.StatusUnprocessableEntity,
		"Story file not found.",
		CodeStoryFileNotFound,
	}
}

// NoReleasesFound is returned when launching a story that has no releases.
func NoReleasesFound() error {
	return &Error{
		http.StatusUnprocessableEntity,
		"No releases found for story.",
		CodeNoReleasesFound,
	}
}

// LauncherError is returned when spawning the interpreter fails.
func LauncherError(err error) error {
	return &Error{
		http.StatusInternalServerError,
		fmt.Sprintf("Launcher error: %s.", err),
		CodeLauncherError,
	}
}

// InvalidDate is returned when a first-published date can't be normalized.
func InvalidDate(value string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Invalid date string %q.", value),
		CodeInvalidDate,
	}
}

// HasCode reports whether err (or any error it wraps) is an *Error with the
// given code. Useful for the parameterized constructors above, where
// errors.Is would also compare the message.
func HasCode(err error, code string) bool {
	e := &Error{}
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
