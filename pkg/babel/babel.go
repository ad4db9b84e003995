// Package babel defines the boundary to the story-file classifier and the
// policy for interpreting its results. Format detection and IFID extraction
// themselves are delegated to a Classifier implementation.
package babel

import (
	"encoding/binary"
	"os"
	"strings"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/pkg/errors"
)

// CoverImage is an embedded cover extracted from a story file.
type CoverImage struct {
	Data        []byte
	Width       int
	Height      int
	Format      string
	Description *string
}

// Classifier identifies story files. Implementations signal an
// unidentifiable file with errcodes.UnknownFormat and an empty file with
// errcodes.EmptyFile. Metadata and Cover return nil (not an error) when the
// file simply has none embedded.
type Classifier interface {
	DeduceFormat(path string) (string, error)
	IFIDs(path string) ([]string, error)
	Metadata(path string) ([]byte, error)
	Cover(path string) (*CoverImage, error)
}

// Resolution is the outcome of classifying one file.
type Resolution struct {
	// Format is the canonical format used for matching and launching:
	// blorb wrappers unwrapped, executables sub-classified.
	Format string
	// RawFormat is the classifier's unmodified answer, preserved for the
	// first recording of the Format entity (e.g. "blorbed zcode").
	RawFormat string
	// IFIDs may contain zero, one, or multiple entries; multiple IFIDs from
	// one file all resolve to releases of the same story.
	IFIDs []string
}

// RecordName is the name under which the Format entity is first recorded:
// a blorb wrapper designation is kept, while executables use their
// sub-classified name.
func (r *Resolution) RecordName() string {
	if strings.Contains(r.RawFormat, "blorbed") {
		return r.RawFormat
	}
	return r.Format
}

// Resolve classifies a file and applies the format policy on the result.
func Resolve(c Classifier, path string) (*Resolution, error) {
	raw, err := c.DeduceFormat(path)
	if err != nil {
		return nil, err
	}

	format, err := canonicalize(raw, func() ([]byte, error) {
		buf, err := os.ReadFile(path)
		return buf, errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	ifids, err := c.IFIDs(path)
	if err != nil {
		return nil, err
	}

	return &Resolution{Format: format, RawFormat: strings.TrimSpace(raw), IFIDs: ifids}, nil
}

// ResolveDeclared applies the format policy to a declared format string,
// for documents whose files may not be locally reachable. A declared
// "executable" can't be sub-classified without bytes and stays as-is.
func ResolveDeclared(declared string) (string, error) {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return "", errcodes.UnknownFormat("declared format")
	}
	if strings.Contains(declared, "blorbed") {
		return innerFormat(declared), nil
	}
	return declared, nil
}

func canonicalize(raw string, readFile func() ([]byte, error)) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.Contains(trimmed, "blorbed") {
		return innerFormat(trimmed), nil
	}
	if trimmed == "executable" {
		buf, err := readFile()
		if err != nil {
			return "", err
		}
		if IsWindowsExecutable(buf) {
			return "win32", nil
		}
		return "dos", nil
	}
	return trimmed, nil
}

// innerFormat extracts the second token of a "blorbed X" designation.
func innerFormat(wrapped string) string {
	fields := strings.Fields(wrapped)
	if len(fields) < 2 {
		return strings.TrimSpace(wrapped)
	}
	return fields[1]
}

// IsWindowsExecutable reports whether the buffer is a PE (win32) binary, as
// opposed to a plain DOS MZ executable.
func IsWindowsExecutable(buf []byte) bool {
	if len(buf) < 0x40 || buf[0] != 'M' || buf[1] != 'Z' {
		return false
	}
	peOffset := binary.LittleEndian.Uint32(buf[0x3c:0x40])
	if int(peOffset)+4 > len(buf) {
		return false
	}
	return buf[peOffset] == 'P' && buf[peOffset+1] == 'E' &&
		buf[peOffset+2] == 0 && buf[peOffset+3] == 0
}
