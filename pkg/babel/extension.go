package babel

import (
	"crypto/md5" //nolint:gosec // treaty fallback IFIDs are MD5 by definition
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/pkg/errors"
)

// ExtensionClassifier is a minimal Classifier that identifies story files by
// extension and derives fallback IFIDs from an MD5 digest of the file
// contents, per the Treaty of Babel rule for files without an embedded
// IFID. It never finds embedded metadata or covers; a full treaty
// implementation can be swapped in behind the Classifier interface.
type ExtensionClassifier struct{}

var extensionFormats = map[string]string{
	".z1":     "zcode",
	".z2":     "zcode",
	".z3":     "zcode",
	".z4":     "zcode",
	".z5":     "zcode",
	".z6":     "zcode",
	".z7":     "zcode",
	".z8":     "zcode",
	".zblorb": "blorbed zcode",
	".zlb":    "blorbed zcode",
	".ulx":    "glulx",
	".gblorb": "blorbed glulx",
	".glb":    "blorbed glulx",
	".blorb":  "blorbed zcode",
	".blb":    "blorbed zcode",
	".t3":     "tads3",
	".gam":    "tads2",
	".taf":    "adrift",
	".agx":    "agt",
	".acd":    "alan",
	".a3c":    "alan",
	".asl":    "quest",
	".cas":    "quest",
	".hex":    "hugo",
	".d$$":    "adrift",
	".mag":    "magscrolls",
	".exe":    "executable",
	".com":    "executable",
}

func (ExtensionClassifier) DeduceFormat(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if info.Size() == 0 {
		return "", errcodes.EmptyFile(path)
	}
	format, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", errcodes.UnknownFormat(path)
	}
	return format, nil
}

func (ExtensionClassifier) IFIDs(path string) ([]string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(buf) == 0 {
		return nil, errcodes.EmptyFile(path)
	}
	return []string{fmt.Sprintf("%X", md5.Sum(buf))}, nil //nolint:gosec
}

func (ExtensionClassifier) Metadata(_ string) ([]byte, error) {
	return nil, nil
}

func (ExtensionClassifier) Cover(_ string) (*CoverImage, error) {
	return nil, nil
}
