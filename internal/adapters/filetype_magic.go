package adapters

import (
	"errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/deitch/magic/pkg/magic"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/types"
)

const textSniffBytes = 8192

// MagicFileTypeAdapter gives a coarse, file(1)-like description of a file
// from its leading bytes. Text has no magic number, so it is recognised by
// inspecting the first few kilobytes.
type MagicFileTypeAdapter struct{}

func NewMagicFileTypeAdapter() MagicFileTypeAdapter {
	return MagicFileTypeAdapter{}
}

func (a MagicFileTypeAdapter) Classify(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return types.FileTypeUnknown
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return types.FileTypeUnknown
	}
	if info.Size() == 0 {
		return types.FileTypeEmpty
	}
	if described, err := magic.GetType(file); err == nil && len(described) > 0 {
		return strings.Join(described, ", ")
	}
	head := make([]byte, textSniffBytes)
	n, err := file.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return types.FileTypeUnknown
	}
	return sniffText(head[:n])
}

func sniffText(head []byte) string {
	if len(head) == 0 {
		return types.FileTypeEmpty
	}
	ascii := true
	for _, b := range head {
		if b == 0 {
			return types.FileTypeUnknown
		}
		if b >= 0x80 {
			ascii = false
			continue
		}
		if b < 0x20 && !isTextControl(b) {
			return types.FileTypeUnknown
		}
	}
	if ascii {
		return "ASCII text"
	}
	// A multi-byte rune may be cut at the sniff boundary.
	for i := 0; i < utf8.UTFMax && len(head) > 0; i++ {
		if utf8.Valid(head) {
			return "UTF-8 text"
		}
		head = head[:len(head)-1]
	}
	return types.FileTypeUnknown
}

func isTextControl(b byte) bool {
	switch b {
	case '\t', '\n', '\r', '\f', '\b', 0x1b:
		return true
	default:
		return false
	}
}

var _ ports.FileTypePort = MagicFileTypeAdapter{}
