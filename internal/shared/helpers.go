// Package shared provides path and error helpers used across the
// pkgfilehash packages.
package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
)

// maxSymlinkHops matches the Linux MAXSYMLINKS limit.
const maxSymlinkHops = 40

// ErrSymlinkLoop is returned by ResolveInRoot when a chain of links does
// not terminate.
var ErrSymlinkLoop = errors.New("too many levels of symbolic links")

// CleanRel turns a path taken from package metadata into a clean,
// slash-separated path relative to the filesystem root. It returns "" for
// the root itself.
func CleanRel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	cleaned := path.Clean("/" + filepath.ToSlash(trimmed))
	return strings.TrimPrefix(cleaned, "/")
}

// RootJoin joins metadata paths under root. Leading separators are stripped
// first so an absolute metadata path never refers to the host.
func RootJoin(root string, elems ...string) string {
	parts := make([]string, 0, len(elems)+1)
	parts = append(parts, root)
	for _, elem := range elems {
		parts = append(parts, filepath.FromSlash(strings.TrimLeft(elem, "/")))
	}
	return filepath.Join(parts...)
}

// Exists reports whether p exists as a file, directory or symlink. A final
// symlink is not followed, so dangling links count as existing.
func Exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

// ResolveInRoot resolves every symlink in rel as if root were "/". Absolute
// link targets are re-based onto root and ".." never climbs above it. The
// returned path is a host path below root. A missing component, or one
// that sits below a non-directory, yields an error wrapping
// fs.ErrNotExist.
func ResolveInRoot(root string, rel string) (string, error) {
	resolved := ""
	pending := splitSlash(rel)
	hops := 0
	for len(pending) > 0 {
		part := pending[0]
		pending = pending[1:]
		switch part {
		case "", ".":
			continue
		case "..":
			resolved = parentRel(resolved)
			continue
		}
		next := path.Join(resolved, part)
		hostPath := filepath.Join(root, filepath.FromSlash(next))
		info, err := os.Lstat(hostPath)
		if errors.Is(err, syscall.ENOTDIR) {
			return "", fmt.Errorf("%s: %w: %w", rel, fs.ErrNotExist, err)
		}
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}
		hops++
		if hops > maxSymlinkHops {
			return "", fmt.Errorf("%s: %w", rel, ErrSymlinkLoop)
		}
		target, err := os.Readlink(hostPath)
		if err != nil {
			return "", err
		}
		target = filepath.ToSlash(target)
		if path.IsAbs(target) {
			resolved = ""
		}
		pending = append(splitSlash(target), pending...)
	}
	return filepath.Join(root, filepath.FromSlash(resolved)), nil
}

func splitSlash(value string) []string {
	return strings.Split(filepath.ToSlash(value), "/")
}

func parentRel(rel string) string {
	parent := path.Dir(rel)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}

// SortedKeys returns the keys of a string set in ascending order.
func SortedKeys[V any](set map[string]V) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
