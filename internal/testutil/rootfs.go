// Package testutil builds small root filesystems for package inventory
// tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile creates rel under root with content, making parent
// directories as needed.
func WriteFile(t *testing.T, root string, rel string, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	return full
}

// Symlink creates rel under root pointing at target. The target text is
// written verbatim, so absolute targets stay absolute.
func Symlink(t *testing.T, root string, rel string, target string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.Symlink(target, full))
	return full
}

// Mkdir creates rel under root.
func Mkdir(t *testing.T, root string, rel string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(full, 0755))
	return full
}

// DpkgPackage writes var/lib/dpkg/info/<name>.list listing files.
func DpkgPackage(t *testing.T, root string, name string, files ...string) {
	t.Helper()
	Mkdir(t, root, "var/lib/dpkg/info")
	WriteFile(t, root, "var/lib/dpkg/info/"+name+".list", strings.Join(files, "\n")+"\n")
}

// DpkgStatus writes var/lib/dpkg/status from the given stanzas.
func DpkgStatus(t *testing.T, root string, stanzas ...string) {
	t.Helper()
	WriteFile(t, root, "var/lib/dpkg/status", strings.Join(stanzas, "\n\n")+"\n")
}

// ApkInstalled writes lib/apk/db/installed.
func ApkInstalled(t *testing.T, root string, content string) {
	t.Helper()
	WriteFile(t, root, "lib/apk/db/installed", content)
}
