package adapters

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgfilehash/internal/testutil"
	"pkgfilehash/internal/types"
)

const apkInstalledFixture = `C:Q1abc=
P:musl
V:1.2.4-r2
A:x86_64
F:lib
R:ld-musl-x86_64.so.1
R:libc.musl-x86_64.so.1

C:Q1def=
P:busybox
V:1.36.1-r5
A:x86_64
F:bin
R:busybox
R:missing
F:etc
R:motd
`

func TestApkSourceListPackages(t *testing.T) {
	root := t.TempDir()
	testutil.ApkInstalled(t, root, apkInstalledFixture)

	names, err := NewApkSourceAdapter().ListPackages(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"busybox", "musl"}, names)
}

func TestApkSourceResolveFiles(t *testing.T) {
	root := t.TempDir()
	testutil.ApkInstalled(t, root, apkInstalledFixture)
	testutil.WriteFile(t, root, "lib/ld-musl-x86_64.so.1", "elf")
	testutil.Symlink(t, root, "lib/libc.musl-x86_64.so.1", "ld-musl-x86_64.so.1")
	testutil.WriteFile(t, root, "bin/busybox", "elf")
	testutil.WriteFile(t, root, "etc/motd", "welcome")

	records, err := NewApkSourceAdapter().ResolveFiles(context.Background(), root)
	require.NoError(t, err)
	want := []types.PackageRecord{
		{
			Name:    "musl",
			Version: "1.2.4-r2",
			Arch:    "x86_64",
			Files:   []string{"lib", "lib/ld-musl-x86_64.so.1", "lib/libc.musl-x86_64.so.1"},
		},
		{
			Name:    "busybox",
			Version: "1.36.1-r5",
			Arch:    "x86_64",
			Files:   []string{"bin", "bin/busybox", "etc", "etc/motd"},
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestApkSourceSharedFileEntries(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "usr/share/common.txt", "shared")
	testutil.ApkInstalled(t, root, "P:pkg-a\nF:usr/share/common.txt\n\nP:pkg-b\nF:usr/share/common.txt\n")

	records, err := NewApkSourceAdapter().ResolveFiles(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"usr/share/common.txt"}, records[0].Files)
	assert.Equal(t, []string{"usr/share/common.txt"}, records[1].Files)
}

func TestApkSourceMissingDatabase(t *testing.T) {
	_, err := NewApkSourceAdapter().ResolveFiles(context.Background(), t.TempDir())
	require.Error(t, err)
}

func TestApkSourceKeepsPackagesReadBeforeScanError(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "lib/ld-musl-x86_64.so.1", "elf")
	oversized := "D:" + strings.Repeat("x", 2*1024*1024) + "\n"
	testutil.ApkInstalled(t, root, "P:musl\nF:lib\nR:ld-musl-x86_64.so.1\n\n"+oversized+"P:busybox\n")

	records, err := NewApkSourceAdapter().ResolveFiles(context.Background(), root)
	require.Error(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "musl", records[0].Name)
	assert.Equal(t, []string{"lib", "lib/ld-musl-x86_64.so.1"}, records[0].Files)
}
