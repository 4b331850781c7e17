package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"pkgfilehash/internal/testutil"
	"pkgfilehash/internal/types"
)

const abcDigest = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func debianRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFile(t, root, "usr/share/abc", "abc")
	testutil.WriteFile(t, root, "usr/share/common/license", "MIT")
	testutil.DpkgPackage(t, root, "abc-data", "/usr/share/abc", "/usr/share/common/license")
	testutil.DpkgPackage(t, root, "common-data", "/usr/share/common/license")
	testutil.DpkgStatus(t, root,
		"Package: abc-data\nStatus: install ok installed\nVersion: 1.0-1\nArchitecture: all",
		"Package: common-data\nStatus: install ok installed\nVersion: 2.0-1\nArchitecture: all",
	)
	return root
}

func TestInventoryWritesJSON(t *testing.T) {
	root := debianRoot(t)
	out := filepath.Join(t.TempDir(), "inventory.json")

	result, err := NewService().Inventory(context.Background(), InventoryRequest{
		ScanOptions: ScanOptions{RootFS: root, Sort: true},
		Output:      out,
	})
	require.NoError(t, err)
	assert.Equal(t, types.EcosystemDebian, result.Ecosystem)
	assert.Equal(t, 2, result.Packages)
	assert.Equal(t, 3, result.Records)
	assert.NoError(t, result.Warnings)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), gjson.GetBytes(data, "#").Int())
	assert.Equal(t, "usr/share/abc", gjson.GetBytes(data, "0.file").String())
	assert.Equal(t, abcDigest, gjson.GetBytes(data, "0.sha256").String())
}

func TestInventoryRejectsBadOptions(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name string
		req  InventoryRequest
	}{
		{name: "missing root", req: InventoryRequest{}},
		{name: "format", req: InventoryRequest{ScanOptions: ScanOptions{RootFS: root}, Format: "csv"}},
		{name: "rpm mode", req: InventoryRequest{ScanOptions: ScanOptions{RootFS: root, RPMMode: "docker"}}},
		{name: "workers", req: InventoryRequest{ScanOptions: ScanOptions{RootFS: root, Workers: -1}}},
		{name: "chunk size", req: InventoryRequest{ScanOptions: ScanOptions{RootFS: root, ChunkSize: -8}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService().Inventory(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
		})
	}
}

func TestNormalizeFormat(t *testing.T) {
	got, err := normalizeFormat("")
	require.NoError(t, err)
	assert.Equal(t, types.OutputFormatJSON, got)
	got, err = normalizeFormat(" SPDX ")
	require.NoError(t, err)
	assert.Equal(t, types.OutputFormatSPDX, got)
}

func TestDetect(t *testing.T) {
	root := debianRoot(t)
	svc := NewService()

	plain, err := svc.Detect(context.Background(), DetectRequest{RootFS: root})
	require.NoError(t, err)
	assert.Equal(t, types.EcosystemDebian, plain.Ecosystem)
	assert.Nil(t, plain.Packages)

	listed, err := svc.Detect(context.Background(), DetectRequest{RootFS: root, ListPackages: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"abc-data", "common-data"}, listed.Packages)

	_, err = svc.Detect(context.Background(), DetectRequest{RootFS: filepath.Join(root, "missing")})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestPackagesAndShared(t *testing.T) {
	root := debianRoot(t)
	dir := t.TempDir()
	svc := NewService()

	packages, err := svc.Packages(context.Background(), PackagesRequest{
		ScanOptions: ScanOptions{RootFS: root},
		Output:      filepath.Join(dir, "packages.json"),
	})
	require.NoError(t, err)
	want := []types.PackageSummary{
		{Name: "abc-data", Version: "1.0-1", Arch: "all", PURL: "pkg:deb/debian/abc-data@1.0-1?arch=all", Files: 2},
		{Name: "common-data", Version: "2.0-1", Arch: "all", PURL: "pkg:deb/debian/common-data@2.0-1?arch=all", Files: 1},
	}
	if diff := cmp.Diff(want, packages.Packages); diff != "" {
		t.Fatalf("packages mismatch (-want +got):\n%s", diff)
	}

	shared, err := svc.Shared(context.Background(), SharedRequest{
		ScanOptions: ScanOptions{RootFS: root},
		Output:      filepath.Join(dir, "shared.json"),
	})
	require.NoError(t, err)
	require.Len(t, shared.Files, 1)
	assert.Equal(t, "usr/share/common/license", shared.Files[0].File)
	assert.Equal(t, []string{"abc-data", "common-data"}, shared.Files[0].Packages)

	data, err := os.ReadFile(filepath.Join(dir, "shared.json"))
	require.NoError(t, err)
	assert.Equal(t, "usr/share/common/license", gjson.GetBytes(data, "0.file").String())
}

type scriptedRunner map[string]string

func (r scriptedRunner) Run(_ context.Context, _ string, argv ...string) types.RunResult {
	output, ok := r[strings.Join(argv, " ")]
	if !ok {
		return types.RunResult{ExitCode: 1, Reason: types.RunReasonExitStatus, Err: os.ErrNotExist}
	}
	return types.RunResult{Output: []byte(output), Reason: types.RunReasonOK}
}

func TestInventoryRPMChrootUsesRunner(t *testing.T) {
	root := t.TempDir()
	testutil.Mkdir(t, root, "var/lib/rpm")
	testutil.WriteFile(t, root, "usr/bin/rpm", "")
	testutil.WriteFile(t, root, "usr/bin/bash", "abc")
	svc := NewService()
	svc.Runner = scriptedRunner{
		"/usr/bin/rpm -qa --qf %{NAME}\t%{VERSION}-%{RELEASE}\t%{ARCH}\n": "bash\t5.1.8-9.el9\tx86_64\n",
		"/usr/bin/rpm -ql bash": "/usr/bin/bash\n/usr/share/doc/bash/README\n",
	}

	result, err := svc.Inventory(context.Background(), InventoryRequest{
		ScanOptions: ScanOptions{RootFS: root, RPMMode: types.RPMModeChroot},
		Output:      filepath.Join(t.TempDir(), "rpm.json"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.EcosystemRPM, result.Ecosystem)
	assert.Equal(t, 1, result.Packages)
	assert.Equal(t, 1, result.Records)
}

func TestDedupFileMode(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "image-vulns.json", `{"matches": [
		{"vulnerability": {"id": "CVE-1"}, "artifact": {"name": "a", "purl": "pkg:deb/debian/a@1"}},
		{"vulnerability": {"id": "CVE-1"}, "artifact": {"name": "b", "purl": "pkg:deb/debian/b@1"}},
		{"vulnerability": {"id": "CVE-2"}, "artifact": {"name": "a", "purl": "pkg:deb/debian/a@1"}}
	]}`)

	result, err := NewService().Dedup(DedupRequest{Input: input})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(dir, "formatted_image-vulns.json"), result.Files[0].Output)
	assert.Equal(t, 2, result.Files[0].Groups)

	data, err := os.ReadFile(result.Files[0].Output)
	require.NoError(t, err)
	assert.Equal(t, "CVE-1", gjson.GetBytes(data, "matches.0.vulnerability.id").String())
	assert.Equal(t, `["a","b"]`, gjson.GetBytes(data, "matches.0.artifact.name|@ugly").String())
}

func TestDedupDirectoryMode(t *testing.T) {
	dir := t.TempDir()
	report := `{"matches": [{"vulnerability": {"id": "CVE-1"}, "artifact": {"name": "a"}}]}`
	testutil.WriteFile(t, dir, "alpine-vulns.json", report)
	testutil.WriteFile(t, dir, "debian-vulns.json", report)
	testutil.WriteFile(t, dir, "formatted_old-vulns.json", report)
	testutil.WriteFile(t, dir, "notes.txt", "skip me")
	testutil.Mkdir(t, dir, "nested-vulns.json")
	out := filepath.Join(t.TempDir(), "formatted")

	result, err := NewService().Dedup(DedupRequest{Input: dir, Output: out})
	require.NoError(t, err)
	var outputs []string
	for _, file := range result.Files {
		outputs = append(outputs, filepath.Base(file.Output))
	}
	assert.Equal(t, []string{"formatted_alpine-vulns.json", "formatted_debian-vulns.json"}, outputs)
	for _, name := range outputs {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestDedupErrors(t *testing.T) {
	_, err := NewService().Dedup(DedupRequest{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = NewService().Dedup(DedupRequest{Input: filepath.Join(t.TempDir(), "none.json")})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}
