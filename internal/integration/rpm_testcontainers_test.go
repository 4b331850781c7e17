//go:build integration

package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"pkgfilehash/internal/app"
	"pkgfilehash/internal/types"
)

const rockyImage = "rockylinux/rockylinux:9-minimal"

func TestRPMNativeInventoryWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration in short mode")
	}

	ctx := t.Context()
	container := startRocky(ctx, t)

	rootfs := t.TempDir()
	copyFromContainer(ctx, t, container, "/var/lib/rpm/rpmdb.sqlite", rootfs)
	bash := copyFromContainer(ctx, t, container, "/usr/bin/bash", rootfs)
	data, err := os.ReadFile(bash)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	wantDigest := hex.EncodeToString(sum[:])

	service := app.NewService()
	detected, err := service.Detect(ctx, app.DetectRequest{
		RootFS:       rootfs,
		ListPackages: true,
		RPMMode:      types.RPMModeNative,
	})
	require.NoError(t, err)
	require.Equal(t, types.EcosystemRPM, detected.Ecosystem)
	require.Contains(t, detected.Packages, "bash")
	require.Contains(t, detected.Packages, "rpm")

	summary, err := service.Packages(ctx, app.PackagesRequest{
		ScanOptions: app.ScanOptions{RootFS: rootfs, RPMMode: types.RPMModeNative},
		Output:      filepath.Join(t.TempDir(), "packages.json"),
	})
	require.NoError(t, err)
	var bashFiles int
	for _, pkg := range summary.Packages {
		if pkg.Name == "bash" {
			bashFiles = pkg.Files
			require.Contains(t, pkg.PURL, "pkg:rpm/rocky/bash@")
		}
	}
	require.Equal(t, 1, bashFiles)

	out := filepath.Join(t.TempDir(), "inventory.json")
	result, err := service.Inventory(ctx, app.InventoryRequest{
		ScanOptions: app.ScanOptions{RootFS: rootfs, RPMMode: types.RPMModeNative, Sort: true},
		Output:      out,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Records, 1)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(content), wantDigest)
	require.Contains(t, string(content), `"file": "usr/bin/bash"`)
}

func startRocky(ctx context.Context, t *testing.T) testcontainers.Container {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:      rockyImage,
		Cmd:        []string{"sleep", "infinity"},
		WaitingFor: wait.ForExec([]string{"test", "-s", "/var/lib/rpm/rpmdb.sqlite"}).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})
	return container
}

// copyFromContainer copies an absolute container path into the same
// location below rootfs and returns the host path.
func copyFromContainer(ctx context.Context, t *testing.T, container testcontainers.Container, path string, rootfs string) string {
	t.Helper()
	reader, err := container.CopyFileFromContainer(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	target := filepath.Join(rootfs, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	file, err := os.Create(target)
	require.NoError(t, err)
	defer file.Close()
	_, err = io.Copy(file, reader)
	require.NoError(t, err)
	return target
}
