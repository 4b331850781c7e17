package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pkgfilehash/internal/testutil"
	"pkgfilehash/internal/types"
)

func TestEcosystemDetector(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		want  types.Ecosystem
	}{
		{
			name:  "debian",
			setup: func(t *testing.T, root string) { testutil.Mkdir(t, root, "var/lib/dpkg/info") },
			want:  types.EcosystemDebian,
		},
		{
			name:  "alpine",
			setup: func(t *testing.T, root string) { testutil.ApkInstalled(t, root, "") },
			want:  types.EcosystemAlpine,
		},
		{
			name:  "rpm legacy path",
			setup: func(t *testing.T, root string) { testutil.Mkdir(t, root, "var/lib/rpm") },
			want:  types.EcosystemRPM,
		},
		{
			name:  "rpm sysimage path",
			setup: func(t *testing.T, root string) { testutil.Mkdir(t, root, "usr/lib/sysimage/rpm") },
			want:  types.EcosystemRPM,
		},
		{
			name:  "no marker",
			setup: func(t *testing.T, root string) { testutil.Mkdir(t, root, "etc") },
			want:  types.EcosystemUnknown,
		},
		{
			name: "debian wins over rpm",
			setup: func(t *testing.T, root string) {
				testutil.Mkdir(t, root, "var/lib/rpm")
				testutil.Mkdir(t, root, "var/lib/dpkg/info")
			},
			want: types.EcosystemDebian,
		},
		{
			name: "alpine wins over rpm",
			setup: func(t *testing.T, root string) {
				testutil.Mkdir(t, root, "var/lib/rpm")
				testutil.ApkInstalled(t, root, "")
			},
			want: types.EcosystemAlpine,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)
			assert.Equal(t, tt.want, NewEcosystemDetector().Detect(root))
		})
	}
}

func TestEcosystemDetectorMissingRoot(t *testing.T) {
	assert.Equal(t, types.EcosystemUnknown, NewEcosystemDetector().Detect("/nonexistent/rootfs"))
}
