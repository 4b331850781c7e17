package core

import (
	apkversion "github.com/knqyf263/go-apk-version"
	debversion "github.com/knqyf263/go-deb-version"
	rpmversion "github.com/knqyf263/go-rpm-version"

	"pkgfilehash/internal/types"
)

// versionCache memoizes version parse results per ecosystem so that
// packages sharing a version string are only parsed once.
type versionCache struct {
	ecosystem types.Ecosystem
	checked   map[string]error
}

func newVersionCache(ecosystem types.Ecosystem) *versionCache {
	return &versionCache{
		ecosystem: ecosystem,
		checked:   map[string]error{},
	}
}

// validate reports whether value parses under the ecosystem's version
// grammar. Empty versions and unknown ecosystems are accepted.
func (c *versionCache) validate(value string) error {
	if value == "" {
		return nil
	}
	if err, ok := c.checked[value]; ok {
		return err
	}
	var err error
	switch c.ecosystem {
	case types.EcosystemDebian:
		_, err = debversion.NewVersion(value)
	case types.EcosystemAlpine:
		_, err = apkversion.NewVersion(value)
	}
	c.checked[value] = err
	return err
}

// compare orders two versions of the same package; unparsable versions
// compare equal.
func (c *versionCache) compare(a string, b string) int {
	switch c.ecosystem {
	case types.EcosystemDebian:
		v1, err := debversion.NewVersion(a)
		if err != nil {
			return 0
		}
		v2, err := debversion.NewVersion(b)
		if err != nil {
			return 0
		}
		return v1.Compare(v2)
	case types.EcosystemAlpine:
		v1, err := apkversion.NewVersion(a)
		if err != nil {
			return 0
		}
		v2, err := apkversion.NewVersion(b)
		if err != nil {
			return 0
		}
		switch {
		case v1.LessThan(v2):
			return -1
		case v2.LessThan(v1):
			return 1
		}
		return 0
	case types.EcosystemRPM:
		return rpmversion.NewVersion(a).Compare(rpmversion.NewVersion(b))
	default:
		return 0
	}
}
