package irfile

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/typeforge/errors"
)

// CurrentVersion is written into every document this package produces.
const CurrentVersion = "1.0.0"

// SupportedVersions is the range of document versions the loader accepts.
const SupportedVersions = "^1"

// CheckVersion rejects documents outside SupportedVersions. An empty
// version is treated as CurrentVersion.
func CheckVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(errors.ErrUnsupportedVersion, "invalid version %q: %v", version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return errors.Wrap(err, "invalid supported version range")
	}
	if !constraint.Check(v) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrUnsupportedVersion, "document version %s", v),
			"this build reads %s documents (current %s)", SupportedVersions, CurrentVersion)
	}
	return nil
}
