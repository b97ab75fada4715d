package sdk

import (
	"path/filepath"

	"github.com/goplus/jcbuild/internal/errs"
)

const targetHint = "Only a 3.1.0 kit can build for another SDK version (3.0.4, 3.0.5 or 3.1.0); " +
	"otherwise leave targetsdk unset or point jckit at an SDK of the wanted version."

// DetectFunc discovers the SDK at a filesystem root.
type DetectFunc func(root string) (*SDK, error)

// legacyTargets are the generations a 3.1.0 kit can build for.
var legacyTargets = []Version{V304, V305, V310}

// Compatible reports whether a package built with kit can target version t.
func Compatible(kit, t Version) bool {
	if kit == t {
		return true
	}
	return kit == V310 && t.IsOneOf(legacyTargets...)
}

// Resolve decides the target SDK for kit. requested may be empty (target is
// the kit), a version tag or the path of another SDK installation. A path is
// discovered with detect (Detect when nil) and must pass the same
// compatibility check as a tag.
func Resolve(kit *SDK, requested string, detect DetectFunc) (*SDK, *SDK, error) {
	if kit == nil {
		return nil, nil, errs.Helping("jckit", "no usable SDK referenced")
	}
	if requested == "" {
		return kit, kit, nil
	}
	if v, ok := ParseVersion(requested); ok {
		if !Compatible(kit.Version, v) {
			return nil, nil, errs.Config("targetsdk", "targetsdk %s not compatible with jckit %s", v, kit.Version).
				WithHint(targetHint)
		}
		return kit, kit.Target(v), nil
	}

	if detect == nil {
		detect = Detect
	}
	target, err := detect(requested)
	if err != nil {
		return nil, nil, errs.Config("targetsdk", "invalid targetsdk %s", requested).WithCause(err).WithHint(targetHint)
	}
	if !Compatible(kit.Version, target.Version) {
		return nil, nil, errs.Config("targetsdk", "targetsdk %s not compatible with jckit %s", target.Version, kit.Version).
			WithHint(targetHint)
	}
	return kit, target, nil
}

// ExportDir returns the directory of target API export files to search
// during conversion and verification.
func ExportDir(kit, target *SDK) (string, error) {
	switch {
	case target.Version == kit.Version:
		return target.ExportDir, nil
	case kit.Version == V310 && target.Version.IsOneOf(V304, V305):
		return filepath.Join(kit.Root, "api_export_files_"+target.Version.String()), nil
	}
	return "", errs.Config("targetsdk", "targetsdk %s incompatible with jckit %s", target.Version, kit.Version).
		WithHint(targetHint)
}

// UsesTargetFlag reports whether the converter of kit selects the target API
// itself through its -target option, instead of being given the target
// export directory.
func UsesTargetFlag(kit, target *SDK) bool {
	return kit.Version == V310 && target.Version.IsOneOf(legacyTargets...)
}
