package env

import (
	"os"
	"path/filepath"
)

const (
	// JCHomeVar names the SDK used when a build names none.
	JCHomeVar = "JC_HOME"
	// TmpVar names a fixed work directory that is reused and never cleaned.
	TmpVar = "JCBUILD_TMP"
	// LegacyTmpVar is the name TmpVar had in older build scripts.
	LegacyTmpVar = "ANT_JAVACARD_TMP"
)

// JCHome returns the SDK root from the environment, or "".
func JCHome() string {
	return os.Getenv(JCHomeVar)
}

// TmpOverride returns the fixed work directory from the environment, or "".
func TmpOverride() string {
	if dir := os.Getenv(TmpVar); dir != "" {
		return dir
	}
	return os.Getenv(LegacyTmpVar)
}

// WorkDir returns the per-user directory jcbuild keeps state in.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".jcbuild"), nil
}
