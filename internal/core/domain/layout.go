package domain

import "path/filepath"

const (
	// PourDirName is the name of the internal state directory.
	PourDirName = ".pour"

	// StoreDirName is the name of the build info store directory.
	StoreDirName = "store"

	// ConfigFileName is the name of the task file.
	ConfigFileName = "pour.yaml"

	// DefaultTaskName is run when no task is named on the command line.
	DefaultTaskName = "default"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// OutputDirPerm is the permission for directories created under the output tree (rwxr-xr-x).
	OutputDirPerm = 0o755

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultStorePath returns the default path for the build info store.
// It joins .pour and store.
func DefaultStorePath() string {
	return filepath.Join(PourDirName, StoreDirName)
}
