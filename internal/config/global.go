// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory. os.UserHomeDir
// does not honor HOME on every platform, so tests set this instead.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
