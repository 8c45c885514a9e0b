// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFile reads a dotenv file and merges it into env. Relative paths
// are resolved against basePath. A path suffixed with '?' is optional and
// may be missing. Later files override earlier values for the same keys.
func LoadEnvFile(env map[string]string, path, basePath string) error {
	optional := strings.HasSuffix(path, "?")
	path = strings.TrimSuffix(path, "?")

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(basePath, filepath.FromSlash(path))
	}

	loaded, err := godotenv.Read(fullPath)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read env file '%s': %w", path, err)
	}
	maps.Copy(env, loaded)
	return nil
}
