// SPDX-License-Identifier: MPL-2.0

package synth

import (
	"bytes"
	"encoding/json"

	"github.com/queryforge/queryforge/pkg/querydoc"
)

// ManifestFileName is the package manifest consumed by the restore tool.
const ManifestFileName = "project.json"

// RenderManifest renders the package manifest, one dependency per reference
// in document order. Unresolved versions are written as the placeholder.
// It returns "" when refs is empty.
func RenderManifest(refs []querydoc.PackageReference, targetFramework string) (string, error) {
	if len(refs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n  \"dependencies\": {\n")
	for i, ref := range refs {
		name, err := json.Marshal(ref.Name)
		if err != nil {
			return "", err
		}
		version, err := json.Marshal(ref.ManifestVersion())
		if err != nil {
			return "", err
		}
		buf.WriteString("    ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(version)
		if i < len(refs)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	framework, err := json.Marshal(targetFramework)
	if err != nil {
		return "", err
	}
	buf.WriteString("  },\n  \"frameworks\": {\n    ")
	buf.Write(framework)
	buf.WriteString(": {}\n  },\n  \"runtimes\": {\n    \"win\": {}\n  }\n}\n")
	return buf.String(), nil
}
