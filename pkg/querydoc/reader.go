// SPDX-License-Identifier: MPL-2.0

package querydoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	headerEnd = "</Query>"

	runtimeDirectoryPrefix = "<RuntimeDirectory>"
)

// ErrMissingHeader is returned when a document has no <Query> header.
var ErrMissingHeader = errors.New("query header not found")

type (
	queryHeader struct {
		XMLName         xml.Name         `xml:"Query"`
		Kind            string           `xml:"Kind,attr"`
		References      []string         `xml:"Reference"`
		GACReferences   []string         `xml:"GACReference"`
		NuGetReferences []nugetReference `xml:"NuGetReference"`
		Namespaces      []string         `xml:"Namespace"`
	}

	nugetReference struct {
		Name       string `xml:",chardata"`
		Version    string `xml:"Version,attr"`
		Prerelease bool   `xml:"Prerelease,attr"`
	}
)

// ReadFile reads and parses the query document at path. The project name
// is derived from the file's base name.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query document: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := Parse(ProjectName(base), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse splits data into its XML header and code lines and builds a Document.
// The kind is copied verbatim; callers validate it with Kind.Validate.
func Parse(name string, data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	end := bytes.Index(data, []byte(headerEnd))
	if end < 0 {
		return nil, ErrMissingHeader
	}
	end += len(headerEnd)

	var header queryHeader
	if err := xml.Unmarshal(data[:end], &header); err != nil {
		return nil, fmt.Errorf("parse query header: %w", err)
	}

	doc := &Document{
		Kind:      Kind(header.Kind),
		Name:      name,
		CodeLines: codeLines(data[end:]),
	}
	for _, ns := range header.Namespaces {
		if ns = strings.TrimSpace(ns); ns != "" {
			doc.AddNamespace(ns)
		}
	}
	for _, ref := range header.References {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if strings.HasPrefix(ref, runtimeDirectoryPrefix) {
			asm := assemblyName(ref)
			doc.SystemReferences = append(doc.SystemReferences, SystemReference{Name: asm, FullName: asm})
			continue
		}
		doc.References = append(doc.References, ref)
	}
	for _, gac := range header.GACReferences {
		gac = strings.TrimSpace(gac)
		if gac == "" {
			continue
		}
		short, _, _ := strings.Cut(gac, ",")
		doc.SystemReferences = append(doc.SystemReferences, SystemReference{
			Name:     strings.TrimSpace(short),
			FullName: gac,
		})
	}
	for _, pkg := range header.NuGetReferences {
		pkgName := strings.TrimSpace(pkg.Name)
		if pkgName == "" {
			continue
		}
		doc.AddPackageReference(PackageReference{
			Name:       pkgName,
			Version:    strings.TrimSpace(pkg.Version),
			Prerelease: pkg.Prerelease,
		})
	}
	return doc, nil
}

// codeLines returns the lines following the header. The remainder of the
// header's closing line and one separating blank line are dropped, as is the
// empty element produced by a trailing newline.
func codeLines(rest []byte) []string {
	text := strings.ReplaceAll(string(rest), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// assemblyName extracts "System.Xml" from "<RuntimeDirectory>\System.Xml.dll".
func assemblyName(ref string) string {
	if i := strings.LastIndexAny(ref, `\/`); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.TrimSuffix(ref, ".dll")
}

// ProjectName turns a file base name into an identifier usable as an
// assembly and namespace name.
func ProjectName(base string) string {
	var sb strings.Builder
	for i, r := range base {
		switch {
		case unicode.IsLetter(r) || r == '_':
			sb.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "Query"
	}
	return sb.String()
}
