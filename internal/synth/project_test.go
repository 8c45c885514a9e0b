// SPDX-License-Identifier: MPL-2.0

package synth

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/queryforge/queryforge/internal/segment"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

func mustSplit(t *testing.T, lines []string) *segment.Result {
	t.Helper()
	res, err := segment.Split(lines)
	if err != nil {
		t.Fatalf("segment.Split() error = %v", err)
	}
	return res
}

// A primary-language document with an instance entry point becomes a
// wrapped executable whose entry point forwards no arguments.
func TestSynthesize_WrapsInstanceEntryPoint(t *testing.T) {
	t.Parallel()

	doc := &querydoc.Document{
		Kind: querydoc.KindProgram,
		Name: "Demo",
		CodeLines: []string{
			"void Main()",
			"{",
			"    Helper.Run();",
			"}",
			"",
			"// Define other methods and classes here",
			"static class Helper { public static void Run() {} }",
		},
		Namespaces: []string{"System.Net", "System"},
	}
	seg := mustSplit(t, doc.CodeLines)

	p, err := Synthesize(doc, seg, Options{OutputKind: querydoc.OutputExe})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if p.SourceFile != "Demo.cs" || p.DescriptorFile != "Demo.csproj" {
		t.Errorf("file names = %q, %q", p.SourceFile, p.DescriptorFile)
	}
	src := p.SourceText
	for _, want := range []string{
		"namespace Demo",
		"    using System.Net;",
		"class Program",
		"static void Main(string[] args)",
		"new Program().QueryMain();",
		"private void QueryMain()",
		"#region Library",
		"static class Helper { public static void Run() {} }",
		"#endregion",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("source missing %q:\n%s", want, src)
		}
	}
	if strings.Contains(src, "QueryMain(args)") {
		t.Errorf("arguments forwarded without an args parameter:\n%s", src)
	}
	if n := strings.Count(src, "using System;"); n != 1 {
		t.Errorf("using System; appears %d times, want 1", n)
	}
	if strings.Index(src, "#region Library") > strings.Index(src, "static class Helper") {
		t.Errorf("library not bracketed by region markers:\n%s", src)
	}
	if p.HasManifest() {
		t.Errorf("unexpected manifest:\n%s", p.ManifestText)
	}
	if !strings.Contains(p.DescriptorText, "DEBUG;TRACE;EXE") {
		t.Errorf("descriptor missing EXE symbol:\n%s", p.DescriptorText)
	}
}

// An alternate-language executable with a dump helper starts with the alias
// binding followed by the unswapped program segment.
func TestSynthesize_AlternateDumpAliasFirst(t *testing.T) {
	t.Parallel()

	doc := &querydoc.Document{
		Kind: querydoc.KindFSharpProgram,
		Name: "Demo",
		CodeLines: []string{
			"let x = 1",
			"x.Dump()",
			"// Define other methods and classes here",
			"let helper () = 2",
		},
	}
	seg := mustSplit(t, doc.CodeLines)

	p, err := Synthesize(doc, seg, Options{OutputKind: querydoc.OutputExe, DumpHelper: "D"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	lines := strings.Split(p.SourceText, "\n")
	if lines[0] != "module Demo" {
		t.Fatalf("first line = %q, want module header", lines[0])
	}
	first := slices.IndexFunc(lines, func(l string) bool {
		return l != "" && !strings.HasPrefix(l, "module ") && !strings.HasPrefix(l, "open ")
	})
	if first < 0 {
		t.Fatalf("no statements in source:\n%s", p.SourceText)
	}
	want := []string{"let Dump = D.Dump", "let x = 1", "x.Dump()"}
	if diff := cmp.Diff(want, lines[first:first+len(want)]); diff != "" {
		t.Errorf("leading statements mismatch (-want +got):\n%s", diff)
	}
	if p.SourceFile != "Demo.fs" || p.DescriptorFile != "Demo.fsproj" {
		t.Errorf("file names = %q, %q", p.SourceFile, p.DescriptorFile)
	}
}

func TestSynthesize_LibraryOutput(t *testing.T) {
	t.Parallel()

	code := []string{
		"void Main() { }",
		"// Define other methods and classes here",
		"public class Widget { }",
	}

	t.Run("primary emits library only", func(t *testing.T) {
		t.Parallel()

		doc := &querydoc.Document{Kind: querydoc.KindProgram, Name: "Lib", CodeLines: code}
		p, err := Synthesize(doc, mustSplit(t, code), Options{OutputKind: querydoc.OutputLibrary})
		if err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
		if strings.Contains(p.SourceText, "QueryMain") || strings.Contains(p.SourceText, "#region") {
			t.Errorf("library output carries program code:\n%s", p.SourceText)
		}
		if !strings.Contains(p.SourceText, "public class Widget { }") {
			t.Errorf("library output missing library code:\n%s", p.SourceText)
		}
		if strings.Contains(p.DescriptorText, ";EXE") {
			t.Errorf("library descriptor has EXE symbol:\n%s", p.DescriptorText)
		}
		if got, want := p.ArtifactFile(), ArtifactPath("Lib", querydoc.OutputLibrary); got != want {
			t.Errorf("ArtifactFile() = %q, want %q", got, want)
		}
	})

	t.Run("alternate swaps segments", func(t *testing.T) {
		t.Parallel()

		fs := []string{
			"type Widget() = class end",
			"// Define other methods and classes here",
			"printfn \"driver\"",
		}
		doc := &querydoc.Document{Kind: querydoc.KindFSharpProgram, Name: "Lib", CodeLines: fs}
		p, err := Synthesize(doc, mustSplit(t, fs), Options{OutputKind: querydoc.OutputLibrary})
		if err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
		if !strings.Contains(p.SourceText, "type Widget() = class end") {
			t.Errorf("alternate library missing swapped segment:\n%s", p.SourceText)
		}
		if strings.Contains(p.SourceText, "driver") {
			t.Errorf("alternate library carries driver code:\n%s", p.SourceText)
		}
	})
}

func TestSynthesize_Manifest(t *testing.T) {
	t.Parallel()

	doc := &querydoc.Document{
		Kind:      querydoc.KindProgram,
		Name:      "Demo",
		CodeLines: []string{"static void Main() { }"},
		PackageReferences: []querydoc.PackageReference{
			{Name: "Newtonsoft.Json"},
			{Name: "Acme", Version: "2.0.0-beta", Prerelease: true},
		},
	}
	p, err := Synthesize(doc, mustSplit(t, doc.CodeLines), Options{})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !p.HasManifest() || p.ManifestFile != ManifestFileName {
		t.Fatalf("manifest missing: file=%q", p.ManifestFile)
	}
	if !strings.Contains(p.ManifestText, `"Newtonsoft.Json": "*"`) {
		t.Errorf("unresolved package not written as placeholder:\n%s", p.ManifestText)
	}
	if !strings.Contains(p.ManifestText, `"net46": {}`) {
		t.Errorf("default framework missing:\n%s", p.ManifestText)
	}
	if !p.Prerelease() {
		t.Error("Prerelease() = false")
	}
	if !strings.Contains(p.DescriptorText, `<None Include="project.json">`) {
		t.Errorf("descriptor does not list manifest:\n%s", p.DescriptorText)
	}

	resolved := slices.Clone(p.PackageReferences)
	resolved[0].Version = "9.0.1"
	if err := p.SetPackageReferences(resolved); err != nil {
		t.Fatalf("SetPackageReferences() error = %v", err)
	}
	if !strings.Contains(p.ManifestText, `"Newtonsoft.Json": "9.0.1"`) {
		t.Errorf("manifest not re-rendered:\n%s", p.ManifestText)
	}
	if doc.PackageReferences[0].Version != "" {
		t.Error("document references mutated")
	}
}
