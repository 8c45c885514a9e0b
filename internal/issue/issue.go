// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Id identifies a catalog entry.
type Id int

const (
	DocumentNotFoundId Id = iota + 1
	DocumentParseErrorId
	UnsupportedKindId
	EmptyLibraryId
	OutputExistsId
	DirectiveParseErrorId
	LockNotFoundId
	RestoreFailedId
	BuildFailedId
	PublishFailedId
	ArtifactNotFoundId
	ConfigLoadFailedId
	PermissionDeniedId
)

// MarkdownMsg is the markdown body of an issue.
type MarkdownMsg string

// Issue is a catalog entry with user guidance for a class of failure.
type Issue struct {
	id    Id
	mdMsg MarkdownMsg
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the issue's markdown for the terminal with the given
// glamour style ("dark", "light", "notty", or a style file path).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	documentNotFoundIssue = &Issue{
		id: DocumentNotFoundId,
		mdMsg: `
# Query document not found!

The path given to queryforge does not point to a readable file.

## Things you can try:
- Check the path for typos
- Pass the document itself, not the directory that contains it:
~~~
$ queryforge convert ./queries/report.linq
~~~`,
	}

	documentParseErrorIssue = &Issue{
		id: DocumentParseErrorId,
		mdMsg: `
# The query document could not be read!

A query document starts with an XML header and is followed by code:

~~~xml
<Query Kind="Program">
  <NuGetReference>Newtonsoft.Json</NuGetReference>
  <Namespace>Newtonsoft.Json</Namespace>
</Query>

void Main()
{
}
~~~

## Things you can try:
- Make sure the header ends with a closing ` + "`</Query>`" + ` tag
- Save the document again from the editor that created it`,
	}

	unsupportedKindIssue = &Issue{
		id: UnsupportedKindId,
		mdMsg: `
# Unsupported document kind!

Only program documents can be converted: ` + "`Kind=\"Program\"`" + ` (C#) and
` + "`Kind=\"FSharpProgram\"`" + ` (F#). Expressions and statement documents have no
entry point to build.

## Things you can try:
- Change the document to a program and wrap its code in ` + "`void Main()`",
	}

	emptyLibraryIssue = &Issue{
		id: EmptyLibraryId,
		mdMsg: `
# Nothing to put in the library!

Library output only contains the code below the marker line:

~~~csharp
// Define other methods and classes here
~~~

For F# documents the code above the marker is used instead.

## Things you can try:
- Add the marker line and move the shared types below it
- Build an executable instead:
~~~
$ queryforge convert report.linq --kind Exe
~~~`,
	}

	outputExistsIssue = &Issue{
		id: OutputExistsId,
		mdMsg: `
# Output files already exist!

queryforge refuses to replace a source file or project file it did not just create.

## Things you can try:
- Write to a fresh directory with ` + "`-o`" + `
- Allow replacing the files:
~~~
$ queryforge convert report.linq --overwrite
~~~`,
	}

	directiveParseErrorIssue = &Issue{
		id: DirectiveParseErrorId,
		mdMsg: `
# Invalid queryforge directive!

Directive comments accept only literal assignments:

~~~csharp
// queryforge: unsafeCode = true
// queryforge: exeOnly = { NugetPackages: ["Spectre.Console"], OutputKind: "WinExe" }
~~~

## Allowed keys:
- ` + "`unsafeCode`" + `: boolean
- ` + "`exeOnly`" + `: mapping with ` + "`NugetPackages`, `References`, `GacReferences`, `Namespaces`" + ` (lists of strings) and ` + "`OutputKind`" + ` (` + "`Exe` or `WinExe`" + `)`,
	}

	lockNotFoundIssue = &Issue{
		id: LockNotFoundId,
		mdMsg: `
# Lock file missing after restore!

The restore tool exited successfully but did not write ` + "`project.lock.json`" + `
next to ` + "`project.json`" + `.

## Things you can try:
- Check that the configured restore tool understands ` + "`project.json`" + ` manifests
- Inspect the restore command with ` + "`queryforge config show`",
	}

	restoreFailedIssue = &Issue{
		id: RestoreFailedId,
		mdMsg: `
# Package restore failed!

## Things you can try:
- Check network access to the package sources
- Add a source explicitly:
~~~
$ queryforge convert report.linq --source https://api.nuget.org/v3/index.json
~~~
- Run the restore command shown above by hand to see its full output`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Build failed!

The generated project did not compile. The files are left in the output
directory so you can inspect them.

## Things you can try:
- Open the generated source file and fix the reported errors in the query
- Check that every assembly the query uses is referenced in its header
- Generate the files without building:
~~~
$ queryforge convert report.linq --no-build
~~~`,
	}

	publishFailedIssue = &Issue{
		id: PublishFailedId,
		mdMsg: `
# Publish failed!

The library was built but the publish tool reported an error.

## Things you can try:
- Check the credentials the publish tool uses
- Verify ` + "`tools.publish`" + ` in your configuration`,
	}

	artifactNotFoundIssue = &Issue{
		id: ArtifactNotFoundId,
		mdMsg: `
# Build output missing!

The build tool exited successfully but the expected file under ` + "`bin/Debug`" + ` is missing.

## Things you can try:
- Check that the configured build tool honors the project's output path
- Build the generated project by hand and look for the output`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Compare it with the defaults:
~~~
$ queryforge config show
~~~
- Check ` + "`queryforge.toml`" + ` next to the document for invalid keys`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

## Things you can try:
- Check the permissions of the output directory
- Write to a directory you own with ` + "`-o`",
	}

	issues = map[Id]*Issue{
		documentNotFoundIssue.Id():    documentNotFoundIssue,
		documentParseErrorIssue.Id():  documentParseErrorIssue,
		unsupportedKindIssue.Id():     unsupportedKindIssue,
		emptyLibraryIssue.Id():        emptyLibraryIssue,
		outputExistsIssue.Id():        outputExistsIssue,
		directiveParseErrorIssue.Id(): directiveParseErrorIssue,
		lockNotFoundIssue.Id():        lockNotFoundIssue,
		restoreFailedIssue.Id():       restoreFailedIssue,
		buildFailedIssue.Id():         buildFailedIssue,
		publishFailedIssue.Id():       publishFailedIssue,
		artifactNotFoundIssue.Id():    artifactNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
