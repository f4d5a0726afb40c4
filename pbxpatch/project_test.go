package pbxpatch

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testManifest = `// !$*UTF8*$!
{
	archiveVersion = 1;
	classes = {
	};
	objectVersion = 56;
	objects = {

/* Begin PBXBuildFile section */
		AA000001 /* AppDelegate.swift in Sources */ = {isa = PBXBuildFile; fileRef = AA000002; };
/* End PBXBuildFile section */

/* Begin PBXFileReference section */
		AA000002 /* AppDelegate.swift */ = {isa = PBXFileReference; lastKnownFileType = sourcecode.swift; path = AppDelegate.swift; sourceTree = "<group>"; };
/* End PBXFileReference section */

/* Begin PBXGroup section */
		AA000003 /* DockTile */ = {
			isa = PBXGroup;
			children = (
				AA000002 /* AppDelegate.swift */,
				AA000004 /* Views */,
			);
			path = DockTile;
			sourceTree = "<group>";
		};
		AA000004 /* Views */ = {
			isa = PBXGroup;
			children = (
			);
			path = Views;
			sourceTree = "<group>";
		};
/* End PBXGroup section */

/* Begin PBXSourcesBuildPhase section */
		AA000005 /* Sources */ = {
			isa = PBXSourcesBuildPhase;
			buildActionMask = 2147483647;
			files = (
				AA000001 /* AppDelegate.swift in Sources */,
			);
			runOnlyForDeploymentPostprocessing = 0;
		};
/* End PBXSourcesBuildPhase section */
	};
	rootObject = AA000000 /* Project object */;
}
`

func newTestProject(t *testing.T, manifest string, options ...ProjectOption) *PbxProject {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.pbxproj")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))

	options = append([]ProjectOption{WithLogger(zap.NewNop()), WithMainGroup("DockTile")}, options...)
	project := NewPbxProject(path, options...)
	require.NoError(t, project.Load())
	return project
}

// sectionOf returns the text between the Begin/End markers of a section.
func sectionOf(t *testing.T, buffer, name string) string {
	t.Helper()
	re := regexp.MustCompile(`(?s)/\* Begin ` + name + ` section \*/\n(.*?)\n/\* End ` + name + ` section \*/`)
	m := re.FindStringSubmatch(buffer)
	require.NotNil(t, m, "section %s not found", name)
	return m[1]
}

func TestAddSourceFiles(t *testing.T) {
	paths := []string{
		"Models/ConfigurationModels.swift",
		"Managers/ConfigurationManager.swift",
		"Views/DockTileConfigurationView.swift",
		"Views/DockTileSidebarView.swift",
	}

	project := newTestProject(t, testManifest)
	report := project.AddSourceFiles(paths)
	buffer := project.Contents()

	require.Len(t, report.Added, len(paths))
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Missing)

	t.Run("one file reference per file", func(t *testing.T) {
		refs := sectionOf(t, buffer, "PBXFileReference")
		for _, entry := range report.Added {
			line := entry.FileRef + " /* " + entry.Basename + " */ = {isa = PBXFileReference; lastKnownFileType = sourcecode.swift; path = " + entry.Basename + `; sourceTree = "<group>"; };`
			assert.Equal(t, 1, strings.Count(refs, line), "file reference for %s", entry.Path)
		}
	})

	t.Run("one build file entry linking build id to file reference", func(t *testing.T) {
		buildFiles := sectionOf(t, buffer, "PBXBuildFile")
		for _, entry := range report.Added {
			line := entry.Uuid + " /* " + entry.Basename + " in Sources */ = {isa = PBXBuildFile; fileRef = " + entry.FileRef + "; };"
			assert.Equal(t, 1, strings.Count(buildFiles, line), "build file for %s", entry.Path)
		}
	})

	t.Run("group children contain the folder's file references", func(t *testing.T) {
		for _, entry := range report.Added {
			group := pbxGroupChildrenRegex(entry.Group).FindStringSubmatch(buffer)
			require.NotNil(t, group, "group %s", entry.Group)
			assert.Contains(t, group[1], entry.FileRef+" /* "+entry.Basename+" */,")
		}
	})

	t.Run("existing group is reused, new groups are created", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(buffer, "/* Views */ = {"))
		assert.ElementsMatch(t, []string{"Models", "Managers"}, report.CreatedGroups)
		for _, name := range report.CreatedGroups {
			assert.Contains(t, buffer, "path = "+name+";")
		}
	})

	t.Run("created groups registered under the main group", func(t *testing.T) {
		main := pbxGroupChildrenRegex("DockTile").FindStringSubmatch(buffer)
		require.NotNil(t, main)
		assert.Equal(t, 1, strings.Count(main[1], "/* Models */,"))
		assert.Equal(t, 1, strings.Count(main[1], "/* Managers */,"))
	})

	t.Run("one Sources build phase entry per build id", func(t *testing.T) {
		phase := pbxSourcesBuildPhaseRegex.FindStringSubmatch(buffer)
		require.NotNil(t, phase)
		for _, entry := range report.Added {
			assert.Equal(t, 1, strings.Count(phase[2], entry.Uuid), "build phase entry for %s", entry.Path)
		}
	})

	t.Run("write rewrites the manifest in place", func(t *testing.T) {
		require.NoError(t, project.Write())
		data, err := os.ReadFile(project.filePath)
		require.NoError(t, err)
		assert.Equal(t, buffer, string(data))
	})
}

func TestAddSourceFiles_RunTwice(t *testing.T) {
	paths := []string{
		"Models/ConfigurationModels.swift",
		"Views/CustomiseTileView.swift",
	}

	project := newTestProject(t, testManifest)
	first := project.AddSourceFiles(paths)
	require.Len(t, first.Added, 2)
	require.NoError(t, project.Write())

	again := NewPbxProject(project.filePath, WithLogger(zap.NewNop()), WithMainGroup("DockTile"))
	require.NoError(t, again.Load())
	before := again.Contents()

	second := again.AddSourceFiles(paths)
	assert.Empty(t, second.Added)
	assert.ElementsMatch(t, paths, second.Skipped)
	assert.Equal(t, before, again.Contents(), "second run must not change the manifest")

	for _, entry := range first.Added {
		assert.Equal(t, 1, strings.Count(again.Contents(), "path = "+entry.Basename+";"))
	}
}

func TestAddSourceFiles_MissingBuildFileSection(t *testing.T) {
	manifest := strings.ReplaceAll(testManifest, "/* Begin PBXBuildFile section */", "")
	manifest = strings.ReplaceAll(manifest, "/* End PBXBuildFile section */", "")

	project := newTestProject(t, manifest)
	report := project.AddSourceFiles([]string{"Models/ConfigurationModels.swift"})

	// the run completes; only the build-file edit is skipped
	require.Len(t, report.Added, 1)
	assert.Equal(t, []string{"PBXBuildFile"}, report.Missing)

	entry := report.Added[0]
	assert.NotContains(t, project.Contents(), "isa = PBXBuildFile; fileRef = "+entry.FileRef)
	assert.Contains(t, sectionOf(t, project.Contents(), "PBXFileReference"), entry.FileRef)
}

func TestAddSourceFiles_MissingMainGroup(t *testing.T) {
	project := newTestProject(t, testManifest, WithMainGroup("NoSuchGroup"))
	report := project.AddSourceFiles([]string{"Components/ItemRowView.swift"})

	require.Len(t, report.Added, 1)
	assert.Equal(t, []string{"Components"}, report.CreatedGroups)
	assert.Contains(t, report.Missing, "main group NoSuchGroup")

	// the group exists but is orphaned
	assert.Contains(t, project.Contents(), "/* Components */ = {")
	main := pbxGroupChildrenRegex("DockTile").FindStringSubmatch(project.Contents())
	require.NotNil(t, main)
	assert.NotContains(t, main[1], "/* Components */,")
}

func TestAddSourceFiles_TopLevelFileHasNoGroup(t *testing.T) {
	project := newTestProject(t, testManifest)
	report := project.AddSourceFiles([]string{"Bootstrap.swift"})

	require.Len(t, report.Added, 1)
	entry := report.Added[0]
	assert.Empty(t, entry.Group)
	assert.Empty(t, report.CreatedGroups)
	assert.Empty(t, report.Missing)

	assert.Contains(t, sectionOf(t, project.Contents(), "PBXFileReference"), entry.FileRef)
	phase := pbxSourcesBuildPhaseRegex.FindStringSubmatch(project.Contents())
	require.NotNil(t, phase)
	assert.Contains(t, phase[2], entry.Uuid)
}

func TestAddSourceFiles_AlreadyRegisteredFilenameSkipped(t *testing.T) {
	project := newTestProject(t, testManifest)
	report := project.AddSourceFiles([]string{"App/AppDelegate.swift"})

	assert.Empty(t, report.Added)
	assert.Equal(t, []string{"App/AppDelegate.swift"}, report.Skipped)
}

func TestLoad_MissingFile(t *testing.T) {
	project := NewPbxProject(filepath.Join(t.TempDir(), "nope.pbxproj"), WithLogger(zap.NewNop()))
	err := project.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
