/**
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
'License'); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at
http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
'AS IS' BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

package pbxpatch

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Section editors. Each locates its section by pattern search over the
// whole buffer and splices new entries in. A section that cannot be
// found is reported and skipped; the manifest is then only partially
// updated.

var (
	pbxBuildFileSectionRegex     = regexp.MustCompile(`(?s)(/\* Begin PBXBuildFile section \*/\n)(.*?)(\n/\* End PBXBuildFile section \*/)`)
	pbxFileReferenceSectionRegex = regexp.MustCompile(`(?s)(/\* Begin PBXFileReference section \*/\n)(.*?)(\n/\* End PBXFileReference section \*/)`)
	pbxSourcesBuildPhaseRegex    = regexp.MustCompile(`(\w+ /\* Sources \*/ = \{[\s\S]*?files = \()([\s\S]*?)(\);)`)
)

const PBXGROUP_SECTION_END = "/* End PBXGroup section */"

func pbxGroupChildrenRegex(name string) *regexp.Regexp {
	return regexp.MustCompile(`\w+ /\* ` + regexp.QuoteMeta(name) + ` \*/ = \{[\s\S]*?children = \(([\s\S]*?)\);`)
}

// spliceSection replaces buffer[start:end] with the existing content,
// trailing whitespace trimmed, followed by the given lines.
func (p *PbxProject) spliceSection(start, end int, lines []string) {
	existing := strings.TrimRight(p.buffer[start:end], " \t\r\n")
	p.buffer = p.buffer[:start] + existing + "\n" + strings.Join(lines, "\n") + p.buffer[end:]
}

func (p *PbxProject) addToPbxBuildFileSection(entries []*FileEntry) bool {
	loc := pbxBuildFileSectionRegex.FindStringSubmatchIndex(p.buffer)
	if loc == nil {
		return false
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("\t\t%s /* %s in Sources */ = {isa = PBXBuildFile; fileRef = %s; };",
			entry.Uuid, entry.Basename, entry.FileRef))
		p.logger.Debug("adding PBXBuildFile entry",
			zap.String("file", entry.Basename), zap.String("uuid", entry.Uuid))
	}
	p.spliceSection(loc[4], loc[5], lines)
	return true
}

func (p *PbxProject) addToPbxFileReferenceSection(entries []*FileEntry) bool {
	loc := pbxFileReferenceSectionRegex.FindStringSubmatchIndex(p.buffer)
	if loc == nil {
		return false
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("\t\t%s /* %s */ = {isa = PBXFileReference; lastKnownFileType = %s; path = %s; sourceTree = %s; };",
			entry.FileRef, entry.Basename, entry.LastKnownFileType, entry.Basename, DEFAULT_SOURCETREE))
		p.logger.Debug("adding PBXFileReference entry",
			zap.String("file", entry.Basename), zap.String("fileRef", entry.FileRef))
	}
	p.spliceSection(loc[4], loc[5], lines)
	return true
}

// addToPbxGroup appends the file references to the named group's
// children, synthesizing the group under the main group when it does not
// exist yet. Returns true when a new group was created.
func (p *PbxProject) addToPbxGroup(name string, entries []*FileEntry) (created bool) {
	loc := pbxGroupChildrenRegex(name).FindStringSubmatchIndex(p.buffer)
	if loc != nil {
		children := p.buffer[loc[2]:loc[3]]
		var additions strings.Builder
		for _, entry := range entries {
			// textual containment, can false-positive on substrings
			if strings.Contains(children, entry.FileRef) {
				continue
			}
			additions.WriteString(fmt.Sprintf("\n\t\t\t\t%s /* %s */,", entry.FileRef, entry.Basename))
		}
		p.buffer = p.buffer[:loc[3]] + additions.String() + p.buffer[loc[3]:]
		return false
	}

	end := strings.Index(p.buffer, PBXGROUP_SECTION_END)
	if end == -1 {
		p.sectionMissing("PBXGroup")
		return false
	}

	groupId := p.gen.generate()
	var children strings.Builder
	for _, entry := range entries {
		children.WriteString(fmt.Sprintf("\n\t\t\t\t%s /* %s */,", entry.FileRef, entry.Basename))
	}
	groupEntry := fmt.Sprintf("\n\t\t%s /* %s */ = {\n\t\t\tisa = PBXGroup;\n\t\t\tchildren = (%s\n\t\t\t);\n\t\t\tpath = %s;\n\t\t\tsourceTree = %s;\n\t\t};",
		groupId, name, children.String(), name, DEFAULT_SOURCETREE)
	p.buffer = p.buffer[:end] + groupEntry + "\n" + p.buffer[end:]
	p.logger.Debug("created PBXGroup", zap.String("group", name), zap.String("uuid", groupId))

	p.registerGroupWithMainGroup(groupId, name)
	return true
}

// registerGroupWithMainGroup adds a freshly created group to the
// children of the project's main group.
func (p *PbxProject) registerGroupWithMainGroup(groupId, name string) {
	if p.mainGroup == "" {
		p.sectionMissing("main group")
		return
	}
	loc := pbxGroupChildrenRegex(p.mainGroup).FindStringSubmatchIndex(p.buffer)
	if loc == nil {
		p.sectionMissing("main group " + p.mainGroup)
		return
	}
	if strings.Contains(p.buffer[loc[2]:loc[3]], groupId) {
		return
	}
	p.buffer = p.buffer[:loc[3]] + fmt.Sprintf("\n\t\t\t\t%s /* %s */,", groupId, name) + p.buffer[loc[3]:]
}

func (p *PbxProject) addToPbxSourcesBuildPhase(entries []*FileEntry) bool {
	loc := pbxSourcesBuildPhaseRegex.FindStringSubmatchIndex(p.buffer)
	if loc == nil {
		return false
	}

	files := p.buffer[loc[4]:loc[5]]
	var additions strings.Builder
	for _, entry := range entries {
		if strings.Contains(files, entry.Uuid) {
			continue
		}
		additions.WriteString(fmt.Sprintf("\n\t\t\t\t%s /* %s in Sources */,", entry.Uuid, entry.Basename))
		p.logger.Debug("adding to Sources build phase",
			zap.String("file", entry.Basename), zap.String("uuid", entry.Uuid))
	}
	p.buffer = p.buffer[:loc[5]] + additions.String() + p.buffer[loc[5]:]
	return true
}
