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
	"os"
	"strings"

	"go.uber.org/zap"
)

// PbxProject holds the manifest file content as one mutable buffer and
// edits it by pattern search and splicing. It is not a parser; the
// buffer is never turned into an object model.
type PbxProject struct {
	filePath  string
	mainGroup string
	buffer    string
	gen       *idGenerator
	missing   []string
	logger    *zap.Logger
}

type ProjectOption func(p *PbxProject)

func WithLogger(logger *zap.Logger) ProjectOption {
	return func(p *PbxProject) {
		p.logger = logger
	}
}

// WithMainGroup names the group that receives newly created groups as
// children. Without it, group creation skips the registration step.
func WithMainGroup(name string) ProjectOption {
	return func(p *PbxProject) {
		p.mainGroup = name
	}
}

func NewPbxProject(filename string, options ...ProjectOption) *PbxProject {
	p := &PbxProject{
		filePath: filename,
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *PbxProject) Contents() string {
	return p.buffer
}

// Load reads the whole manifest into the buffer and seeds the id
// generator with the ids already present.
func (p *PbxProject) Load() error {
	data, err := os.ReadFile(p.filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", p.filePath, err)
	}
	p.buffer = string(data)
	p.gen = newIdGenerator()
	p.gen.seedFrom(p.buffer)
	return nil
}

// Write rewrites the manifest in place. Not atomic: an interrupted write
// can leave the file truncated, accepted for supervised one-off use.
func (p *PbxProject) Write() error {
	if err := os.WriteFile(p.filePath, []byte(p.buffer), 0644); err != nil {
		return fmt.Errorf("write %s: %w", p.filePath, err)
	}
	return nil
}

// Report describes what one AddSourceFiles pass did to the buffer.
type Report struct {
	Added         []*FileEntry
	Skipped       []string
	CreatedGroups []string
	Missing       []string
}

// AddSourceFiles registers the given paths in the buffer: a PBXBuildFile
// entry, a PBXFileReference entry, group membership keyed by the first
// path segment, and a Sources build-phase entry per file. Paths whose
// filename the manifest already references are skipped, so a repeated
// run is a no-op. Sections that cannot be located are skipped and listed
// in the report.
func (p *PbxProject) AddSourceFiles(paths []string) *Report {
	report := &Report{}
	p.missing = nil

	entries := make([]*FileEntry, 0, len(paths))
	for _, path := range paths {
		entry := newFileEntry(path)
		if p.hasFileReference(entry.Basename) {
			p.logger.Debug("file already registered, skipping", zap.String("path", entry.Path))
			report.Skipped = append(report.Skipped, entry.Path)
			continue
		}
		entry.FileRef = p.gen.generate()
		entry.Uuid = p.gen.generate()
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		if !p.addToPbxBuildFileSection(entries) {
			p.sectionMissing("PBXBuildFile")
		}
		if !p.addToPbxFileReferenceSection(entries) {
			p.sectionMissing("PBXFileReference")
		}
		for _, partition := range partitionByGroup(entries) {
			if p.addToPbxGroup(partition.name, partition.entries) {
				report.CreatedGroups = append(report.CreatedGroups, partition.name)
			}
		}
		if !p.addToPbxSourcesBuildPhase(entries) {
			p.sectionMissing("PBXSourcesBuildPhase")
		}
	}

	report.Added = entries
	report.Missing = p.missing
	return report
}

// hasFileReference reports whether some file-reference entry already
// carries the basename as its path. Textual containment, same caveat as
// the in-run duplicate guards.
func (p *PbxProject) hasFileReference(basename string) bool {
	return strings.Contains(p.buffer, "path = "+basename+";") ||
		strings.Contains(p.buffer, `path = "`+basename+`";`)
}

func (p *PbxProject) sectionMissing(name string) {
	p.logger.Warn("section not found, edit skipped", zap.String("section", name))
	p.missing = append(p.missing, name)
}

type groupPartition struct {
	name    string
	entries []*FileEntry
}

// partitionByGroup buckets entries by group name, keeping the order in
// which groups first appear. Entries without a group stay out of the
// group-membership edit.
func partitionByGroup(entries []*FileEntry) []groupPartition {
	index := make(map[string]int)
	partitions := make([]groupPartition, 0)
	for _, entry := range entries {
		if entry.Group == "" {
			continue
		}
		i, found := index[entry.Group]
		if !found {
			i = len(partitions)
			index[entry.Group] = i
			partitions = append(partitions, groupPartition{name: entry.Group})
		}
		partitions[i].entries = append(partitions[i].entries, entry)
	}
	return partitions
}
