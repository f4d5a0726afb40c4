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
	"path/filepath"
	"regexp"
	"strings"
)

const (
	DEFAULT_SOURCETREE = "\"<group>\""
	DEFAULT_FILETYPE   = "unknown"
)

var FILETYPE_BY_EXTENSION = map[string]string{
	"h":        "sourcecode.c.h",
	"m":        "sourcecode.c.objc",
	"markdown": "text",
	"pch":      "sourcecode.c.h",
	"plist":    "text.plist.xml",
	"sh":       "text.script.sh",
	"strings":  "text.plist.strings",
	"swift":    "sourcecode.swift",
	"xcassets": "folder.assetcatalog",
	"xcconfig": "text.xcconfig",
	"xib":      "file.xib",
}

var unquotedRegex = regexp.MustCompile(`(^")|("$)`)

func unquoted(text string) string {
	if text == "" {
		return text
	}
	return unquotedRegex.ReplaceAllString(text, "")
}

// FileEntry describes one file to register in the manifest. FileRef and
// Uuid are assigned by the patcher before the section editors run; the
// rest is fixed at construction.
type FileEntry struct {
	Path              string
	Basename          string
	Group             string
	LastKnownFileType string
	FileRef           string
	Uuid              string
}

func newFileEntry(filePath string) *FileEntry {
	path := filepath.ToSlash(filePath)
	return &FileEntry{
		Path:              path,
		Basename:          filepath.Base(path),
		Group:             detectGroup(path),
		LastKnownFileType: detectType(path),
	}
}

func detectType(filePath string) string {
	extension := filepath.Ext(filePath)
	if extension == "" {
		return DEFAULT_FILETYPE
	}
	filetype, found := FILETYPE_BY_EXTENSION[unquoted(extension[1:])]
	if !found {
		return DEFAULT_FILETYPE
	}
	return filetype
}

// detectGroup buckets a file by its first path segment. Files at the top
// level have no group and are left out of the group-membership edit.
func detectGroup(path string) string {
	segment, rest, found := strings.Cut(path, "/")
	if !found || rest == "" {
		return ""
	}
	return segment
}
