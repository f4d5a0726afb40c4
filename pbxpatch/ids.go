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
	"regexp"
	"strings"

	"github.com/gofrs/uuid"
)

const ID_PREFIX = "AA"

var manifestIdRegex = regexp.MustCompile(`\bAA[0-9A-F]{6}\b`)

// idGenerator hands out manifest object ids. Every id it sees, whether
// generated or seeded from the buffer, is registered so it is never
// handed out again.
type idGenerator struct {
	seen map[string]struct{}
}

func newIdGenerator() *idGenerator {
	return &idGenerator{seen: make(map[string]struct{})}
}

// seedFrom registers every prefixed id already present in the manifest
// so fresh ids cannot collide with prior runs.
func (g *idGenerator) seedFrom(buffer string) {
	for _, id := range manifestIdRegex.FindAllString(buffer, -1) {
		g.seen[id] = struct{}{}
	}
}

func (g *idGenerator) generate() string {
	u, _ := uuid.NewV4()
	id := ID_PREFIX + strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[0:6])

	_, found := g.seen[id]
	if found {
		return g.generate()
	}
	g.seen[id] = struct{}{}
	return id
}
