// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"
	"strings"
)

// MemoryFootprint describes the memory consumption of a database structure.
type MemoryFootprint struct {
	value    uintptr
	children map[string]*MemoryFootprint
}

// NewMemoryFootprint creates a new MemoryFootprint for a single component.
func NewMemoryFootprint(value uintptr) *MemoryFootprint {
	return &MemoryFootprint{
		value:    value,
		children: make(map[string]*MemoryFootprint),
	}
}

// AddChild attaches the footprint of a sub-component.
func (mf *MemoryFootprint) AddChild(name string, child *MemoryFootprint) {
	mf.children[name] = child
}

// Value is the number of bytes consumed by this component, excluding
// sub-components.
func (mf *MemoryFootprint) Value() uintptr {
	return mf.value
}

// Total is the number of bytes consumed by this component and all of its
// sub-components.
func (mf *MemoryFootprint) Total() uintptr {
	seen := make(map[*MemoryFootprint]bool)
	return mf.total(seen)
}

func (mf *MemoryFootprint) total(seen map[*MemoryFootprint]bool) (total uintptr) {
	if seen[mf] {
		return 0
	}
	seen[mf] = true
	total = mf.value
	for _, child := range mf.children {
		total += child.total(seen)
	}
	return total
}

// ToString renders the footprint tree as a human-readable summary, with
// name as the label of the tree's root.
func (mf *MemoryFootprint) ToString(name string) string {
	var sb strings.Builder
	mf.write(&sb, name)
	return sb.String()
}

func (mf *MemoryFootprint) write(sb *strings.Builder, path string) {
	writeByteAmount(sb, mf.Total())
	sb.WriteRune(' ')
	sb.WriteString(path)
	sb.WriteRune('\n')
	for name, child := range mf.children {
		child.write(sb, path+"/"+name)
	}
}

func writeByteAmount(sb *strings.Builder, bytes uintptr) {
	const unit = 1024
	const prefixes = "KMGTPE"
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp+1 < len(prefixes); n /= unit {
		div *= unit
		exp++
	}
	fmt.Fprintf(sb, "%.1f %cB", float64(bytes)/float64(div), prefixes[exp])
}
