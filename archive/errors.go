// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package archive

import "github.com/fantom-foundation/block-archive/common"

// ErrClosed is returned by any operation invoked after Close.
const ErrClosed = common.ConstError("archive already closed")

// ErrOutOfOrder is returned by Add when block is not strictly greater than
// GetLatestBlock.
const ErrOutOfOrder = common.ConstError("block is not higher than the latest block in the archive")

// ErrCorruption is returned when a stored key or value has an unexpected
// length or family, or when verification finds the hash chain, the
// reincarnation sequence, or the hash/diff coverage invariant broken.
const ErrCorruption = common.ConstError("archive corruption detected")
