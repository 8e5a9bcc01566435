// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/fantom-foundation/block-archive/common/hashing"
	"github.com/urfave/cli/v2"
)

// AddressCmd prints the Keccak-256 digest of an arbitrary input, the
// identifier-derivation primitive used upstream of the archive (e.g. to
// derive an Address from a public key); the archive's own hash chain uses
// SHA-256 and does not call this path.
var AddressCmd = cli.Command{
	Action:    addressDigest,
	Name:      "keccak256",
	Usage:     "prints the Keccak-256 digest of the given hex-encoded input",
	ArgsUsage: "<hex-data>",
}

func addressDigest(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing hex-data argument")
	}
	raw, err := hexDecode(context.Args().Get(0))
	if err != nil {
		return err
	}
	digest := hashing.Keccak256(raw)
	fmt.Printf("%x\n", digest)
	return nil
}

func hexDecode(s string) ([]byte, error) {
	out, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("invalid hex data %q: %w", s, err)
	}
	return out, nil
}
