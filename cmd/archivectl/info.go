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
	"fmt"

	"github.com/fantom-foundation/block-archive/archive/ldb"
	"github.com/urfave/cli/v2"
)

// Info prints the latest block height and its hash.
var Info = cli.Command{
	Action:    info,
	Name:      "info",
	Usage:     "prints the latest block height and hash of an archive",
	ArgsUsage: "<archive-directory>",
}

func info(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing archive directory")
	}
	dir := context.Args().Get(0)

	a, err := ldb.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer a.Close()

	latest, err := a.GetLatestBlock()
	if err != nil {
		return fmt.Errorf("failed to read latest block: %w", err)
	}
	if latest < 0 {
		fmt.Println("archive is empty")
		return nil
	}

	hash, err := a.GetHash(uint64(latest))
	if err != nil {
		return fmt.Errorf("failed to read hash of block %d: %w", latest, err)
	}
	fmt.Printf("latest block: %d\n", latest)
	fmt.Printf("block hash:   %x\n", hash)
	fmt.Print(a.GetMemoryFootprint().ToString("archive"))
	return nil
}
