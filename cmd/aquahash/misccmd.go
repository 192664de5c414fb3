// Copyright 2018 The aquachain Authors
// This file is part of the aquachain library.
//
// The aquachain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aquachain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aquachain library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/urfave/cli"
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/toml"
	"gitlab.com/aquachain/ethash/consensus/aquahash/dagfile"
	"gitlab.com/aquachain/ethash/consensus/ethash"
	"gitlab.com/aquachain/ethash/consensus/progpow"
)

const clientIdentifier = "aquahash"

var (
	seedCommand = cli.Command{
		Action:    seedCmd,
		Name:      "seed",
		Usage:     "Print the seed hash of an epoch",
		ArgsUsage: "<epoch>",
		Category:  "EPOCH COMMANDS",
	}
	epochCommand = cli.Command{
		Action:    epochCmd,
		Name:      "epoch",
		Usage:     "Print epoch sizes for a block number or seed hash",
		ArgsUsage: "<block|seedhash>",
		Category:  "EPOCH COMMANDS",
		Description: `
A 32 byte hex argument is taken as a seed hash and searched for, anything
else is a block number.`,
	}
	programCommand = cli.Command{
		Action:    programCmd,
		Name:      "program",
		Usage:     "Disassemble the ProgPoW program of a block",
		ArgsUsage: "<block>",
		Category:  "EPOCH COMMANDS",
	}
	makedagCommand = cli.Command{
		Action:    makedag,
		Name:      "makedag",
		Usage:     "Generate a full dataset file",
		ArgsUsage: "<block> <outputDir>",
		Category:  "MISCELLANEOUS COMMANDS",
		Description: `
The makedag command generates the dataset of the block's epoch in <outputDir>,
in the file layout used by --powmode full --datasetdir.`,
	}
	dumpconfigCommand = cli.Command{
		Action:    dumpconfig,
		Name:      "dumpconfig",
		Usage:     "Show configuration values",
		ArgsUsage: " ",
		Category:  "MISCELLANEOUS COMMANDS",
	}
	versionCommand = cli.Command{
		Action:    version,
		Name:      "version",
		Usage:     "Print version numbers",
		ArgsUsage: " ",
		Category:  "MISCELLANEOUS COMMANDS",
		Description: `
The output of this command is supposed to be machine-readable.
`,
	}
)

// params are the protocol constants of the configured mode.
func params(ctx *cli.Context) (*ethash.Params, error) {
	p := getConfig(ctx).Aquahash.PowMode.Params()
	if p == nil {
		return nil, errors.New("no protocol constants in fake mode")
	}
	return p, nil
}

func seedCmd(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return usageError(ctx)
	}
	epoch, err := parseUint("epoch", args[0])
	if err != nil {
		return err
	}
	seed, err := ethash.SeedHash(epoch)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, seed.Hex())
	return nil
}

func epochCmd(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return usageError(ctx)
	}
	p, err := params(ctx)
	if err != nil {
		return err
	}
	var epoch uint64
	if s := strings.TrimPrefix(args[0], "0x"); len(s) == 2*common.HashLength {
		seed, err := parseHash("seed hash", args[0])
		if err != nil {
			return err
		}
		if epoch, err = p.EpochFromSeed(common.BytesToHash(seed)); err != nil {
			return err
		}
	} else {
		block, err := parseUint("block", args[0])
		if err != nil {
			return err
		}
		epoch = p.EpochNumber(block)
	}
	seed, err := p.SeedHash(epoch)
	if err != nil {
		return err
	}
	cacheSize, err := p.CacheSize(epoch)
	if err != nil {
		return err
	}
	datasetSize, err := p.DatasetSize(epoch)
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "epoch:        %d\n", epoch)
	fmt.Fprintf(w, "seed:         %s\n", seed.Hex())
	fmt.Fprintf(w, "first block:  %d\n", epoch*p.EpochLength)
	fmt.Fprintf(w, "cache size:   %d\n", cacheSize)
	fmt.Fprintf(w, "dataset size: %d\n", datasetSize)
	return nil
}

func programCmd(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return usageError(ctx)
	}
	block, err := parseUint("block", args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.App.Writer, progpow.ProgramFor(block).String())
	return nil
}

// makedag generates a full dataset file into the provided folder.
func makedag(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
		return usageError(ctx)
	}
	block, err := parseUint("block", args[0])
	if err != nil {
		return err
	}
	dir := common.ExpandHome(args[1])
	if !common.FileExist(dir) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	p, err := params(ctx)
	if err != nil {
		return err
	}
	threads := getConfig(ctx).Aquahash.Threads

	sctx, cancel := signalContext()
	defer cancel()
	c, err := p.BuildEpochContext(sctx, p.EpochNumber(block), false, threads)
	if err != nil {
		return err
	}
	f, err := dagfile.Generate(sctx, c, dagfile.Path(dir, c.Epoch, c.Seed()), threads)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Fprintln(ctx.App.Writer, f.Path())
	return nil
}

func dumpconfig(ctx *cli.Context) error {
	out, err := toml.Marshal(getConfig(ctx))
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}

func version(ctx *cli.Context) error {
	w := ctx.App.Writer
	fmt.Fprintln(w, common.MakeName(clientIdentifier, ctx.App.Version))
	if gitCommit != "" {
		fmt.Fprintln(w, "Git Commit:", gitCommit)
	}
	fmt.Fprintln(w, "Architecture:", runtime.GOARCH)
	fmt.Fprintln(w, "Go Version:", runtime.Version())
	fmt.Fprintln(w, "Operating System:", runtime.GOOS)
	fmt.Fprintln(w, "ProgPoW Period:", progpow.PeriodLength)
	return nil
}
