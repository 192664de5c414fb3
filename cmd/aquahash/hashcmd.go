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
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/holiman/uint256"
	"github.com/urfave/cli"
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/consensus/ethash"
)

var (
	boundaryFlag = cli.StringFlag{
		Name:  "boundary",
		Usage: "Target boundary as 32 byte hex, overrides --difficulty",
	}
	difficultyFlag = cli.StringFlag{
		Name:  "difficulty",
		Usage: "Target difficulty, the boundary is 2^256 / difficulty",
		Value: "1",
	}

	hashCommand = cli.Command{
		Action:    hashCmd,
		Name:      "hash",
		Usage:     "Compute the mix and final hash of a header and nonce",
		ArgsUsage: "<block> <header> <nonce>",
		Category:  "PROOF-OF-WORK COMMANDS",
		Description: `
The hash command prints the mix hash and final hash of a 32 byte header hash
and a nonce at the given block number, using the configured algorithm.`,
	}
	verifyCommand = cli.Command{
		Action:    verifyCmd,
		Name:      "verify",
		Usage:     "Check a claimed proof-of-work solution",
		ArgsUsage: "<block> <header> <nonce> <mix> [final]",
		Flags:     []cli.Flag{boundaryFlag, difficultyFlag},
		Category:  "PROOF-OF-WORK COMMANDS",
		Description: `
The verify command recomputes the proof of work and compares it with the
claimed mix hash and, if given, final hash. The final hash must not exceed
the boundary. The exit status is 2 when the proof is rejected.`,
	}
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
)

// boundary reads --boundary or, failing that, --difficulty.
func boundary(ctx *cli.Context) (common.Hash, error) {
	if s := ctx.String(boundaryFlag.Name); s != "" {
		b, err := parseHash("boundary", s)
		if err != nil {
			return common.Hash{}, err
		}
		return ethash.BoundaryFromBytes(b)
	}
	d, err := uint256.FromDecimal(ctx.String(difficultyFlag.Name))
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid difficulty: %v", err)
	}
	return ethash.BoundaryFromDifficulty(d), nil
}

func printResult(w io.Writer, algo string, block, epoch uint64, res ethash.Result) {
	fmt.Fprintf(w, "algo:  %s\n", algo)
	fmt.Fprintf(w, "block: %d\n", block)
	fmt.Fprintf(w, "epoch: %d\n", epoch)
	fmt.Fprintf(w, "mix:   %s\n", res.MixHash.Hex())
	fmt.Fprintf(w, "final: %s\n", res.FinalHash.Hex())
}

func hashCmd(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 3 {
		return usageError(ctx)
	}
	block, err := parseUint("block", args[0])
	if err != nil {
		return err
	}
	header, err := parseHash("header", args[1])
	if err != nil {
		return err
	}
	nonce, err := parseUint("nonce", args[2])
	if err != nil {
		return err
	}
	engine, err := makeEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.Hash(context.Background(), block, header, nonce)
	if err != nil {
		return err
	}
	var epoch uint64
	if p := engine.Params(); p != nil {
		epoch = p.EpochNumber(block)
	}
	printResult(ctx.App.Writer, engine.Name(), block, epoch, res)
	return nil
}

func verifyCmd(ctx *cli.Context) error {
	args := ctx.Args()
	if n := len(args); n != 4 && n != 5 {
		return usageError(ctx)
	}
	block, err := parseUint("block", args[0])
	if err != nil {
		return err
	}
	header, err := parseHash("header", args[1])
	if err != nil {
		return err
	}
	nonce, err := parseUint("nonce", args[2])
	if err != nil {
		return err
	}
	mix, err := parseHash("mix", args[3])
	if err != nil {
		return err
	}
	var final []byte
	if len(args) == 5 {
		if final, err = parseHash("final", args[4]); err != nil {
			return err
		}
	}
	target, err := boundary(ctx)
	if err != nil {
		return err
	}
	engine, err := makeEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	verdict, err := engine.Verify(context.Background(), block, header, nonce, mix, final, target.Bytes())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "boundary: %s\n", target.Hex())
	if !verdict.OK() {
		fmt.Fprintf(ctx.App.Writer, "verdict:  %s\n", failColor.Sprint(verdict))
		return cli.NewExitError("proof rejected", 2)
	}
	fmt.Fprintf(ctx.App.Writer, "verdict:  %s\n", okColor.Sprint(verdict))
	return nil
}
