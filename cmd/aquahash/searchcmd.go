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
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli"
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/consensus/aquahash"
)

var (
	startFlag = cli.Uint64Flag{
		Name:  "start",
		Usage: "First nonce to try",
	}
	triesFlag = cli.Uint64Flag{
		Name:  "tries",
		Usage: "Nonces tried per thread, unbounded when zero",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "Give up after this long, never when zero",
	}
	benchBlockFlag = cli.Uint64Flag{
		Name:  "block",
		Usage: "Block number to start at, in millions",
	}
	benchCountFlag = cli.Uint64Flag{
		Name:  "count",
		Usage: "Number of hashes to compute, unbounded when zero",
	}
	benchDurationFlag = cli.DurationFlag{
		Name:  "duration",
		Usage: "Length of the benchmark when --count is zero",
		Value: 10 * time.Second,
	}

	searchCommand = cli.Command{
		Action:    searchCmd,
		Name:      "search",
		Usage:     "Search for a nonce meeting a boundary",
		ArgsUsage: "<block> <header>",
		Flags:     []cli.Flag{boundaryFlag, difficultyFlag, startFlag, triesFlag, timeoutFlag},
		Category:  "PROOF-OF-WORK COMMANDS",
		Description: `
The search command tries nonces on --threads goroutines until one yields a
final hash within the boundary, the tries run out or the timeout passes.`,
	}
	benchCommand = cli.Command{
		Action:   benchCmd,
		Name:     "bench",
		Usage:    "Measure the hash rate of the configured algorithm",
		Flags:    []cli.Flag{benchBlockFlag, benchCountFlag, benchDurationFlag},
		Category: "PROOF-OF-WORK COMMANDS",
		Description: `
The bench command hashes a zero header starting at --block million, moving
to the next block and nonce after every hash. The epoch context is built
before the clock starts.`,
	}
)

func searchCmd(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
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
	target, err := boundary(ctx)
	if err != nil {
		return err
	}
	work, err := aquahash.NewWork(block, header, target.Bytes())
	if err != nil {
		return err
	}
	work.Start = ctx.Uint64(startFlag.Name)
	work.Tries = ctx.Uint64(triesFlag.Name)

	engine, err := makeEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	sctx, cancel := signalContext()
	defer cancel()
	if d := ctx.Duration(timeoutFlag.Name); d > 0 {
		sctx, cancel = context.WithTimeout(sctx, d)
		defer cancel()
	}
	start := time.Now()
	sol, err := engine.Search(sctx, work)
	if err != nil {
		if errors.Is(err, aquahash.ErrNoSolution) || errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintf(ctx.App.Writer, "result: %s\n", failColor.Sprint("no solution"))
			return cli.NewExitError(err.Error(), 2)
		}
		return err
	}
	elapsed := time.Since(start)
	w := ctx.App.Writer
	fmt.Fprintf(w, "result:   %s\n", okColor.Sprint("found"))
	fmt.Fprintf(w, "nonce:    %d\n", sol.Nonce)
	fmt.Fprintf(w, "mix:      %s\n", sol.MixHash.Hex())
	fmt.Fprintf(w, "final:    %s\n", sol.FinalHash.Hex())
	fmt.Fprintf(w, "boundary: %s\n", target.Hex())
	fmt.Fprintf(w, "attempts: %d\n", sol.Attempts)
	fmt.Fprintf(w, "elapsed:  %v\n", common.PrettyDuration(elapsed))
	return nil
}

func benchCmd(ctx *cli.Context) error {
	if len(ctx.Args()) != 0 {
		return usageError(ctx)
	}
	engine, err := makeEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	var (
		block    = ctx.Uint64(benchBlockFlag.Name) * 1000000
		count    = ctx.Uint64(benchCountFlag.Name)
		duration = ctx.Duration(benchDurationFlag.Name)
		header   = make([]byte, common.HashLength)
		nonce    = uint64(1)
	)
	sctx, cancel := signalContext()
	defer cancel()
	if _, err := engine.Context(sctx, block); err != nil && engine.Mode() != aquahash.ModeFake {
		return err
	}
	log.Info("Benchmark starting", "algo", engine.Name(), "block", block, "count", count, "duration", duration)

	var (
		hashes uint64
		start  = time.Now()
	)
	for count == 0 || hashes < count {
		if count == 0 && time.Since(start) >= duration {
			break
		}
		if sctx.Err() != nil {
			break
		}
		if _, err := engine.Hash(sctx, block, header, nonce); err != nil {
			return err
		}
		hashes++
		block++
		nonce++
	}
	elapsed := time.Since(start)
	rate := float64(hashes) / elapsed.Seconds()
	fmt.Fprintf(ctx.App.Writer, "algo:    %s\n", engine.Name())
	fmt.Fprintf(ctx.App.Writer, "hashes:  %d\n", hashes)
	fmt.Fprintf(ctx.App.Writer, "elapsed: %v\n", common.PrettyDuration(elapsed))
	fmt.Fprintf(ctx.App.Writer, "rate:    %.2f H/s\n", rate)
	return nil
}
