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

// aquahash is a command line tool for hashing, verifying and searching
// ethash and ProgPoW proofs of work.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"

	"github.com/urfave/cli"
	"gitlab.com/aquachain/ethash/cmd/utils"
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/config"
	"gitlab.com/aquachain/ethash/consensus/aquahash"
	"gitlab.com/aquachain/ethash/internal/debug"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit string

func newApp() *cli.App {
	app := utils.NewApp(gitCommit, "ethash and ProgPoW proof-of-work tool")
	app.Name = "aquahash"
	app.HideVersion = true // we have a command to print the version
	app.Copyright = "Copyright 2018-2024 The Aquachain Authors"
	app.Commands = []cli.Command{
		// See hashcmd.go:
		hashCommand,
		verifyCommand,
		// See searchcmd.go:
		searchCommand,
		benchCommand,
		// See misccmd.go:
		seedCommand,
		epochCommand,
		programCommand,
		makedagCommand,
		dumpconfigCommand,
		versionCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Before = func(ctx *cli.Context) error {
		cfg, err := utils.MakeConfig(ctx)
		if err != nil {
			return err
		}
		if err := debug.Setup(ctx, cfg.Log); err != nil {
			return err
		}
		ctx.App.Metadata["config"] = cfg
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}

func getConfig(ctx *cli.Context) *config.File {
	return ctx.App.Metadata["config"].(*config.File)
}

// makeEngine creates the engine selected by the settings file and flags.
func makeEngine(ctx *cli.Context) (*aquahash.Aquahash, error) {
	return utils.MakeEngine(getConfig(ctx))
}

// signalContext is cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func usageError(ctx *cli.Context) error {
	return fmt.Errorf("usage: %s %s %s", ctx.App.Name, ctx.Command.Name, ctx.Command.ArgsUsage)
}

func parseUint(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return v, nil
}

// parseHash decodes a 32 byte hex argument, 0x prefix optional.
func parseHash(name, s string) ([]byte, error) {
	b, err := common.ParseHex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %v", name, err)
	}
	if len(b) != common.HashLength {
		return nil, fmt.Errorf("invalid %s: have %d bytes, want %d", name, len(b), common.HashLength)
	}
	return b, nil
}
