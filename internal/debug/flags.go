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

package debug

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"runtime"

	"github.com/urfave/cli"
	"gitlab.com/aquachain/ethash/common/config"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/common/sense"
)

var (
	logcolorflag = cli.BoolFlag{
		Name:   "color",
		Usage:  "Force colored log output (COLOR env)",
		EnvVar: "COLOR",
	}
	logjsonflag = cli.BoolFlag{
		Name:   "jsonlog",
		Usage:  "Log in JSON format",
		EnvVar: "JSONLOG",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "Enable the pprof HTTP server",
	}
	pprofPortFlag = cli.IntFlag{
		Name:  "pprofport",
		Usage: "pprof HTTP server listening port",
		Value: 6060,
	}
	pprofAddrFlag = cli.StringFlag{
		Name:  "pprofaddr",
		Usage: "pprof HTTP server listening interface",
		Value: "127.0.0.1",
	}
	memprofilerateFlag = cli.IntFlag{
		Name:  "memprofilerate",
		Usage: "Turn on memory profiling with the given rate",
		Value: runtime.MemProfileRate,
	}
	blockprofilerateFlag = cli.IntFlag{
		Name:  "blockprofilerate",
		Usage: "Turn on block profiling with the given rate",
	}
	cpuprofileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "Write CPU profile to the given file",
	}
	traceFlag = cli.StringFlag{
		Name:  "trace",
		Usage: "Write execution trace to the given file",
	}
)

// Flags holds all command-line flags required for debugging.
var Flags = []cli.Flag{
	logcolorflag, logjsonflag, verbosityFlag,
	pprofFlag, pprofAddrFlag, pprofPortFlag,
	memprofilerateFlag, blockprofilerateFlag, cpuprofileFlag, traceFlag,
}

// LogHandler builds the root log handler. Flags given on the command line
// win over the settings file.
func LogHandler(ctx *cli.Context, cfg config.LogConfig) (log.Handler, error) {
	cfg, err := logSettings(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return log.NewHandler(log.MustParseLevel(cfg.Level), cfg.JSON, cfg.Color), nil
}

func logSettings(ctx *cli.Context, cfg config.LogConfig) (config.LogConfig, error) {
	lvl := log.LvlInfo
	if cfg.Level != "" {
		var err error
		if lvl, err = log.ParseLevel(cfg.Level); err != nil {
			return cfg, err
		}
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		lvl = log.LvlFromVerbosity(ctx.GlobalInt(verbosityFlag.Name))
	}
	cfg.Level = lvl.String()
	cfg.JSON = cfg.JSON || ctx.GlobalBool(logjsonflag.Name)
	cfg.Color = cfg.Color || ctx.GlobalBool(logcolorflag.Name)
	if sense.Getenv("NO_COLOR") != "" {
		cfg.Color = false
	}
	return cfg, nil
}

// Setup initializes profiling and logging based on the CLI flags.
// It should be called as early as possible in the program.
func Setup(ctx *cli.Context, cfg config.LogConfig) error {
	// do this asap
	h, err := LogHandler(ctx, cfg)
	if err != nil {
		return err
	}
	log.SetRootHandler(h)

	// profiling, tracing
	runtime.MemProfileRate = ctx.GlobalInt(memprofilerateFlag.Name)
	Handler.SetBlockProfileRate(ctx.GlobalInt(blockprofilerateFlag.Name))
	if traceFile := ctx.GlobalString(traceFlag.Name); traceFile != "" {
		if err := Handler.StartGoTrace(traceFile); err != nil {
			return err
		}
	}
	if cpuFile := ctx.GlobalString(cpuprofileFlag.Name); cpuFile != "" {
		if err := Handler.StartCPUProfile(cpuFile); err != nil {
			return err
		}
	}

	// pprof server
	if ctx.GlobalBool(pprofFlag.Name) {
		runtime.SetMutexProfileFraction(10)
		address := fmt.Sprintf("%s:%d", ctx.GlobalString(pprofAddrFlag.Name), ctx.GlobalInt(pprofPortFlag.Name))
		go func() {
			log.Warn("Starting pprof server", "addr", fmt.Sprintf("http://%s/debug/pprof", address))
			if err := http.ListenAndServe(address, nil); err != nil {
				log.Crit("Failure in running pprof server", "err", err)
			}
		}()
	}
	return nil
}

// Exit stops all running profiles, flushing their output to the
// respective file.
func Exit() {
	Handler.StopCPUProfile()
	Handler.StopGoTrace()
}
