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

package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gitlab.com/aquachain/ethash/common/sense"
)

// NoSync disables the mutex around stream handlers (NO_LOGSYNC=1).
var NoSync = sense.EnvBool("NO_LOGSYNC")

var PrintfDefaultLevel = LvlInfo

func (l *logger) Printf(msg string, stuff ...any) {
	msg = fmt.Sprintf(msg, stuff...)
	l.writeskip(1, msg, PrintfDefaultLevel, nil)
}
func (l *logger) Infof(msg string, stuff ...any) {
	msg = fmt.Sprintf(msg, stuff...)
	l.writeskip(1, msg, LvlInfo, nil)
}
func (l *logger) Warnf(msg string, stuff ...any) {
	msg = fmt.Sprintf(msg, stuff...)
	l.writeskip(1, msg, LvlWarn, nil)
}

func Printf(msg string, stuff ...any) {
	msg = strings.TrimSuffix(msg, "\n")
	msg = fmt.Sprintf(msg, stuff...)
	root.writeskip(1, msg, PrintfDefaultLevel, nil)
}
func Infof(msg string, stuff ...any) {
	msg = strings.TrimSuffix(msg, "\n")
	msg = fmt.Sprintf(msg, stuff...)
	root.writeskip(1, msg, LvlInfo, nil)
}
func Warnf(msg string, stuff ...any) {
	msg = strings.TrimSuffix(msg, "\n")
	msg = fmt.Sprintf(msg, stuff...)
	root.writeskip(1, msg, LvlWarn, nil)
}

var testloghandler Handler

// ResetForTesting installs a terminal handler at TESTLOGLVL (default warn).
// Test packages call it from init.
func ResetForTesting() {
	if testloghandler != nil {
		return
	}
	lvl := LvlWarn
	envlvl := sense.Getenv("TESTLOGLVL")
	if envlvl == "" {
		envlvl = sense.Getenv("LOGLEVEL")
	}
	if x := envlvl; x != "" && x != "0" { // TESTLOGLVL=0 is the same as not setting it
		lvl = MustParseLevel(x)
	}
	testloghandler = LvlFilterHandler(lvl, StreamHandler(os.Stderr, TerminalFormat(false)))
	Root().SetHandler(testloghandler)
}

// ParseLevel returns the level named by s, by name or verbosity number.
func ParseLevel(s string) (Lvl, error) {
	switch strings.ToLower(s) {
	case "":
		return LvlInfo, nil
	case "trace", "trce", "5", "6", "7", "8", "9":
		return LvlTrace, nil
	case "debug", "dbug", "4":
		return LvlDebug, nil
	case "info", "3":
		return LvlInfo, nil
	case "warn", "2":
		return LvlWarn, nil
	case "error", "eror", "1":
		return LvlError, nil
	case "crit", "critical", "0":
		return LvlCrit, nil
	default:
		return LvlInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// MustParseLevel is ParseLevel that panics on bad input.
func MustParseLevel(s string) Lvl {
	lvl, err := ParseLevel(s)
	if err != nil {
		panic(err)
	}
	return lvl
}

// LvlFromVerbosity clamps a verbosity flag value into a Lvl.
func LvlFromVerbosity(v int) Lvl {
	if v < int(LvlCrit) {
		return LvlCrit
	}
	if v > int(LvlTrace) {
		return LvlTrace
	}
	return Lvl(v)
}

func newRoot(handler Handler) *logger {
	x := &logger{[]interface{}{}, new(swapHandler)}
	x.SetHandler(handler)
	return x
}

func GetLevelFromEnv() Lvl {
	lvl := sense.Getenv("LOGLEVEL")
	if lvl == "" {
		lvl = sense.Getenv("TESTLOGLVL")
	}
	if lvl == "" {
		lvl = sense.Getenv("LOGLVL")
	}
	if lvl == "" {
		return LvlInfo
	}
	l, err := ParseLevel(lvl)
	if err != nil {
		return LvlInfo
	}
	return l
}

// NewHandler builds the stderr handler used by the root logger and by the
// command line tool. Color is only used when stderr is a terminal.
func NewHandler(lvl Lvl, json bool, usecolor bool) Handler {
	if json {
		return LvlFilterHandler(lvl, StreamHandler(os.Stderr, JsonFormatEx(false, true)))
	}
	usecolor = usecolor && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	out := colorable.NewColorableStderr()
	if !usecolor {
		out = colorable.NewNonColorable(os.Stderr)
	}
	return LvlFilterHandler(lvl, CallerFileHandler(StreamHandler(out, TerminalFormat(usecolor))))
}

func newRootHandler() Handler {
	return NewHandler(GetLevelFromEnv(), sense.FeatureEnabled("JSONLOG", "jsonlog"), !sense.EnvBool("NO_COLOR"))
}
