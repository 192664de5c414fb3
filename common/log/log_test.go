package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(lvl Lvl, f Format) (LoggerI, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	l := newRoot(LvlFilterHandler(lvl, StreamHandler(buf, f)))
	return l, buf
}

func TestLvlFilter(t *testing.T) {
	l, buf := testLogger(LvlWarn, LogfmtFormat())
	l.Info("hidden")
	l.Debug("hidden")
	l.Warn("shown", "epoch", 3)
	l.Error("also shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "epoch=3")
	assert.Contains(t, out, "msg=\"also shown\"")
}

func TestChildContext(t *testing.T) {
	l, buf := testLogger(LvlTrace, LogfmtFormat())
	child := l.New("algo", "progpow")
	child.Info("built", "items", 1024)
	assert.Contains(t, buf.String(), "algo=progpow")
	assert.Contains(t, buf.String(), "items=1024")
}

func TestOddContext(t *testing.T) {
	l, buf := testLogger(LvlTrace, LogfmtFormat())
	l.Info("odd", "lonely")
	assert.Contains(t, buf.String(), errorKey)
}

func TestJsonFormat(t *testing.T) {
	l, buf := testLogger(LvlTrace, JsonFormat())
	l.Warn("cache ready", "epoch", 7, "err", errors.New("boom"))
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "cache ready", m["msg"])
	assert.Equal(t, "warn", m["lvl"])
	assert.Equal(t, float64(7), m["epoch"])
	assert.Equal(t, "boom", m["err"])
}

func TestTerminalFormatNoColor(t *testing.T) {
	l, buf := testLogger(LvlTrace, TerminalFormat(false))
	l.Info("seed", "hash", "abc")
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO "), out)
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "hash=abc")
}

func TestCallerFileHandler(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newRoot(CallerFileHandler(StreamHandler(buf, LogfmtFormat())))
	l.Info("where")
	assert.Contains(t, buf.String(), "caller=log_test.go:")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Lvl{
		"trace": LvlTrace, "5": LvlTrace, "debug": LvlDebug, "INFO": LvlInfo,
		"warn": LvlWarn, "1": LvlError, "crit": LvlCrit, "": LvlInfo,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Panics(t, func() { MustParseLevel("loud") })
	assert.Equal(t, LvlCrit, LvlFromVerbosity(-3))
	assert.Equal(t, LvlTrace, LvlFromVerbosity(42))
	assert.Equal(t, LvlInfo, LvlFromVerbosity(3))
}

func TestConcurrentWrites(t *testing.T) {
	l, buf := testLogger(LvlTrace, LogfmtFormat())
	var wg sync.WaitGroup
	const n = 20
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			l.Info("line", "i", i)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, strings.Count(buf.String(), "\n"))
}
