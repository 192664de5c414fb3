package common

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeName(t *testing.T) {
	name := MakeName("aquahash", "0.1.0")
	assert.True(t, strings.HasPrefix(name, "aquahash/v0.1.0/"+runtime.GOOS+"/"), name)
	assert.True(t, strings.HasSuffix(name, "/"+ShortGoVersion()), name)

	v := ShortGoVersion()
	assert.NotContains(t, v, "-")
	assert.LessOrEqual(t, len(v), 10)
}

func TestAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "dags"), AbsolutePath(dir, "dags"))
	assert.Equal(t, dir, AbsolutePath("/elsewhere", dir))

	assert.True(t, FileExist(dir))
	assert.False(t, FileExist(filepath.Join(dir, "missing")))
}
