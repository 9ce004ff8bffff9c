package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	assert.Equal(t, "#####.....  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "..........   0%", ProgressBar(0, 0, 10))
	assert.Equal(t, "########## 100%", ProgressBar(5, 3, 10))
	assert.Equal(t, ".....   0%", ProgressBar(0, 4, 1))
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("classic") })
	SetTheme("NEON")
	assert.Equal(t, "neon", Current().Name)
	SetTheme("unknown")
	assert.Equal(t, "classic", Current().Name)
}

func TestOKFail(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	var out bytes.Buffer
	OK(&out, "logged in")
	Fail(&out, "nope")
	assert.Equal(t, "ok logged in\nerror: nope\n", out.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate(strings.Repeat("abcd", 5), 7))
}
