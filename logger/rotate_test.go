package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestDailyRotator_NamesSegmentsByDate(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)}
	r, err := NewDailyRotator(dir, "combined", WithClock(clock.now))
	require.NoError(t, err)
	defer r.Close()

	assert.Empty(t, r.Path(), "no segment before the first write")

	_, err = r.Write([]byte("{\"a\":1}\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "combined-2026-10-17.log"), r.Path())

	clock.t = clock.t.Add(24 * time.Hour)
	_, err = r.Write([]byte("{\"a\":2}\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "combined-2026-10-18.log"), r.Path())

	first, err := os.ReadFile(filepath.Join(dir, "combined-2026-10-17.log"))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(first))
	second, err := os.ReadFile(filepath.Join(dir, "combined-2026-10-18.log"))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":2}\n", string(second))
}

func TestDailyRotator_PrunesExpiredSegments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"error-2026-09-01.log",                         // expired
		"error-2026-10-02.log",                         // 15 days old, expired
		"error-2026-10-02-2026-10-02T10-00-00.000.log", // size backup of an expired day
		"error-2026-10-03.log",                         // exactly 14 days, kept
		"error-2026-10-10.log",
		"combined-2026-09-01.log", // other prefix
		"error-notadate.log",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o600))
	}

	clock := &fakeClock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local)}
	r, err := NewDailyRotator(dir, "error", WithClock(clock.now), WithMaxAge(14))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("x\n"))
	require.NoError(t, err)

	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(dir, name))
		return err == nil
	}
	assert.False(t, exists("error-2026-09-01.log"))
	assert.False(t, exists("error-2026-10-02.log"))
	assert.False(t, exists("error-2026-10-02-2026-10-02T10-00-00.000.log"))
	assert.True(t, exists("error-2026-10-03.log"))
	assert.True(t, exists("error-2026-10-10.log"))
	assert.True(t, exists("error-2026-10-17.log"))
	assert.True(t, exists("combined-2026-09-01.log"))
	assert.True(t, exists("error-notadate.log"))
}

func TestDailyRotator_ZeroMaxAgeKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "error-2020-01-01.log")
	require.NoError(t, os.WriteFile(old, []byte("x\n"), 0o600))

	r, err := NewDailyRotator(dir, "error", WithMaxAge(0))
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Write([]byte("x\n"))
	require.NoError(t, err)

	_, err = os.Stat(old)
	assert.NoError(t, err)
}

func TestDailyRotator_CustomPattern(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)}
	r, err := NewDailyRotator(dir, "combined", WithClock(clock.now), WithDatePattern("20060102"), WithMaxSize(1))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("x\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "combined-20261017.log"), r.Path())
}

func TestDailyRotator_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	_, err := NewDailyRotator(dir, "error")
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDailyRotator_SizeCapKeepsDatePrefix(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)}
	r, err := NewDailyRotator(dir, "combined", WithClock(clock.now), WithMaxSize(1), WithMaxAge(14))
	require.NoError(t, err)
	defer r.Close()

	chunk := []byte(strings.Repeat("x", 100*1024) + "\n")
	for i := 0; i < 12; i++ {
		_, err = r.Write(chunk)
		require.NoError(t, err)
	}

	segment := filepath.Join(dir, "combined-2026-10-17.log")
	info, err := os.Stat(segment)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(1024*1024), "active segment stays under the cap")

	backups := func() []string {
		var names []string
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "combined-2026-10-17-") && strings.HasSuffix(e.Name(), ".log") {
				names = append(names, e.Name())
			}
		}
		return names
	}
	require.NotEmpty(t, backups(), "writing past the cap must leave a size backup for the same day")

	clock.t = clock.t.AddDate(0, 0, 15)
	_, err = r.Write([]byte("x\n"))
	require.NoError(t, err)

	_, err = os.Stat(segment)
	assert.True(t, os.IsNotExist(err), "the expired day's segment is pruned")
	assert.Empty(t, backups(), "size backups age out with their day")
}
