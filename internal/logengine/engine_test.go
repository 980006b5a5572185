// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	dirs map[string]string
}

func (r *fakeResolver) LogDir(service string) (string, error) {
	dir, ok := r.dirs[service]
	if !ok {
		return "", fmt.Errorf("unknown service %q", service)
	}
	return dir, nil
}

func newTestEngine(t *testing.T, service string, lines []string) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	logDir := filepath.Join(root, service, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0o755))

	path := filepath.Join(logDir, "app.log")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	resolver := &fakeResolver{dirs: map[string]string{service: logDir}}
	e := New(Config{Resolver: resolver, Clock: testClock(t)})
	t.Cleanup(e.Shutdown)
	return e, logDir
}

func TestEngineResolveFileRejectsTraversal(t *testing.T) {
	e, _ := newTestEngine(t, "web", sampleLines)

	_, err := e.ReadLines(context.Background(), "web", "../secret", 0, 1)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))

	_, err = e.ReadLines(context.Background(), "web", "..", 0, 1)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestEngineResolveFileRejectsUnknownService(t *testing.T) {
	e, _ := newTestEngine(t, "web", sampleLines)

	_, err := e.ReadLines(context.Background(), "ghost", "app.log", 0, 1)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestEngineReadTimeRangeBoundedMidFile(t *testing.T) {
	e, _ := newTestEngine(t, "web", sampleLines)

	result, err := e.ReadTimeRange(context.Background(), "web", "app.log", "11/20/2025, 11:30:00 PM", "11/21/2025, 1:00:00 AM", 100, 0, "")
	require.NoError(t, err)
	require.Equal(t, []string{
		"11/20/2025, 11:30:00 PM world",
		"11/21/2025, 12:00:00 AM foo",
		"11/21/2025, 00:30:00 continuation line",
		"11/21/2025, 01:00:00 AM bar",
	}, result.Lines)
}

func TestEngineGetTimeRangeExtendsEndAfterAppend(t *testing.T) {
	e, logDir := newTestEngine(t, "web", sampleLines)

	tr, err := e.GetTimeRange(context.Background(), "web", "app.log")
	require.NoError(t, err)
	require.NotNil(t, tr.Start)
	require.NotNil(t, tr.End)

	f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("11/21/2025, 2:00:00 AM baz\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	tr2, err := e.GetTimeRange(context.Background(), "web", "app.log")
	require.NoError(t, err)
	require.Equal(t, *tr.Start, *tr2.Start)
	require.NotEqual(t, *tr.End, *tr2.End)
}

func TestEngineListLogFilesPrunesOrphanedSidecars(t *testing.T) {
	e, logDir := newTestEngine(t, "web", sampleLines)

	_, err := e.GetTimeRange(context.Background(), "web", "app.log")
	require.NoError(t, err)

	orphan := filepath.Join(logDir, "gone.log.timecache")
	require.NoError(t, os.WriteFile(orphan, []byte("{}"), 0o644))

	names, err := e.ListLogFiles("web")
	require.NoError(t, err)
	require.Equal(t, []string{"app.log"}, names)

	_, err = os.Stat(orphan)
	require.True(t, os.IsNotExist(err))
}

func TestEngineFollowRejectsRotatedFile(t *testing.T) {
	e, logDir := newTestEngine(t, "web", sampleLines)
	rotated := filepath.Join(logDir, "app.log.1")
	require.NoError(t, os.WriteFile(rotated, []byte(sampleLines[0]+"\n"), 0o644))

	_, _, err := e.Follow("web", "app.log.1", "")
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestEngineFollowActiveFile(t *testing.T) {
	e, logDir := newTestEngine(t, "web", nil)

	sub, cancel, err := e.Follow("web", "app.log", "")
	require.NoError(t, err)
	defer cancel()
	require.Equal(t, 1, e.ActiveFollowers())

	f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("hello\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case line := <-sub.Lines():
		require.Equal(t, "hello", line)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for follow delivery")
	}
}

// TestEngineReadLinesCancelledContextYieldsNoPartialResult verifies that
// an already-cancelled context short-circuits ReadLines with KindCancelled
// and no lines.
func TestEngineReadLinesCancelledContextYieldsNoPartialResult(t *testing.T) {
	e, _ := newTestEngine(t, "web", sampleLines)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines, err := e.ReadLines(ctx, "web", "app.log", 0, 10)
	require.Error(t, err)
	require.Equal(t, KindCancelled, KindOf(err))
	require.Nil(t, lines)
}

// TestEngineReadTimeRangeCancelledContextYieldsNoPartialResult mirrors
// the ReadLines case for the time-range read path.
func TestEngineReadTimeRangeCancelledContextYieldsNoPartialResult(t *testing.T) {
	e, _ := newTestEngine(t, "web", sampleLines)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.ReadTimeRange(ctx, "web", "app.log", "", "", 0, 0, "")
	require.Error(t, err)
	require.Equal(t, KindCancelled, KindOf(err))
	require.Nil(t, result.Lines)
}

// TestEngineGetTimeRangeCancelledContextYieldsNoPartialResult mirrors
// the above for the cached metadata read.
func TestEngineGetTimeRangeCancelledContextYieldsNoPartialResult(t *testing.T) {
	e, _ := newTestEngine(t, "web", sampleLines)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := e.GetTimeRange(ctx, "web", "app.log")
	require.Error(t, err)
	require.Equal(t, KindCancelled, KindOf(err))
	require.Nil(t, tr.Start)
	require.Nil(t, tr.End)
}

// TestEngineReadTimeRangeOnSparseLargeFile verifies scenario S6's
// correctness property (exact matching lines) on a smaller synthesized
// file with a sparse timestamp distribution — every 200th line carries a
// timestamp, the rest are continuation lines, mirroring the scenario's
// shape without materializing a full gigabyte in a unit test.
func TestEngineReadTimeRangeOnSparseLargeFile(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var lines []string
	var tsAtGroup []time.Time
	groups := 200
	for g := 0; g < groups; g++ {
		ts := base.Add(time.Duration(g) * time.Minute)
		tsAtGroup = append(tsAtGroup, ts)
		header := fmt.Sprintf("%d/%d/%d, %d:%02d:%02d %s line %d",
			int(ts.Month()), ts.Day(), ts.Year(), hour12(ts), ts.Minute(), ts.Second(), meridiem(ts), g)
		lines = append(lines, header)
		for i := 0; i < 199; i++ {
			lines = append(lines, fmt.Sprintf("  continuation %d.%d", g, i))
		}
	}

	e, _ := newTestEngine(t, "web", lines)

	from := tsAtGroup[50].Format("1/2/2006, 3:04:05 PM")
	to := tsAtGroup[52].Format("1/2/2006, 3:04:05 PM")

	result, err := e.ReadTimeRange(context.Background(), "web", "app.log", from, to, 0, 0, "")
	require.NoError(t, err)
	require.Equal(t, lines[50*200], result.Lines[0])
	require.Equal(t, lines[53*200-1], result.Lines[len(result.Lines)-1])
	require.Equal(t, 3*200, result.Total)
}
