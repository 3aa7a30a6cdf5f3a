package runner

import (
	"context"
	"errors"
	"math/rand"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/scdash/internal/command"
	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/parse"
)

func newTestStub(seed int64) *Stub {
	return NewStubWithSource(nil, 0, 0, rand.NewSource(seed))
}

func TestStubColumnsFollowArgs(t *testing.T) {
	s := model.DefaultSettings()
	s.ReplayPath = "/reps"
	out, err := newTestStub(1).Run(context.Background(), command.Build(s))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(out.Stdout, "\n")
	if lines[0] != "date,duration-minutes,map-name,matchup" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if rows := len(lines) - 1; rows < 10 || rows > 19 {
		t.Fatalf("row count out of range: %d", rows)
	}

	s.PlayerName = "Foo"
	s.SelectedAnalyzers = []string{"map-name"}
	out, err = newTestStub(2).Run(context.Background(), command.Build(s))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	header := strings.SplitN(out.Stdout, "\n", 2)[0]
	if header != "map-name,my-race,my-apm,my-win" {
		t.Fatalf("unexpected player header: %q", header)
	}
}

func TestStubValueRanges(t *testing.T) {
	s := model.DefaultSettings()
	s.ReplayPath = "/reps"
	s.PlayerName = "Foo"
	out, err := newTestStub(7).Run(context.Background(), command.Build(s))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(out.Stdout, "\n")
	for _, line := range lines[1:] {
		cells := strings.Split(line, ",")
		if len(cells) != 7 {
			t.Fatalf("unexpected cell count in %q", line)
		}
		if !strings.HasPrefix(cells[0], "2024-09-") {
			t.Fatalf("unexpected date %q", cells[0])
		}
		if d, _ := strconv.Atoi(cells[1]); d < 5 || d > 64 {
			t.Fatalf("duration out of range: %s", cells[1])
		}
		if apm, _ := strconv.Atoi(cells[5]); apm < 100 || apm > 299 {
			t.Fatalf("apm out of range: %s", cells[5])
		}
		if cells[6] != "true" && cells[6] != "false" {
			t.Fatalf("unexpected win cell %q", cells[6])
		}
	}
}

func TestStubRoundTrip(t *testing.T) {
	s := model.DefaultSettings()
	s.ReplayPath = "/reps"
	out, err := newTestStub(11).Run(context.Background(), command.Build(s))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(out.Stdout, "\n")
	rows := parse.CSV(out.Stdout)
	if len(rows) != len(lines)-1 {
		t.Fatalf("expected %d rows, got %d", len(lines)-1, len(rows))
	}
	for i, row := range rows {
		want, _ := strconv.Atoi(strings.Split(lines[i+1], ",")[1])
		if row.Duration != want {
			t.Fatalf("row %d: duration %d, want %d", i, row.Duration, want)
		}
		if row.PlayerAPM != nil {
			t.Fatalf("row %d: unexpected apm", i)
		}
	}
}

func TestStubHonorsContext(t *testing.T) {
	st := NewStubWithSource(nil, time.Hour, time.Hour, rand.NewSource(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := st.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecCapturesOutput(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	out, err := Exec{Binary: sh}.Run(context.Background(), []string{"-c", `"echo date; echo 2024-09-01"`})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Stdout != "date\n2024-09-01\n" {
		t.Fatalf("unexpected stdout %q", out.Stdout)
	}

	_, err = Exec{Binary: sh}.Run(context.Background(), []string{"-c", "echo boom >&2; exit 3"})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 3 || !strings.Contains(exitErr.Error(), "boom") {
		t.Fatalf("unexpected exit error: %v", exitErr)
	}
}
