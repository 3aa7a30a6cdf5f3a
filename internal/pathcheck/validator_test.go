package pathcheck

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestSimulatedEmptyPath(t *testing.T) {
	v := NewSimulatedWithSource(time.Hour, rand.NewSource(1))
	start := time.Now()
	res := v.Validate(context.Background(), "", true)
	if res.Valid || res.Error != ErrPathRequired {
		t.Fatalf("unexpected result: %+v", res)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("empty path must not wait")
	}
}

func TestSimulatedFileCount(t *testing.T) {
	v := NewSimulatedWithSource(0, rand.NewSource(42))
	for i := 0; i < 50; i++ {
		res := v.Validate(context.Background(), "/reps", true)
		if !res.Valid {
			t.Fatalf("expected valid result: %+v", res)
		}
		if res.FileCount < 10 || res.FileCount > 109 {
			t.Fatalf("file count out of range: %d", res.FileCount)
		}
	}
}

func TestSimulatedCancel(t *testing.T) {
	v := NewSimulatedWithSource(time.Hour, rand.NewSource(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := v.Validate(ctx, "/reps", true); res.Valid {
		t.Fatalf("expected cancelled validation to be invalid")
	}
}

func TestDirValidator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rep"))
	writeFile(t, filepath.Join(dir, "b.REP"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "season", "c.rep"))

	ctx := context.Background()
	res := Dir{}.Validate(ctx, dir, true)
	if !res.Valid || res.FileCount != 3 {
		t.Fatalf("unexpected recursive result: %+v", res)
	}
	res = Dir{}.Validate(ctx, dir, false)
	if !res.Valid || res.FileCount != 2 {
		t.Fatalf("unexpected flat result: %+v", res)
	}
	if res := (Dir{}).Validate(ctx, filepath.Join(dir, "missing"), true); res.Valid {
		t.Fatalf("expected missing dir to be invalid")
	}
	if res := (Dir{}).Validate(ctx, filepath.Join(dir, "a.rep"), true); res.Valid {
		t.Fatalf("expected file path to be invalid")
	}
	if res := (Dir{}).Validate(ctx, t.TempDir(), true); res.Valid || res.Error != "No replay files found" {
		t.Fatalf("expected empty dir to be invalid: %+v", res)
	}
}

type blockingValidator struct {
	started chan string
}

func (b *blockingValidator) Validate(ctx context.Context, path string, _ bool) Validation {
	b.started <- path
	if path == "/slow" {
		<-ctx.Done()
		return Validation{Error: ctx.Err().Error()}
	}
	return Validation{Valid: true, FileCount: 1}
}

func TestLatestDropsSupersededCall(t *testing.T) {
	bv := &blockingValidator{started: make(chan string, 2)}
	l := NewLatest(bv)

	var wg sync.WaitGroup
	var slowOK bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowOK = l.Validate(context.Background(), "/slow", true)
	}()
	<-bv.started

	res, ok := l.Validate(context.Background(), "/fast", true)
	<-bv.started
	wg.Wait()

	if !ok || !res.Valid {
		t.Fatalf("expected newest call to win: %+v ok=%v", res, ok)
	}
	if slowOK {
		t.Fatalf("expected superseded call to be stale")
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
