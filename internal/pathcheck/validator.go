// Package pathcheck validates replay directories before an analysis run.
package pathcheck

import (
	"context"
	"errors"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrPathRequired is reported for an empty path.
const ErrPathRequired = "Path is required"

// ReplayExt is the extension of StarCraft replay files.
const ReplayExt = ".rep"

// Validation is the outcome of checking a replay directory.
type Validation struct {
	Valid     bool
	Error     string
	FileCount int
}

// Validator checks a replay directory.
type Validator interface {
	Validate(ctx context.Context, path string, recursive bool) Validation
}

// Simulated accepts every non-empty path after a fixed delay and reports a
// random file count. It stands in for Dir when no replays are available.
type Simulated struct {
	Delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulated returns a Simulated validator with the default 500ms delay.
func NewSimulated() *Simulated {
	return NewSimulatedWithSource(500*time.Millisecond, rand.NewSource(time.Now().UnixNano()))
}

// NewSimulatedWithSource returns a Simulated validator with an explicit delay and random source.
func NewSimulatedWithSource(delay time.Duration, src rand.Source) *Simulated {
	return &Simulated{Delay: delay, rnd: rand.New(src)}
}

// Validate implements Validator.
func (s *Simulated) Validate(ctx context.Context, path string, _ bool) Validation {
	if path == "" {
		return Validation{Error: ErrPathRequired}
	}
	if err := sleep(ctx, s.Delay); err != nil {
		return Validation{Error: err.Error()}
	}
	s.mu.Lock()
	count := s.rnd.Intn(100) + 10
	s.mu.Unlock()
	return Validation{Valid: true, FileCount: count}
}

// Dir inspects the filesystem and counts replay files.
type Dir struct{}

// Validate implements Validator.
func (Dir) Validate(ctx context.Context, path string, recursive bool) Validation {
	if path == "" {
		return Validation{Error: ErrPathRequired}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Validation{Error: "Path does not exist"}
		}
		return Validation{Error: err.Error()}
	}
	if !info.IsDir() {
		return Validation{Error: "Path is not a directory"}
	}
	count, err := CountReplays(ctx, path, recursive)
	if err != nil {
		return Validation{Error: err.Error()}
	}
	if count == 0 {
		return Validation{Error: "No replay files found"}
	}
	return Validation{Valid: true, FileCount: count}
}

// CountReplays counts files with the replay extension under root.
func CountReplays(ctx context.Context, root string, recursive bool) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsReplay(p) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IsReplay reports whether name has the replay extension.
func IsReplay(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ReplayExt)
}

// Latest wraps a Validator so only the newest call wins. Starting a call
// cancels the one in flight; a superseded call reports ok=false and its
// result must be dropped.
type Latest struct {
	v Validator

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewLatest wraps v.
func NewLatest(v Validator) *Latest {
	return &Latest{v: v}
}

// Validate runs the wrapped validator. ok is false when a newer call started
// before this one finished.
func (l *Latest) Validate(ctx context.Context, path string, recursive bool) (res Validation, ok bool) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	res = l.v.Validate(ctx, path, recursive)

	l.mu.Lock()
	defer l.mu.Unlock()
	cancel()
	if gen != l.gen {
		return res, false
	}
	l.cancel = nil
	return res, true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
