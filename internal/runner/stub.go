package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/scdash/internal/command"
)

var (
	stubMaps     = []string{"Big Game Hunters", "Python", "Luna", "Heartbreak Ridge", "Fighting Spirit"}
	stubMatchups = []string{"TvT", "ZvZ", "PvP", "TvZ", "TvP", "ZvP"}
	stubRaces    = []string{"Terran", "Zerg", "Protoss"}
)

// Stub fabricates CSV output shaped like sctool's, after a random delay
// between MinDelay and MaxDelay. It never starts a process.
type Stub struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Logger   *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewStub returns a Stub with the default 1-3s delay.
func NewStub(logger *slog.Logger) *Stub {
	return NewStubWithSource(logger, time.Second, 3*time.Second, rand.NewSource(time.Now().UnixNano()))
}

// NewStubWithSource returns a Stub with explicit delays and random source.
func NewStubWithSource(logger *slog.Logger, minDelay, maxDelay time.Duration, src rand.Source) *Stub {
	return &Stub{MinDelay: minDelay, MaxDelay: maxDelay, Logger: logger, rnd: rand.New(src)}
}

// Run implements Runner.
func (s *Stub) Run(ctx context.Context, args []string) (Output, error) {
	if s.Logger != nil {
		s.Logger.Info("executing sctool command", "cmd", command.String(command.Binary, args), "stub", true)
	}
	if err := s.wait(ctx); err != nil {
		return Output{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Output{Stdout: s.generate(columnsFor(args))}, nil
}

func (s *Stub) wait(ctx context.Context) error {
	delay := s.MinDelay
	if span := s.MaxDelay - s.MinDelay; span > 0 {
		s.mu.Lock()
		delay += time.Duration(s.rnd.Int63n(int64(span)))
		s.mu.Unlock()
	}
	if delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type stubColumns struct {
	date, duration, mapName, matchup, player bool
}

func columnsFor(args []string) stubColumns {
	var c stubColumns
	for _, a := range args {
		if strings.Contains(a, command.FlagPlayer) {
			c.player = true
		}
		switch a {
		case "date":
			c.date = true
		case "duration-minutes":
			c.duration = true
		case "map-name":
			c.mapName = true
		case "matchup":
			c.matchup = true
		}
	}
	return c
}

func (s *Stub) generate(c stubColumns) string {
	var headers []string
	if c.date {
		headers = append(headers, "date")
	}
	if c.duration {
		headers = append(headers, "duration-minutes")
	}
	if c.mapName {
		headers = append(headers, "map-name")
	}
	if c.matchup {
		headers = append(headers, "matchup")
	}
	if c.player {
		headers = append(headers, "my-race", "my-apm", "my-win")
	}

	rowCount := s.rnd.Intn(10) + 10
	lines := make([]string, 0, rowCount+1)
	lines = append(lines, strings.Join(headers, ","))
	for i := 0; i < rowCount; i++ {
		var row []string
		if c.date {
			row = append(row, fmt.Sprintf("2024-09-%02d", s.rnd.Intn(30)+1))
		}
		if c.duration {
			row = append(row, strconv.Itoa(s.rnd.Intn(60)+5))
		}
		if c.mapName {
			row = append(row, stubMaps[s.rnd.Intn(len(stubMaps))])
		}
		if c.matchup {
			row = append(row, stubMatchups[s.rnd.Intn(len(stubMatchups))])
		}
		if c.player {
			row = append(row, stubRaces[s.rnd.Intn(len(stubRaces))])
			row = append(row, strconv.Itoa(s.rnd.Intn(200)+100))
			row = append(row, strconv.FormatBool(s.rnd.Float64() > 0.5))
		}
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}
