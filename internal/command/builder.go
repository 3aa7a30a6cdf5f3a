// Package command builds sctool command lines from analysis settings.
package command

import (
	"strings"

	"github.com/verte-zerg/scdash/internal/model"
)

// Binary is the default name of the external analyzer.
const Binary = "sctool"

// Flags understood by sctool.
const (
	FlagReplayDir   = "-replay-dir"
	FlagPlayer      = "-me"
	FlagNoRecursive = "-no-recursive"
	FlagOutput      = "-o"
	FlagQuiet       = "-quiet"
)

// Build maps settings to sctool arguments. Path and player values are
// wrapped in double quotes.
func Build(s model.Settings) []string {
	args := make([]string, 0, 8+len(s.SelectedAnalyzers))
	args = append(args, FlagReplayDir, quote(s.ReplayPath))
	if s.PlayerName != "" {
		args = append(args, FlagPlayer, quote(s.PlayerName))
	}
	if !s.RecursiveSearch {
		args = append(args, FlagNoRecursive)
	}
	args = append(args, s.SelectedAnalyzers...)
	args = append(args, FlagOutput, string(s.OutputFormat))
	args = append(args, FlagQuiet)
	return args
}

// String renders the full command line for display.
func String(binary string, args []string) string {
	if binary == "" {
		binary = Binary
	}
	return strings.Join(append([]string{binary}, args...), " ")
}

// Unquote strips one pair of surrounding double quotes, as a shell would.
func Unquote(arg string) string {
	if len(arg) >= 2 && strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`) {
		return arg[1 : len(arg)-1]
	}
	return arg
}

func quote(s string) string {
	return `"` + s + `"`
}
