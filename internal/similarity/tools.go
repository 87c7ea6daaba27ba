package similarity

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vk/variantgrid/internal/command"
	"github.com/vk/variantgrid/internal/config"
	"github.com/vk/variantgrid/internal/ctxlog"
)

// ScoreError marks a pair whose score could not be obtained.
const ScoreError = "ERROR"

// Pair is the score of two files as reported by one tool.
type Pair struct {
	File1 string
	File2 string
	Score string
}

// Tool scores every pair of a set of files.
type Tool interface {
	Name() string
	Compare(ctx context.Context, files []string) []Pair
}

// NewTool returns the tool registered under name.
func NewTool(name string, cfg *config.Model, runner command.Runner) (Tool, error) {
	base := invoker{cfg: cfg, runner: runner}
	switch name {
	case "ssdeep":
		return &ssdeep{base}, cfg.RequireCommands(config.CmdSsdeepHash, config.CmdSsdeepMatch)
	case "sdhash":
		return &sdhash{base}, cfg.RequireCommands(config.CmdSdhashCompare)
	case "radiff2":
		return &radiff2{base}, cfg.RequireCommands(config.CmdRadiff2Compare)
	default:
		return nil, fmt.Errorf("unknown similarity tool %q", name)
	}
}

type invoker struct {
	cfg    *config.Model
	runner command.Runner
}

func (i invoker) run(ctx context.Context, name string, vars config.Vars) (*command.Result, error) {
	args, err := i.cfg.Render(name, vars)
	if err != nil {
		return nil, err
	}
	return i.runner.Run(ctx, command.Spec{Description: name, Args: args})
}

// pairs calls fn for every unordered pair of files, in input order.
func pairs(files []string, fn func(a, b string)) {
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			fn(files[i], files[j])
		}
	}
}

type ssdeep struct{ invoker }

func (t *ssdeep) Name() string { return "ssdeep" }

// Compare hashes the left file of each pair into a temporary signature file
// and matches the right file against it.
func (t *ssdeep) Compare(ctx context.Context, files []string) []Pair {
	logger := ctxlog.FromContext(ctx)
	hashes := make(map[string]string)
	defer func() {
		for _, path := range hashes {
			os.Remove(path)
		}
	}()

	var out []Pair
	pairs(files, func(a, b string) {
		p := Pair{File1: filepath.Base(a), File2: filepath.Base(b), Score: ScoreError}
		defer func() { out = append(out, p) }()

		sig, ok := hashes[a]
		if !ok {
			var err error
			if sig, err = t.signature(ctx, a); err != nil {
				logger.Warn("ssdeep hashing failed.", "file", a, "error", err)
				return
			}
			hashes[a] = sig
		}

		res, err := t.run(ctx, config.CmdSsdeepMatch, config.Vars{"hashes": sig, "right": b})
		if err != nil {
			logger.Warn("ssdeep matching failed.", "left", a, "right", b, "error", err)
			return
		}
		score, err := parseSsdeep(res.Stdout)
		if err != nil {
			logger.Warn("Unreadable ssdeep output.", "left", a, "right", b, "error", err)
			return
		}
		p.Score = score
	})
	return out
}

func (t *ssdeep) signature(ctx context.Context, file string) (string, error) {
	res, err := t.run(ctx, config.CmdSsdeepHash, config.Vars{"left": file})
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp("", "ssdeep-*.hash")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(res.Stdout); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// parseSsdeep reads "<right> matches <left> (NN)". No match scores 0.
func parseSsdeep(out []byte) (string, error) {
	text := string(out)
	if !strings.Contains(text, "matches") {
		return "0", nil
	}
	open := strings.LastIndex(text, "(")
	end := strings.LastIndex(text, ")")
	if open < 0 || end < open {
		return "", fmt.Errorf("no score in %q", strings.TrimSpace(text))
	}
	n, err := strconv.Atoi(strings.TrimSpace(text[open+1 : end]))
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

type sdhash struct{ invoker }

func (t *sdhash) Name() string { return "sdhash" }

// Compare runs one all-pairs comparison. Exit status 1 means no pair
// reached the reporting threshold; any other failure scores every pair
// ERROR.
func (t *sdhash) Compare(ctx context.Context, files []string) []Pair {
	res, err := t.run(ctx, config.CmdSdhashCompare, config.Vars{"files": files})
	if err != nil {
		if code, ok := command.ExitStatus(err); ok && code == 1 {
			ctxlog.FromContext(ctx).Info("sdhash found no matches.", "files", len(files))
			return nil
		}
		ctxlog.FromContext(ctx).Warn("sdhash comparison failed.", "error", err)
		var out []Pair
		pairs(files, func(a, b string) {
			out = append(out, Pair{File1: filepath.Base(a), File2: filepath.Base(b), Score: ScoreError})
		})
		return out
	}
	return parseSdhash(res.Stdout)
}

// parseSdhash reads lines of "file1<sep>file2<sep>score" where the
// separator is "|" or ",".
func parseSdhash(out []byte) []Pair {
	var pairs []Pair
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		sep := ","
		if strings.Contains(line, "|") {
			sep = "|"
		}
		parts := strings.Split(line, sep)
		if len(parts) != 3 {
			continue
		}
		pairs = append(pairs, Pair{
			File1: filepath.Base(strings.TrimSpace(parts[0])),
			File2: filepath.Base(strings.TrimSpace(parts[1])),
			Score: strings.TrimSpace(parts[2]),
		})
	}
	return pairs
}

type radiff2 struct{ invoker }

func (t *radiff2) Name() string { return "radiff2" }

func (t *radiff2) Compare(ctx context.Context, files []string) []Pair {
	logger := ctxlog.FromContext(ctx)
	var out []Pair
	pairs(files, func(a, b string) {
		p := Pair{File1: filepath.Base(a), File2: filepath.Base(b), Score: ScoreError}
		res, err := t.run(ctx, config.CmdRadiff2Compare, config.Vars{"left": a, "right": b})
		if err != nil {
			logger.Warn("radiff2 comparison failed.", "left", a, "right", b, "error", err)
		} else {
			p.Score = parseRadiff2(res.Stdout)
		}
		out = append(out, p)
	})
	return out
}

// parseRadiff2 extracts the value of the "similarity:" line, or "N/A".
func parseRadiff2(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "similarity") {
			continue
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return ScoreError
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return "N/A"
}
