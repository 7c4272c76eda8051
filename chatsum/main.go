package main

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"errors"
	. "fmt"
	"github.com/goccy/go-json"
	"github.com/p7r0x7/chathash"
	"github.com/p7r0x7/chathash/classify"
	"github.com/p7r0x7/chathash/settings"
	"github.com/p7r0x7/chathash/trig"
	"github.com/p7r0x7/vainpath"
	. "github.com/spf13/pflag"
	"github.com/tmthrgd/go-hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const n = "\n"
const success, failure, invalid = 0, 1, 2

/* Where the game keeps the line being typed; never word aligned. */
const lineAddr = 0x640b63

var warnings = 0

func main() { os.Exit(program()) }

// help prints a usage menu. To consistently correctly render this menu in most terminal windows,
// its content should be no wider than 80 columns.
func help() {
	origin, err := os.Executable()
	if err != nil {
		origin = "chatsum" /* Default binary name */
	} else {
		origin = filepath.Base(origin)
	}
	name := vainpath.Trim(origin, "…", 12)
	spaces := strings.Repeat(" ", utf8.RuneCountInString(name)+3)
	Fprint(os.Stderr, yell, "Keyed chat-line classification for trigger-only map scripts.", zero, n+n+
		"Usage:"+n+
		"  ", name, " [-h]"+n,
		spaces, "[-c PATH] [-b <backend>] [-k K0,K1|--seed S] [-jmt] -|PATH..."+n,
		spaces, "[-c PATH] [-b <backend>] [-k K0,K1|--seed S] [-jmt] -s LINE..."+n,
		spaces, "-d [-k K0,K1|--seed S] -s LINE..."+n+n+
			"Options:"+n)
	PrintDefaults()
	name = vainpath.Trim(origin, "…", 15)
	Fprint(os.Stderr, n+"Each line of each file is one chat event. `", name, "` draws fresh keys when"+
		n+"neither --keys nor --seed is given; digests from such runs are marked (*)."+n+
		"`-` is treated as a reference to ", os.Stdin.Name(), " on this platform."+n)
}

func logger() *slog.Logger {
	level := slog.LevelInfo
	switch {
	case pQuiet:
		level = slog.LevelError
	case pVerbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func keys(log *slog.Logger) (chathash.Keys, error) {
	switch {
	case pKeys != "":
		return chathash.ParseKeys(pKeys)
	case pSeed != "":
		return chathash.SeededKeys([]byte(pSeed)), nil
	}
	k, err := chathash.NewKeys(rand.Reader)
	if err == nil {
		star = "(*)"
		log.Info("drew fresh keys; pass them with --keys to reproduce this run", "keys", k)
	}
	return k, err
}

/* event is what one classified line prints as under --json. */
type event struct {
	Line string `json:"line"`
	classify.Result
	Triggers uint64 `json:"triggers,omitempty"`
	Elapsed  string `json:"elapsed,omitempty"`
}

// This program is a command-line interface for classify: it compiles one settings file and runs
// every given line through an Engine the way the map would on each chat event.
func program() int {
	if pHelp || NArg() == 0 {
		help()
		return success
	}
	log := logger()

	k, err := keys(log)
	if err != nil {
		log.Error("keys", "err", err)
		return invalid
	}
	if pDigest {
		return digests(k)
	}

	var in []classify.Setting
	if pConfig != "" {
		if in, err = settings.Load(pConfig, pSection); err != nil {
			log.Error("settings", "err", err)
			return invalid
		}
	}
	cfg, err := classify.Compile(in, k, log)
	if err != nil {
		log.Error("compile", "err", err)
		return invalid
	}

	mem := chathash.NewSpace()
	e, m, err := classify.NewEngine(cfg, mem, classify.Kind(pBackend))
	if err != nil {
		log.Error("backend", "err", err)
		return invalid
	}
	if m != nil {
		m.Budget = pBudget
	}

	enc := json.NewEncoder(os.Stdout)
	if pManifest {
		if pJSON {
			_ = enc.Encode(cfg.Summary())
		} else {
			_, _ = cfg.Summary().WriteTo(os.Stdout)
			os.Stdout.WriteString(n)
		}
	}

	handle := func(line string) {
		start := time.Now()
		chathash.WriteBytes(mem, lineAddr, []byte(line))
		e.Reset()
		ev := event{Line: line, Result: e.OnEvent(lineAddr, uint32(len(line)))}
		if m != nil {
			ev.Triggers = m.Tick()
		}
		if pTime {
			ev.Elapsed = elapsed(start)
		}
		if pJSON {
			_ = enc.Encode(ev)
		} else {
			report(ev)
		}
	}

	for _, target := range Args() {
		if pString {
			handle(target)
			continue
		}
		err := lines(target, handle)
		if err != nil {
			warn(err)
		}
	}

	if m != nil && errors.Is(m.Err(), trig.ErrBudget) {
		log.Error("constrained backend", "budget", pBudget, "err", m.Err())
		return failure
	}
	if !pQuiet {
		if warnings == 1 {
			Fprint(os.Stderr, "1 ", purp, "target is a directory or is otherwise inaccessible.", zero, n)
		} else if warnings > 1 {
			Fprint(os.Stderr, warnings, " ", purp, "targets are directories or are otherwise inaccessible.", zero, n)
		}
	}
	if warnings > 0 {
		return failure
	}
	return success
}

/* lines calls fn with every line of target, a path or `-` for STDIN. */
func lines(target string, fn func(string)) error {
	var r io.Reader
	if target == "-" || target == os.Stdin.Name() {
		r = os.Stdin
	} else {
		f, err := os.Open(target)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if !(pQuiet || pJSON) {
		if pNoCodes {
			Print(filepath.Clean(target), n)
		} else {
			Print(und, vainpath.Simplify(target), zero, n)
		}
	}
	s := bufio.NewScanner(r)
	for s.Scan() {
		fn(strings.TrimRight(s.Text(), "\r"))
	}
	return s.Err()
}

func report(ev event) {
	digest := "--------"
	if ev.Hashed {
		digest = sum(ev.Digest)
	}
	pattern := "-"
	if ev.Pattern != 0 {
		pattern = Sprint(ev.Pattern)
	}
	if pQuiet {
		Print(ev.Code, " ", pattern, n)
		return
	}
	Printf("%s%-4d %-4s%s %s%s  %q", yell, ev.Code, pattern, zero, digest, star, ev.Line)
	if ev.Elapsed != "" {
		Print(" (", ev.Elapsed, ")")
	}
	if ev.Triggers != 0 {
		Print(" ", purp, ev.Triggers, " triggers", zero)
	}
	Print(n)
}

/* digests prints only the keyed digest of each argument, the way a hash CLI would. */
func digests(k chathash.Keys) int {
	d := chathash.New(k)
	each := func(line string) {
		d.Reset()
		d.Write([]byte(line))
		if pQuiet {
			Print(sum(d.Sum32()), n)
		} else {
			Print(star, yell, sum(d.Sum32()), zero, `  "`, line, `"`, n)
		}
	}
	for _, target := range Args() {
		if pString {
			each(target)
		} else if err := lines(target, each); err != nil {
			warn(err)
		}
	}
	if warnings > 0 {
		return failure
	}
	return success
}

func sum(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return hex.EncodeToString(b[:])
}

func elapsed(start time.Time) string {
	d := time.Since(start)
	if d.Microseconds() > 99 {
		d = d.Truncate(10 * time.Microsecond)
	}
	return d.String()
}

func warn(err error) {
	var pe *os.PathError
	if errors.As(err, &pe) && !pQuiet {
		Fprint(os.Stderr, purp, pe.Op, " ", vainpath.Simplify(pe.Path), ": ", pe.Err, zero, n)
	} else if !pQuiet {
		Fprint(os.Stderr, purp, err, zero, n)
	}
	warnings++
}
