package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const rotatedTimeFormat = "2006-01-02_15-04-05"

// RotationStrategy decides what happens to a full log file. The zero value
// keeps only the current file.
type RotationStrategy struct {
	keep int
}

// KeepOne deletes the full file.
func KeepOne() RotationStrategy { return RotationStrategy{} }

// KeepAll renames the full file with a timestamp suffix and never prunes.
func KeepAll() RotationStrategy { return RotationStrategy{keep: -1} }

// KeepSome renames like KeepAll and then keeps the newest n rotated files.
func KeepSome(n int) RotationStrategy {
	if n < 1 {
		n = 1
	}
	return RotationStrategy{keep: n}
}

func (r RotationStrategy) String() string {
	switch {
	case r.keep == 0:
		return "keep-one"
	case r.keep < 0:
		return "keep-all"
	default:
		return fmt.Sprintf("keep-some(%d)", r.keep)
	}
}

type rotatingFile struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	strategy RotationStrategy
	now      func() time.Time
	file     *os.File
	size     int64
	closed   bool
}

func openRotatingFile(path string, maxSize int64, strategy RotationStrategy, now func() time.Time) (*rotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	r := &rotatingFile{path: path, maxSize: maxSize, strategy: strategy, now: now}
	if err := r.open(); err != nil {
		return nil, err
	}
	if r.maxSize > 0 && r.size >= r.maxSize {
		if err := r.rotate(); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

// Write reopens the live file if an earlier rotation left it closed, so a
// failed rotation only costs the write that hit it.
func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, os.ErrClosed
	}
	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *rotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

// rotate must be called with mu held. The live path is reopened whether or
// not the old file could be moved out of the way.
func (r *rotatingFile) rotate() (err error) {
	closeErr := r.file.Close()
	r.file = nil
	defer func() {
		if openErr := r.open(); openErr != nil && err == nil {
			err = openErr
		}
	}()
	if closeErr != nil {
		return fmt.Errorf("close log file: %w", closeErr)
	}

	if r.strategy.keep == 0 {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove log file: %w", err)
		}
		return nil
	}

	target, err := r.rotatedPath()
	if err != nil {
		return err
	}
	if err := os.Rename(r.path, target); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	if r.strategy.keep > 0 {
		return r.prune(r.strategy.keep)
	}
	return nil
}

func (r *rotatingFile) stem() (dir, stem string) {
	dir = filepath.Dir(r.path)
	stem = strings.TrimSuffix(filepath.Base(r.path), filepath.Ext(r.path))
	return dir, stem
}

type rotatedFile struct {
	path    string
	stamp   string
	counter int
}

// rotatedPath names the next rotated file. Within one timestamp the counter
// only grows, so a name freed by pruning is never handed out again while a
// newer sibling exists.
func (r *rotatingFile) rotatedPath() (string, error) {
	dir, stem := r.stem()
	stamp := r.now().Format(rotatedTimeFormat)

	files, err := r.rotated()
	if err != nil {
		return "", err
	}
	next := 0
	for _, f := range files {
		if f.stamp == stamp && f.counter >= next {
			next = f.counter + 1
		}
	}

	if next == 0 {
		return filepath.Join(dir, stem+"_"+stamp+".log"), nil
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%d.log", stem, stamp, next)), nil
}

// rotated lists rotated siblings oldest first: by timestamp, then by counter,
// with the unsuffixed name as counter 0.
func (r *rotatingFile) rotated() ([]rotatedFile, error) {
	dir, stem := r.stem()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list log dir: %w", err)
	}

	prefix := stem + "_"
	var out []rotatedFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		rest := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log")
		if len(rest) < len(rotatedTimeFormat) {
			continue
		}
		stamp, tail := rest[:len(rotatedTimeFormat)], rest[len(rotatedTimeFormat):]
		if _, err := time.Parse(rotatedTimeFormat, stamp); err != nil {
			continue
		}

		counter := 0
		if tail != "" {
			n, err := strconv.Atoi(strings.TrimPrefix(tail, "_"))
			if !strings.HasPrefix(tail, "_") || err != nil || n < 1 {
				continue
			}
			counter = n
		}
		out = append(out, rotatedFile{path: filepath.Join(dir, name), stamp: stamp, counter: counter})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].stamp != out[j].stamp {
			return out[i].stamp < out[j].stamp
		}
		return out[i].counter < out[j].counter
	})
	return out, nil
}

func (r *rotatingFile) prune(keep int) error {
	files, err := r.rotated()
	if err != nil {
		return err
	}
	for len(files) > keep {
		if err := os.Remove(files[0].path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("prune log file: %w", err)
		}
		files = files[1:]
	}
	return nil
}
