// Package backup keeps rolling snapshot copies of the rack database.
//
// Mutations call Notify, which arms (or re-arms) a debounce timer. When the
// timer fires, or when Flush is called, a snapshot is written to the backup
// directory and everything beyond the newest Keep files is removed. Failures
// on this path are logged at debug level and otherwise ignored.
//
// When a passphrase is configured, backups are age-encrypted (scrypt) and
// ASCII-armored, and carry a .age suffix.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rnwolfe/rack/internal/snapshot"
)

// ErrWrongPassphrase is returned when an encrypted backup cannot be opened
// with the configured passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// ErrNoBackups is returned by Resolve when the directory holds no backups.
var ErrNoBackups = errors.New("no backups found")

const (
	filePrefix = "rack-"
	fileExt    = ".json"
	ageExt     = ".age"
	stampFmt   = "20060102T150405.000Z"
)

// Source produces the document to back up.
type Source interface {
	Build(ctx context.Context) (*snapshot.Document, error)
}

// Restorer replaces live data from a snapshot.
type Restorer interface {
	Import(ctx context.Context, r io.Reader, format snapshot.Format) (*snapshot.Report, error)
}

// Options configures a Manager.
type Options struct {
	Dir      string
	Keep     int
	Debounce time.Duration
	// Passphrase enables encryption when non-empty.
	Passphrase string
	// WorkFactor overrides the scrypt work factor; zero keeps age's default.
	WorkFactor int
	Logger     *slog.Logger
	Now        func() time.Time
}

// Manager schedules and writes backups.
type Manager struct {
	src  Source
	opts Options

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	// inflight counts claimed backups that have not finished writing.
	inflight sync.WaitGroup

	runMu sync.Mutex
}

// Entry describes a backup file.
type Entry struct {
	Name      string
	Path      string
	Time      time.Time
	Size      int64
	Encrypted bool
}

// New creates a Manager. Keep and Debounce fall back to 3 and 30s.
func New(src Source, opts Options) *Manager {
	if opts.Keep <= 0 {
		opts.Keep = 3
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{src: src, opts: opts}
}

// Dir returns the backup directory.
func (m *Manager) Dir() string { return m.opts.Dir }

// Encrypted reports whether new backups are encrypted.
func (m *Manager) Encrypted() bool { return m.opts.Passphrase != "" }

// Notify records a mutation and restarts the debounce delay.
func (m *Manager) Notify() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = true
	if m.timer != nil {
		m.timer.Reset(m.opts.Debounce)
		return
	}
	m.timer = time.AfterFunc(m.opts.Debounce, m.fire)
}

// Pending reports whether a backup is scheduled.
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func (m *Manager) fire() {
	if !m.take() {
		return
	}
	defer m.inflight.Done()
	m.runQuiet(context.Background())
}

// take claims the pending backup, if any. A successful claim must be
// released with inflight.Done once the backup is written.
func (m *Manager) take() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending {
		return false
	}
	m.pending = false
	m.inflight.Add(1)
	if m.timer != nil {
		m.timer.Stop()
	}
	return true
}

// Flush writes a pending backup immediately, or waits for one the timer
// already started. It never returns an error.
func (m *Manager) Flush(ctx context.Context) {
	if m.take() {
		defer m.inflight.Done()
		m.runQuiet(ctx)
		return
	}
	m.inflight.Wait()
}

func (m *Manager) runQuiet(ctx context.Context) {
	path, err := m.Run(ctx)
	if err != nil {
		m.opts.Logger.Debug("auto-backup failed", "err", err)
		return
	}
	m.opts.Logger.Debug("auto-backup written", "path", path)
}

// Run writes a backup now and prunes old ones. It returns the new file's path.
func (m *Manager) Run(ctx context.Context) (string, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	doc, err := m.src.Build(ctx)
	if err != nil {
		return "", fmt.Errorf("building snapshot: %w", err)
	}
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, doc, snapshot.FormatJSON); err != nil {
		return "", err
	}
	data := buf.Bytes()

	name := filePrefix + m.opts.Now().UTC().Format(stampFmt) + fileExt
	if m.Encrypted() {
		if data, err = encrypt(data, m.opts.Passphrase, m.opts.WorkFactor); err != nil {
			return "", err
		}
		name += ageExt
	}

	if err := os.MkdirAll(m.opts.Dir, 0o700); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	path := filepath.Join(m.opts.Dir, name)
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	if err := m.prune(); err != nil {
		return path, err
	}
	return path, nil
}

// List returns every backup, newest first.
func (m *Manager) List() ([]Entry, error) {
	dirents, err := os.ReadDir(m.opts.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var out []Entry
	for _, d := range dirents {
		e, ok := parseName(d.Name())
		if !ok || d.IsDir() {
			continue
		}
		e.Path = filepath.Join(m.opts.Dir, d.Name())
		if info, err := d.Info(); err == nil {
			e.Size = info.Size()
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (m *Manager) prune() error {
	entries, err := m.List()
	if err != nil {
		return err
	}
	for _, e := range entries[min(len(entries), m.opts.Keep):] {
		if err := os.Remove(e.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing old backup %s: %w", e.Name, err)
		}
	}
	return nil
}

// Resolve maps "latest", a bare file name, or a path to a backup file.
func (m *Manager) Resolve(name string) (string, error) {
	if name == "" || name == "latest" {
		entries, err := m.List()
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", ErrNoBackups
		}
		return entries[0].Path, nil
	}
	if !strings.ContainsRune(name, filepath.Separator) {
		return filepath.Join(m.opts.Dir, name), nil
	}
	return name, nil
}

// Read returns the decrypted JSON snapshot stored at path.
func (m *Manager) Read(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	if !strings.HasSuffix(path, ageExt) {
		return raw, nil
	}
	if m.opts.Passphrase == "" {
		return nil, fmt.Errorf("%s is encrypted: %w", filepath.Base(path), ErrWrongPassphrase)
	}
	return decrypt(raw, m.opts.Passphrase)
}

// Restore imports the backup at path through dst.
func (m *Manager) Restore(ctx context.Context, path string, dst Restorer) (*snapshot.Report, error) {
	data, err := m.Read(path)
	if err != nil {
		return nil, err
	}
	return dst.Import(ctx, bytes.NewReader(data), snapshot.FormatJSON)
}

func parseName(name string) (Entry, bool) {
	e := Entry{Name: name}
	rest, ok := strings.CutPrefix(name, filePrefix)
	if !ok {
		return e, false
	}
	if s, ok := strings.CutSuffix(rest, ageExt); ok {
		rest, e.Encrypted = s, true
	}
	rest, ok = strings.CutSuffix(rest, fileExt)
	if !ok {
		return e, false
	}
	t, err := time.Parse(stampFmt, rest)
	if err != nil {
		return e, false
	}
	e.Time = t
	return e, true
}

// atomicWrite writes data to path via a temp file, fsync and rename.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing backup: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("committing backup file: %w", err)
	}
	success = true
	return nil
}
