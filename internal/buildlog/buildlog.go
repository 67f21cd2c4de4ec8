// Package buildlog persists what produced each build output, so that a
// changed command line triggers a rebuild even when no file timestamp moved.
//
// The log is a single SQLite table keyed by output path. Each row holds the
// BLAKE3 fingerprint of the command that last wrote the output and the
// output's modification time at that moment.
package buildlog

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// FileName is the name of the database inside the cache directory.
const FileName = "build.db"

const schema = "CREATE TABLE IF NOT EXISTS commands (" +
	"`output` TEXT PRIMARY KEY, `hash` TEXT NOT NULL, `mtime` INTEGER NOT NULL);"

// Entry is one recorded output.
type Entry struct {
	Hash  string
	Mtime int64
}

// Log is a handle to the build log. It is safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

// Open opens (creating if needed) the log at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating build log directory: %w", err)
	}

	flag := sqlite.OpenReadWrite
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		flag |= sqlite.OpenCreate
	} else if err != nil {
		return nil, err
	}

	conn, err := sqlite.OpenConn(path, flag)
	if err != nil {
		return nil, fmt.Errorf("opening build log %s: %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialising build log %s: %w", path, err)
	}
	return &Log{conn: conn}, nil
}

// Lookup returns the entry recorded for output, if any.
func (l *Log) Lookup(output string) (Entry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		entry Entry
		found bool
	)
	err := sqlitex.Execute(l.conn, "SELECT `hash`, `mtime` FROM commands WHERE `output` = ?;", &sqlitex.ExecOptions{
		Args: []any{output},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			entry.Hash = stmt.ColumnText(0)
			entry.Mtime = stmt.ColumnInt64(1)
			found = true
			return nil
		},
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading build log for %s: %w", output, err)
	}
	return entry, found, nil
}

// Record stores the fingerprint that produced output.
func (l *Log) Record(output string, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stmt := l.conn.Prep("INSERT INTO commands (`output`, `hash`, `mtime`) VALUES ($output, $hash, $mtime) " +
		"ON CONFLICT(`output`) DO UPDATE SET `hash` = $hash, `mtime` = $mtime;")
	stmt.SetText("$output", output)
	stmt.SetText("$hash", entry.Hash)
	stmt.SetInt64("$mtime", entry.Mtime)
	_, err := stmt.Step()
	if resetErr := stmt.Reset(); err == nil {
		err = resetErr
	}
	if err != nil {
		return fmt.Errorf("writing build log for %s: %w", output, err)
	}
	return nil
}

// Close releases the underlying connection.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.Close()
}

// Fingerprint hashes an argv. Arguments are NUL-separated so that
// ["a b"] and ["a", "b"] differ.
func Fingerprint(argv []string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(strings.Join(argv, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
