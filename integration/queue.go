package integration

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/josueBarretogit/manga-tui/downloader"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/log"
	"github.com/josueBarretogit/manga-tui/where"
)

// ActionMarkRead asks the sync service to mark the chapter as read.
const ActionMarkRead = "mark_read"

// Mutation is one queued operation.
type Mutation struct {
	Timestamp int64                 `json:"timestamp"`
	Action    string                `json:"action"`
	Chapter   downloader.Completion `json:"chapter"`
}

// Queue is an append-only JSON lines file of mutations.
type Queue struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewQueue opens the queue at path. The file is created on the first Record.
func NewQueue(path string) *Queue {
	return &Queue{path: path, now: time.Now}
}

var defaultQueue = sync.OnceValue(func() *Queue {
	return NewQueue(where.SyncQueue())
})

// Record appends a mark-read mutation for the completed chapter.
func (q *Queue) Record(completion downloader.Completion) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := filesystem.API().MkdirAll(filepath.Dir(q.path), os.ModePerm); err != nil {
		return err
	}

	f, err := filesystem.API().OpenFile(q.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	mutation := Mutation{
		Timestamp: q.now().Unix(),
		Action:    ActionMarkRead,
		Chapter:   completion,
	}

	return json.NewEncoder(f).Encode(mutation)
}

// Pending returns the queued mutations in the order they were recorded.
// Lines that do not decode are skipped.
func (q *Queue) Pending() ([]Mutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	f, err := filesystem.API().Open(q.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mutations []Mutation
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m Mutation
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			log.Warnf("sync queue: skipping malformed line: %v", err)
			continue
		}
		mutations = append(mutations, m)
	}

	return mutations, scanner.Err()
}

// Clear empties the queue.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	err := filesystem.API().Remove(q.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
