package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
)

// FileAuditLog implements domain.AuditLogger using a hash-chained JSON
// Lines file. Each entry links to its predecessor so tampering is
// detectable with VerifyIntegrity.
type FileAuditLog struct {
	mu       sync.RWMutex
	path     string
	basePath string
	lastHash string
}

// NewFileAuditLog creates a file-backed audit log under basePath.
// The directory is created on first write, not at construction time,
// to avoid interfering with workspace initialization checks.
func NewFileAuditLog(basePath string) (*FileAuditLog, error) {
	path := filepath.Join(basePath, EventsFile)

	log := &FileAuditLog{path: path, basePath: basePath}

	if last, err := log.lastEvent(); err == nil && last != nil {
		log.lastHash = last.Hash
	}

	return log, nil
}

// Log appends a new audit event, chained to the previous one.
func (l *FileAuditLog) Log(action string, actor string, metadata map[string]interface{}) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := &domain.Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Action:    action,
		Actor:     actor,
		Metadata:  metadata,
	}

	if err := os.MkdirAll(l.basePath, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	event.PrevHash = l.lastHash
	event.Hash = event.CalculateHash()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close events file: %w", cerr)
		}
	}()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	l.lastHash = event.Hash
	return nil
}

// LoadAll returns all audit events in chronological order.
func (l *FileAuditLog) LoadAll() ([]*domain.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.loadEvents()
}

// VerifyIntegrity checks the hash chain for tampering.
func (l *FileAuditLog) VerifyIntegrity() ([]string, error) {
	events, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	var violations []string
	lastHash := ""

	for i, e := range events {
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("Event %d (%s): PrevHash mismatch", i, e.ID))
		}

		expected := e.CalculateHash()
		if e.Hash != expected {
			violations = append(violations, fmt.Sprintf("Event %d (%s): Hash mismatch - possible tampering", i, e.ID))
		}

		lastHash = e.Hash
	}

	return violations, nil
}

func (l *FileAuditLog) lastEvent() (*domain.Event, error) {
	events, err := l.loadEvents()
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[len(events)-1], nil
}

func (l *FileAuditLog) loadEvents() ([]*domain.Event, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var result []*domain.Event
	scanner := bufio.NewScanner(f)

	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event domain.Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		result = append(result, &event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}

	return result, nil
}
