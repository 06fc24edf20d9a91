package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONLSink is the default Sink: an append-only JSON-lines file, grounded
// directly on the original AuditLogger's log_path handling.
type JSONLSink struct {
	mu   sync.Mutex
	path string
}

var _ Sink = (*JSONLSink)(nil)

// NewJSONLSink opens (creating if necessary) the file at path for
// appending.
func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: path}
}

// Append writes one JSON-encoded record followed by a newline.
func (s *JSONLSink) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: opening %q: %w", s.path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	return enc.Encode(r)
}

// LastIntegrityHash reads the file's last line and extracts its
// integrity_hash field, or GenesisHash if the file doesn't exist or is
// empty — matching the original's _get_last_hash.
func (s *JSONLSink) LastIntegrityHash() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return GenesisHash, nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lastLine string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lastLine = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if lastLine == "" {
		return GenesisHash, nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(lastLine), &rec); err != nil {
		return GenesisHash, nil
	}
	if rec.IntegrityHash == "" {
		return GenesisHash, nil
	}
	return rec.IntegrityHash, nil
}
