package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot converts a snapshot to indented JSON bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadSnapshot decodes a JSON snapshot from an io.Reader.
// Use ReadSnapshotFile for files or pass bytes.NewReader for in-memory data.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &s, nil
}

// ReadSnapshotFile reads a JSON file and returns the decoded snapshot.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// =============================================================================
// Frame Serialization API
// =============================================================================

// MarshalFrame converts a frame to indented JSON bytes.
func MarshalFrame(f *Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFrame writes a frame as JSON to an io.Writer.
func WriteFrame(f *Frame, w io.Writer) error {
	return writeJSON(f, w)
}

// WriteFrameFile writes a frame to a JSON file.
// The file is created with 0644 permissions.
func WriteFrameFile(f *Frame, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return writeJSON(f, out)
}

// ReadFrame decodes a JSON frame from an io.Reader.
func ReadFrame(r io.Reader) (*Frame, error) {
	var f Frame
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &f, nil
}

// ReadFrameFile reads a JSON file and returns the decoded frame.
func ReadFrameFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrame(f)
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
