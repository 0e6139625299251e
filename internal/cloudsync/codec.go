package cloudsync

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zenithflow/zenithflow/internal/models"
)

// ChunkSize is the length of each stored cell value, chosen safely below the
// spreadsheet's 50,000-character cell ceiling.
const ChunkSize = 45000

// EncodeState serializes the state, compresses it, and splits the textual
// payload into fixed-size chunks, one per sheet row.
func EncodeState(st models.AppState) ([]string, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress state: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return splitChunks(encoded, ChunkSize), nil
}

// DecodeState reassembles chunks read back from the sheet and parses the
// state. A payload that fails to decompress but begins with a JSON object
// delimiter is treated as a legacy uncompressed payload. Any failure yields
// ok=false, meaning no usable remote state, rather than an error.
func DecodeState(chunks []string) (models.AppState, bool) {
	payload := strings.Join(chunks, "")
	if payload == "" {
		return models.AppState{}, false
	}

	if raw, err := decompress(payload); err == nil {
		return parseState(raw)
	}

	// Legacy payloads predate compression and were stored as plain JSON.
	if strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return parseState([]byte(payload))
	}
	return models.AppState{}, false
}

func decompress(payload string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func parseState(raw []byte) (models.AppState, bool) {
	var st models.AppState
	if err := json.Unmarshal(raw, &st); err != nil {
		return models.AppState{}, false
	}
	return st, true
}

func splitChunks(s string, size int) []string {
	if s == "" {
		return nil
	}
	chunks := make([]string, 0, (len(s)+size-1)/size)
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	return append(chunks, s)
}
