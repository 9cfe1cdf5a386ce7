package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/antiquity/internal/timeline"
)

// ArchiveVersion is the archive header version.
const ArchiveVersion = 1

// ArchiveHeader is the first line of an archive, readable without decoding
// the body.
type ArchiveHeader struct {
	Version   int    `json:"version"`
	RunID     string `json:"run_id,omitempty"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
	Snapshots int    `json:"snapshots"`
}

// WriteArchive writes a zstd-compressed timeline archive: a JSON header line
// followed by the JSON export.
func WriteArchive(path, runID string, data timeline.Export) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hdr := ArchiveHeader{
		Version:   ArchiveVersion,
		RunID:     runID,
		StartYear: data.StartYear,
		EndYear:   data.EndYear,
		Snapshots: len(data.Snapshots),
	}
	hb, _ := json.Marshal(hdr)
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(data); err != nil {
		enc.Close()
		return fmt.Errorf("encode timeline: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadArchive reads an archive written by WriteArchive.
func ReadArchive(path string) (ArchiveHeader, timeline.Export, error) {
	var hdr ArchiveHeader
	var data timeline.Export
	f, err := os.Open(path)
	if err != nil {
		return hdr, data, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, data, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, data, fmt.Errorf("read archive header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, data, fmt.Errorf("decode archive header: %w", err)
	}
	if hdr.Version != ArchiveVersion {
		return hdr, data, fmt.Errorf("archive version %d, want %d", hdr.Version, ArchiveVersion)
	}
	if err := json.NewDecoder(br).Decode(&data); err != nil {
		return hdr, data, fmt.Errorf("decode timeline: %w", err)
	}
	return hdr, data, nil
}
