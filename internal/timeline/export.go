package timeline

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/recall-project/recall/pkg/errclass"
	"github.com/recall-project/recall/pkg/fsutil"
	"github.com/recall-project/recall/pkg/jsonutil"
	"github.com/recall-project/recall/pkg/model"
)

// Export writes the whole timeline to a JSONL file, one record per line,
// each carrying a SHA-256 hash chained to the previous record so that
// tampering with an exported log is detectable. The file is written
// atomically. Export is an inspection surface only; timeline state
// itself stays in memory.
func (l *Log) Export(path string) error {
	var buf bytes.Buffer
	var prevHash model.HashValue

	for _, e := range l.events {
		rec := model.ExportRecord{Event: *e, PrevHash: prevHash}
		hash, err := computeRecordHash(&rec)
		if err != nil {
			return errclass.ErrExportFailed.WithMessagef("hash event %s: %v", e.ID, err)
		}
		rec.RecordHash = hash

		line, err := json.Marshal(rec)
		if err != nil {
			return errclass.ErrExportFailed.WithMessagef("marshal event %s: %v", e.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
		prevHash = hash
	}

	if err := fsutil.AtomicWrite(path, buf.Bytes(), 0644); err != nil {
		return errclass.ErrExportFailed.WithMessagef("write %s: %v", path, err)
	}
	return nil
}

// VerifyExportFile re-reads an exported timeline and checks the hash
// chain. Returns the number of valid records.
func VerifyExportFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open export: %w", err)
	}
	defer file.Close()

	var prevHash model.HashValue
	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.ExportRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return count, errclass.ErrExportFailed.WithMessagef("line %d: malformed record", count+1)
		}
		if rec.PrevHash != prevHash {
			return count, errclass.ErrExportFailed.WithMessagef("line %d: chain broken", count+1)
		}
		want := rec.RecordHash
		rec.RecordHash = ""
		got, err := computeRecordHash(&rec)
		if err != nil {
			return count, err
		}
		if got != want {
			return count, errclass.ErrExportFailed.WithMessagef("line %d: hash mismatch", count+1)
		}
		prevHash = want
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("scan export: %w", err)
	}
	return count, nil
}

func computeRecordHash(rec *model.ExportRecord) (model.HashValue, error) {
	// Hash is computed over the record with RecordHash empty.
	hashRec := model.ExportRecord{Event: rec.Event, PrevHash: rec.PrevHash}
	data, err := jsonutil.CanonicalMarshal(hashRec)
	if err != nil {
		return "", fmt.Errorf("canonical marshal: %w", err)
	}
	hash := sha256.Sum256(data)
	return model.HashValue(hex.EncodeToString(hash[:])), nil
}
