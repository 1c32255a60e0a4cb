package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/alumdex/internal/domain"
	"github.com/kailas-cloud/alumdex/internal/domain/record"
)

// envelope is the object form of an import file.
type envelope struct {
	Records []record.Record `json:"records"`
}

// Decode reads an import payload: either a bare JSON array of records or an
// object with a "records" array.
func Decode(r io.Reader) ([]record.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty import: %w", domain.ErrInvalidRecord)
	}

	if raw[0] == '[' {
		var recs []record.Record
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("decode records: %w: %w", domain.ErrInvalidRecord, err)
		}
		return recs, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode records: %w: %w", domain.ErrInvalidRecord, err)
	}
	return env.Records, nil
}
