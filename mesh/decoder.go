package mesh

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxInflatedBytes caps decompressed payloads.
const maxInflatedBytes = 50 << 20

// ErrPayloadTooLarge is returned when a report exceeds a read limit. A cut
// text report would still parse, so it is never truncated.
var ErrPayloadTooLarge = errors.New("payload too large")

// DecodeScanPayload decodes a scanner report in any accepted encoding:
// - text blocks ("--- scanner N ---"), the primary format
// - JSON array of {"id", "beacons": [{"x","y","z"}]}
// - zlib-compressed text or JSON
func DecodeScanPayload(data []byte) ([]Scanner, error) {
	// zlib is checked before trimming: the trailing checksum may end in
	// whitespace bytes
	if IsZlib(data) {
		inflated, err := inflateZlib(data)
		if err != nil {
			return nil, err
		}
		data = bytes.TrimSpace(inflated)
		if len(data) == 0 {
			return nil, fmt.Errorf("decoded payload is empty")
		}
	} else {
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			return nil, fmt.Errorf("empty payload")
		}
	}

	var scanners []Scanner
	var err error
	switch data[0] {
	case '[':
		scanners, err = decodeScannersJSON(data)
	case '-':
		scanners, err = ParseScanners(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unknown format: not scanner text, JSON, or zlib-compressed")
	}
	if err != nil {
		return nil, err
	}
	if len(scanners) == 0 {
		return nil, ErrNoScanners
	}
	return scanners, nil
}

// IsZlib checks for a zlib header: CM=8 and a valid FCHECK
func IsZlib(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0]&0x0f == 8 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0
}

// decodeScannersJSON requires ids to match array positions, like the text headers.
func decodeScannersJSON(data []byte) ([]Scanner, error) {
	var scanners []Scanner
	if err := json.Unmarshal(data, &scanners); err != nil {
		return nil, fmt.Errorf("parsing scanner JSON: %w", err)
	}
	for i, s := range scanners {
		if s.ID != i {
			return nil, fmt.Errorf("scanner JSON: expected scanner %d at index %d, got %d", i, i, s.ID)
		}
	}
	return scanners, nil
}

// inflateZlib decompresses zlib-compressed data
func inflateZlib(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating zlib reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	decompressed, err := readLimited(reader, maxInflatedBytes)
	if err != nil {
		return nil, fmt.Errorf("decompressing zlib data: %w", err)
	}
	return decompressed, nil
}

// readLimited reads all of r, failing once more than limit bytes arrive
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrPayloadTooLarge, limit)
	}
	return data, nil
}
