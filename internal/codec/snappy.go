package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"horao/internal/domain"

	"github.com/golang/snappy"
)

// SnappyCodec is the compact binary format: snappy-compressed JSON.
// The repository stores network snapshots in this form.
type SnappyCodec struct{}

// NewSnappyCodec creates a new binary codec
func NewSnappyCodec() *SnappyCodec {
	return &SnappyCodec{}
}

// Format returns the codec format identifier
func (c *SnappyCodec) Format() string {
	return "snappy"
}

// Parse imports networks from a compressed block
func (c *SnappyCodec) Parse(r io.Reader) ([]*domain.DataCenterNetwork, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snappy block: %w", err)
	}

	var doc document
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.networks(), nil
}

// Export exports networks as a compressed block
func (c *SnappyCodec) Export(networks []*domain.DataCenterNetwork, w io.Writer) error {
	data, err := c.Marshal(newDocument(networks))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write snappy block: %w", err)
	}
	return nil
}

// Marshal encodes a single value
func (c *SnappyCodec) Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snappy: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

// Unmarshal decodes a single value
func (c *SnappyCodec) Unmarshal(data []byte, v any) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return fmt.Errorf("failed to decompress snappy: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse snappy: %w", err)
	}
	return nil
}
