package codec

import (
	"fmt"
	"io"

	"horao/internal/domain"
)

// Importer interface for importing networks from various formats
type Importer interface {
	Parse(r io.Reader) ([]*domain.DataCenterNetwork, error)
	Format() string
}

// Exporter interface for exporting networks to various formats
type Exporter interface {
	Export(networks []*domain.DataCenterNetwork, w io.Writer) error
	Format() string
}

// Codec reads and writes whole network documents as well as single values
// (devices, links, records)
type Codec interface {
	Importer
	Exporter
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// document is the top-level shape shared by every format
type document struct {
	Networks []domain.NetworkRecord `json:"networks" yaml:"networks"`
}

func newDocument(networks []*domain.DataCenterNetwork) document {
	doc := document{Networks: make([]domain.NetworkRecord, 0, len(networks))}
	for _, n := range networks {
		doc.Networks = append(doc.Networks, n.Record())
	}
	return doc
}

func (d document) networks() []*domain.DataCenterNetwork {
	out := make([]*domain.DataCenterNetwork, 0, len(d.Networks))
	for _, r := range d.Networks {
		out = append(out, domain.FromRecord(r))
	}
	return out
}

// Formats lists the supported format identifiers
func Formats() []string {
	return []string{"json", "yaml", "snappy"}
}

// ForFormat returns the codec for a format identifier
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "snappy", "binary":
		return NewSnappyCodec(), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}
