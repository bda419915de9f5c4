package property

import (
	"encoding/binary"
	"math"
	"strconv"

	domprop "github.com/vrexx/vrexx/internal/domain/property"
)

const (
	fieldAddress     = "address"
	fieldPrice       = "price"
	fieldDescription = "description"
	fieldPhotoURL    = "photo_url"
	fieldVideo360URL = "video360_url"
	fieldRenderURL   = "render_url"
	fieldCreatedAt   = "created_at"
	fieldVector      = "__vector"
)

var returnFields = []string{
	fieldAddress, fieldPrice, fieldDescription,
	fieldPhotoURL, fieldVideo360URL, fieldRenderURL, fieldCreatedAt,
}

// buildHashFields converts a domain Property into a flat map[string]string for HSET.
func buildHashFields(p *domprop.Property) map[string]string {
	m := p.Media()
	return map[string]string{
		fieldAddress:     p.Address(),
		fieldPrice:       strconv.FormatFloat(p.Price(), 'f', -1, 64),
		fieldDescription: p.Description(),
		fieldPhotoURL:    m.PhotoURL,
		fieldVideo360URL: m.Video360URL,
		fieldRenderURL:   m.RenderURL,
		fieldCreatedAt:   strconv.FormatInt(p.CreatedAt(), 10),
		fieldVector:      vectorToBytes(p.Embedding()),
	}
}

// parseHashFields converts a flat hash map back into a domain Property.
func parseHashFields(id string, m map[string]string) domprop.Property {
	price, _ := strconv.ParseFloat(m[fieldPrice], 64)
	createdAt, _ := strconv.ParseInt(m[fieldCreatedAt], 10, 64)

	var vector []float32
	if raw, ok := m[fieldVector]; ok {
		vector = bytesToVector(raw)
	}

	media := domprop.Media{
		PhotoURL:    m[fieldPhotoURL],
		Video360URL: m[fieldVideo360URL],
		RenderURL:   m[fieldRenderURL],
	}

	return domprop.Reconstruct(id, m[fieldAddress], price, m[fieldDescription], media, vector, createdAt)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
