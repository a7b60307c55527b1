package iogpkg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/wkb"
)

const (
	flagLittleEndian = 0x01
	flagEnvelopeXY   = 0x02
	flagEmpty        = 0x10
)

// encodeGeom returns a GeoPackage binary geometry: the "GP" header with
// an XY envelope followed by little endian WKB.
func encodeGeom(g geom.Geom, srs int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("GP")
	buf.WriteByte(0)
	b := g.Bounds()
	flags := byte(flagLittleEndian)
	if b != nil {
		flags |= flagEnvelopeXY
	} else {
		flags |= flagEmpty
	}
	buf.WriteByte(flags)
	_ = binary.Write(&buf, binary.LittleEndian, int32(srs))
	if b != nil {
		env := [4]float64{b.Min.X, b.Max.X, b.Min.Y, b.Max.Y}
		_ = binary.Write(&buf, binary.LittleEndian, env)
	}
	if err := wkb.Write(&buf, binary.LittleEndian, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGeom parses a GeoPackage binary geometry.
func decodeGeom(data []byte) (geom.Geom, error) {
	if len(data) < 8 || data[0] != 'G' || data[1] != 'P' {
		return nil, fmt.Errorf("not a GeoPackage geometry")
	}
	flags := data[3]
	var envSize int
	switch (flags >> 1) & 0x07 {
	case 0:
	case 1:
		envSize = 32
	case 2, 3:
		envSize = 48
	case 4:
		envSize = 64
	default:
		return nil, fmt.Errorf("bad envelope indicator in flags %08b", flags)
	}
	start := 8 + envSize
	if len(data) < start {
		return nil, fmt.Errorf("geometry header is truncated")
	}
	if flags&flagEmpty != 0 && len(data) == start {
		return nil, nil
	}
	return wkb.Read(bytes.NewReader(data[start:]))
}

// geometryType returns the GeoPackage geometry type name of g.
func geometryType(g geom.Geom) string {
	switch g.(type) {
	case geom.Point:
		return "POINT"
	case geom.LineString:
		return "LINESTRING"
	case geom.Polygon:
		return "POLYGON"
	case geom.MultiLineString:
		return "MULTILINESTRING"
	case geom.MultiPolygon:
		return "MULTIPOLYGON"
	case geom.MultiPoint:
		return "MULTIPOINT"
	default:
		return "GEOMETRY"
	}
}
