// Package collada decodes the geometry part of COLLADA (.dae) documents.
package collada

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Collada is the top-level Collada object
type Collada struct {
	Geometries []Geometry `xml:"library_geometries>geometry"`
}

// Decode parses a COLLADA document
func Decode(data []byte) (*Collada, error) {
	var c Collada
	if err := xml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "collada")
	}
	return &c, nil
}

// Geometry represents Collada's geometry
type Geometry struct {
	Mesh Mesh   `xml:"mesh"`
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// Mesh contains all the primitive data
type Mesh struct {
	Source    []Source  `xml:"source"`
	Vertices  Vertices  `xml:"vertices"`
	Triangles Triangles `xml:"triangles"`
}

// SourceByID returns the source with the given id, a leading # is ignored
func (m *Mesh) SourceByID(id string) (*Source, bool) {
	id = strings.TrimPrefix(id, "#")
	for i := range m.Source {
		if m.Source[i].ID == id {
			return &m.Source[i], true
		}
	}
	return nil, false
}

// Resolve finds the source behind a triangles input. VERTEX inputs
// go through the vertices element to the source with the given
// semantic, usually POSITION or NORMAL.
func (m *Mesh) Resolve(in Input, semantic string) (*Source, error) {
	if in.Semantic == "VERTEX" {
		if strings.TrimPrefix(in.Source, "#") != m.Vertices.ID {
			return nil, errors.Errorf("collada: vertices %q not found", in.Source)
		}
		for _, vi := range m.Vertices.Inputs {
			if vi.Semantic == semantic {
				return m.resolve(vi.Source)
			}
		}
		return nil, errors.Errorf("collada: vertices %q have no %s input", m.Vertices.ID, semantic)
	}
	if in.Semantic != semantic {
		return nil, errors.Errorf("collada: input is %s, not %s", in.Semantic, semantic)
	}
	return m.resolve(in.Source)
}

func (m *Mesh) resolve(id string) (*Source, error) {
	src, ok := m.SourceByID(id)
	if !ok {
		return nil, errors.Errorf("collada: source %q not found", id)
	}
	return src, nil
}

// Source links to other sources where data is present
type Source struct {
	ID       string   `xml:"id,attr"`
	Floats   Floats   `xml:"float_array"`
	Accessor Accessor `xml:"technique_common>accessor"`
}

// Stride is the number of floats per element, 3 when the
// accessor does not say
func (s *Source) Stride() int {
	if s.Accessor.Stride > 0 {
		return s.Accessor.Stride
	}
	return 3
}

// Len returns the number of elements in the source
func (s *Source) Len() int {
	return len(s.Floats.Data) / s.Stride()
}

// Vec3 returns the first three floats of element i
func (s *Source) Vec3(i int) ([3]float32, error) {
	stride := s.Stride()
	if i < 0 || i >= s.Len() || stride < 3 {
		return [3]float32{}, errors.Errorf("collada: element %d out of range in %q", i, s.ID)
	}
	d := s.Floats.Data[i*stride:]
	return [3]float32{d[0], d[1], d[2]}, nil
}

// Accessor describes how a source array is read
type Accessor struct {
	Source string `xml:"source,attr"`
	Count  int    `xml:"count,attr"`
	Stride int    `xml:"stride,attr"`
}

// Floats is the array of floats
type Floats struct {
	ID   string
	Data []float32
}

// UnmarshalXML unmarshals the array of floats
func (f *Floats) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			f.ID = attr.Value
		}
	}
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	for _, r := range strings.Fields(raw) {
		num, err := strconv.ParseFloat(r, 32)
		if err != nil {
			return err
		}
		f.Data = append(f.Data, float32(num))
	}
	return nil
}

// Vertices contains the list of vertices
type Vertices struct {
	ID     string  `xml:"id,attr"`
	Inputs []Input `xml:"input"`
}

// Triangles contain the list of triangles
type Triangles struct {
	Count    int     `xml:"count,attr"`
	Material string  `xml:"material,attr"`
	Inputs   []Input `xml:"input"`
	Index    []int
}

// Stride is the number of indices per triangle corner
func (t *Triangles) Stride() int {
	stride := 0
	for _, in := range t.Inputs {
		if int(in.Offset)+1 > stride {
			stride = int(in.Offset) + 1
		}
	}
	return stride
}

// Input returns the input with the given semantic
func (t *Triangles) Input(semantic string) (Input, bool) {
	for _, in := range t.Inputs {
		if in.Semantic == semantic {
			return in, true
		}
	}
	return Input{}, false
}

// UnmarshalXML parses the index list
func (t *Triangles) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "count":
			num, err := strconv.Atoi(attr.Value)
			if err != nil {
				return err
			}
			t.Count = num
		case "material":
			t.Material = attr.Value
		}
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "input":
				var input Input
				err := d.DecodeElement(&input, &el)
				if err != nil {
					return err
				}
				t.Inputs = append(t.Inputs, input)
			case "p":
				var (
					ints []int
					raw  string
				)
				if err := d.DecodeElement(&raw, &el); err != nil {
					return err
				}
				for _, r := range strings.Fields(raw) {
					num, err := strconv.Atoi(r)
					if err != nil {
						return err
					}
					ints = append(ints, num)
				}
				t.Index = ints
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if el == start.End() {
				return nil
			}
		}
	}
}

// Input is Collada'a input type
type Input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   uint   `xml:"offset,attr"`
}
