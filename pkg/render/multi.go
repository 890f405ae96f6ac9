package render

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/panzoom/pkg/axis"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/render/raster"
	"github.com/matzehuels/panzoom/pkg/render/svg"
	"github.com/matzehuels/panzoom/pkg/render/text"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatText = "txt"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// Style holds the presentation settings shared by every surface.
type Style struct {
	Title string
	// Background is a hex color. Empty means transparent for SVG and white
	// for PNG.
	Background string
}

// Multi fans axis ticks and mark patches out to one surface per output
// kind, so a single viewport can be serialized to any format.
type Multi struct {
	SVG    *svg.Surface
	Raster *raster.Surface
	Text   *text.Surface
}

// NewMulti returns a surface set sharing st.
func NewMulti(st Style) (*Multi, error) {
	svgOpts := []svg.Option{svg.WithTitle(st.Title)}
	var rasterOpts []raster.Option
	if st.Background != "" {
		if err := errors.ValidateColor(st.Background); err != nil {
			return nil, err
		}
		c, ok := raster.ParseColor(st.Background)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported background %q", st.Background)
		}
		svgOpts = append(svgOpts, svg.WithBackground(st.Background))
		rasterOpts = append(rasterOpts, raster.WithBackground(c))
	}
	return &Multi{
		SVG:    svg.New(svgOpts...),
		Raster: raster.New(rasterOpts...),
		Text:   text.New(),
	}, nil
}

func (m *Multi) each(fn func(viewport.Surface) error) error {
	for _, s := range []viewport.Surface{m.SVG, m.Raster, m.Text} {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

// CreateAxisMount implements axis.Surface.
func (m *Multi) CreateAxisMount(o axis.Orientation) axis.Handle {
	return []axis.Handle{
		m.SVG.CreateAxisMount(o),
		m.Raster.CreateAxisMount(o),
		m.Text.CreateAxisMount(o),
	}
}

// DrawTicks implements axis.Surface.
func (m *Multi) DrawTicks(h axis.Handle, a axis.Axis) {
	hs, ok := h.([]axis.Handle)
	if !ok || len(hs) != 3 {
		return
	}
	m.SVG.DrawTicks(hs[0], a)
	m.Raster.DrawTicks(hs[1], a)
	m.Text.DrawTicks(hs[2], a)
}

// InsertNode implements mark.Applier.
func (m *Multi) InsertNode(path mark.Path, n mark.Node) error {
	return m.each(func(s viewport.Surface) error { return s.InsertNode(path, n) })
}

// RemoveNode implements mark.Applier.
func (m *Multi) RemoveNode(path mark.Path) error {
	return m.each(func(s viewport.Surface) error { return s.RemoveNode(path) })
}

// SetAttr implements mark.Applier.
func (m *Multi) SetAttr(path mark.Path, key, value string) error {
	return m.each(func(s viewport.Surface) error { return s.SetAttr(path, key, value) })
}

// RemoveAttr implements mark.Applier.
func (m *Multi) RemoveAttr(path mark.Path, key string) error {
	return m.each(func(s viewport.Surface) error { return s.RemoveAttr(path, key) })
}

// SetText implements mark.Applier.
func (m *Multi) SetText(path mark.Path, s string) error {
	return m.each(func(sf viewport.Surface) error { return sf.SetText(path, s) })
}

// Render serializes the current state of v in the given format. v must
// have been built with m as its surface.
func (m *Multi) Render(v *viewport.Viewport, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if format == FormatJSON {
		data, err := json.MarshalIndent(v.Snapshot(), "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
		}
		return data, nil
	}
	if !v.Ready() {
		return nil, errors.New(errors.ErrCodeNotReady, "viewport has no usable size")
	}

	dc := v.Context()
	switch format {
	case FormatSVG:
		return m.SVG.Render(dc), nil
	case FormatPDF:
		return ToPDF(m.SVG.Render(dc))
	case FormatPNG:
		var buf bytes.Buffer
		if err := m.Raster.Encode(&buf, dc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return []byte(m.Text.Render(dc).String() + "\n"), nil
	}
}

var _ viewport.Surface = (*Multi)(nil)
