// Package render provides rendering surfaces for chart viewports.
//
// # Overview
//
// A viewport does not draw anything itself. It hands axis ticks and mark
// patches to a surface that implements viewport.Surface. This package tree
// contains three such surfaces:
//
//   - [svg]: a standalone SVG document
//   - [raster]: an anti-aliased PNG image
//   - [text]: a character grid for terminals
//
// Each surface keeps a retained copy of the mark tree that the viewport
// patches on every redraw, so it can be serialized at any time:
//
//	surf := svg.New(svg.WithTitle("latency"))
//	v, _ := viewport.New(viewport.Config{..., Surface: surf})
//	_ = v.Resize(800, 500)
//	doc := surf.Render(v.Context())
//
// [Multi] feeds all three surfaces from one viewport and serializes any of
// the output formats on demand, including a JSON snapshot of the viewport
// state.
//
// # Format Conversion
//
// [ToPDF] converts any SVG produced here to PDF using the external
// rsvg-convert tool (from librsvg).
//
// [svg]: github.com/matzehuels/panzoom/pkg/render/svg
// [raster]: github.com/matzehuels/panzoom/pkg/render/raster
// [text]: github.com/matzehuels/panzoom/pkg/render/text
package render
