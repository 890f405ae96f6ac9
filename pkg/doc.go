// Package pkg provides the core libraries for Panzoom chart viewports.
//
// # Overview
//
// Panzoom keeps a 2-D chart viewport whose horizontal and vertical axes zoom
// and pan independently. Pointer, wheel and double-click gestures are turned
// into per-axis transforms, the visible domains are recomputed, axes and
// marks are redrawn, and every domain change is reported to the host. The
// pkg directory is organized into four main areas:
//
//  1. Engine - scales, transforms, gestures and the viewport
//  2. Surfaces - SVG, raster and text renderers fed by mark patches
//  3. Pipeline - orchestration (load → replay → render) with caching
//  4. Serving - live sessions over HTTP and WebSocket
//
// # Architecture
//
// The typical data flow through Panzoom:
//
//	Chart file (TOML/YAML/JSON) + optional gesture script
//	         ↓
//	    [config] and [script] packages (decode + validate)
//	         ↓
//	    [viewport] package (gestures → per-axis transforms → redraw)
//	         ↓
//	    [render] package (SVG/PNG/PDF/text surfaces)
//	         ↓
//	    SVG/PNG/PDF/TXT/JSON output
//
// # Quick Start
//
// Load a chart, zoom the x axis and render an SVG:
//
//	import (
//	    "github.com/matzehuels/panzoom/pkg/config"
//	    "github.com/matzehuels/panzoom/pkg/render"
//	    "github.com/matzehuels/panzoom/pkg/scale"
//	    "github.com/matzehuels/panzoom/pkg/viewport"
//	)
//
//	chart, _ := config.Load("latency.toml")
//	surf, _ := render.NewMulti(render.Style{Title: chart.Title})
//	v, _ := viewport.New(chart.ViewportConfig(viewport.Config{
//	    Surface: surf,
//	    OnXDomainModified: func(d scale.Domain, user bool) {
//	        fmt.Println("x is now", d)
//	    },
//	}))
//	_ = v.Resize(chart.Width, chart.Height)
//	_ = v.ZoomToX(scale.Domain{Lo: 10, Hi: 20})
//	svg, _ := surf.Render(v, render.FormatSVG)
//
// # Main Packages
//
// ## Engine
//
// [scale] - Numeric domains and linear scales mapping a domain onto a pixel
// range, with rescaling through a zoom transform.
//
// [zoom] - The (k, x, y) zoom transform, per-axis behaviors and the scale
// extent that bounds the zoom factor.
//
// [gesture] - The gesture controller: pointer drags, two-pointer pinch,
// wheel and double-click, with axis targeting by focal point.
//
// [axis] - Tick generation and the axis surface contract.
//
// [mark] - Retained mark trees and the patches that turn one tree into the
// next.
//
// [viewport] - The viewport itself: sizing, redraw, domain notifications,
// programmatic zoom to a range and pointer translation.
//
// ## Surfaces
//
// [render] - The multi-surface that feeds SVG, raster and text surfaces at
// once, plus format validation and PDF conversion.
//
// ## Orchestration
//
// [config] - Chart files and their conversion into a viewport configuration.
//
// [script] - Gesture scripts and their replay with per-step notifications.
//
// [pipeline] - Load, replay and render with content-addressed caching.
//
// [cache] - Cache interface with file and null implementations and the
// keyers that scope cache keys.
//
// ## Serving
//
// [session] - Live viewports with expiry, serialized behind a mutex.
//
// [server] - The HTTP and WebSocket API over sessions.
//
// ## Supporting
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hook registries for viewport, pipeline, cache and HTTP
// events.
//
// [buildinfo] - Version information injected at build time.
//
// # Command-Line Interface
//
// The panzoom CLI (cmd/panzoom) wraps these packages:
//
//	panzoom render latency.toml -f svg,png
//	panzoom replay latency.toml zoom.yaml
//	panzoom explore latency.toml
//	panzoom serve --addr :8080
package pkg
