// Package render draws comparisons and animations of network layouts.
//
// # Outputs
//
//   - [RenderSVG]: static multi-panel comparison, one panel per layout, each
//     panel fitted to its own extent. Node fill encodes the module; no legend
//     is drawn.
//   - [ToPNG], [ToPDF]: raster and vector conversion of that SVG through the
//     external rsvg-convert tool.
//   - [RenderGIF]: looping animated GIF of a [frames.Animation], rasterised
//     with [github.com/fogleman/gg]; every frame is titled with the active
//     layout.
//   - [RenderHTML]: interactive comparison page built with go-echarts.
//
// # Colours
//
// [NewPalette] assigns evenly spaced HCL hues to modules in order of first
// appearance, so every output uses the same colour for the same module.
// The "unassigned" module is always grey.
//
// # Conversion Dependencies
//
// PNG and PDF need librsvg: brew install librsvg (macOS),
// apt install librsvg2-bin (Linux). SVG, GIF and HTML are produced in-process.
package render
