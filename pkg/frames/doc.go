// Package frames turns a unified coordinate table into either a static
// comparison or an animated frame sequence.
//
// # Comparison
//
// [Compare] splits the table into one [Panel] per layout. Each panel keeps
// its own extent: layouts differ widely in scale, so axes are never shared.
//
// # Animation
//
// [Sequence] walks an explicit timeline of layouts (see [DefaultOrder]). Each
// layout is held for [Options.Hold]; between consecutive layouts a transition
// of [Options.Transition] interpolates nodes by node ID and edges by edge ID,
// so the same node and the same edge persist on screen across the change.
// The viewport of every frame is the padded extent of that frame's own
// positions, which makes the camera follow the data from one scale to the
// next.
//
// Frames carry plain positions, not images; package render rasterises them.
package frames
