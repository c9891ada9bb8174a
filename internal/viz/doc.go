// Package viz holds the drawing primitives shared by the terminal preview and
// the image renderer:
//
//   - [Camera]: rotation and perspective projection of the unit cube
//   - [Canvas]: braille sub-pixel canvas for terminal output
//   - [SurfaceMesh]: a sampled surface normalized into the unit cube
//   - [Theme]: color schemes for the TUI panel and the surface colormap
package viz
