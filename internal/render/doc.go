// Package render draws evaluated frames into images and writes them out as
// an animated GIF or a PNG sequence.
//
// A run owns one [FrameBuffer]. Each frame is painted into it by
// [DrawFrame], which lays the projected surface out with gonum/plot, and the
// buffer is then handed to a renderer such as [GIFEncoder].
package render
