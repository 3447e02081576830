// Package vector is a small SVG document model.
//
// The composer builds a [Document] out of a handful of node types (rects,
// circles, text, translated groups) and serializes it with [Document.Marshal].
// The native rasterizer goes the other way with [Parse]. Keeping both
// directions on the same tree means a QR fragment is spliced in as nodes,
// never by cutting strings out of another SVG file.
//
// # Supported subset
//
//   - <svg> with width, height and an optional viewBox
//   - <g transform="translate(x,y)">
//   - <rect x y width height fill stroke stroke-width>
//   - <circle cx cy r fill stroke stroke-width>
//   - <text x y font-size font-family text-anchor fill>
//
// Unknown elements are skipped by [Parse]; unsupported transforms are an
// error.
//
// # Determinism
//
// [Document.Marshal] writes attributes in a fixed order and rounds numbers to
// four decimals, so equal trees always serialize to equal bytes.
package vector
