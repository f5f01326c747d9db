// Package chart is the serialization contract between the layout engine and
// external renderers.
//
// Two JSON formats are defined:
//
//   - Graph: a rooted family graph (graph.json), the output of the build
//     step and the input of the layout step
//   - Layout: computed geometry (layout.json), the input of any renderer
//
// Both formats carry the display label, sex classification, and generation
// offset per person, so a renderer can map colors without re-deriving
// anything. The engine itself never styles beyond that classification.
//
// Output ordering follows the graph's traversal order, which is
// deterministic, so repeat runs produce byte-identical files.
package chart
