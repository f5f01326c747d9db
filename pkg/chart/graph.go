package chart

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a rooted graph to pretty-printed JSON bytes.
func MarshalGraph(g *tree.RootedGraph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph deserializes JSON bytes into a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal graph")
	}
	return g, nil
}

// WriteGraphFile writes a rooted graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *tree.RootedGraph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a rooted graph as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g *tree.RootedGraph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the reassembled rooted graph.
// Returns validation errors for malformed or inconsistent graphs.
func ReadGraphFile(path string) (*tree.RootedGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader into a rooted graph.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader) (*tree.RootedGraph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *tree.RootedGraph, w io.Writer) error {
	out := FromRooted(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	return nil
}

func readGraphFrom(r io.Reader) (*tree.RootedGraph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	return ToRooted(data)
}
