package chart_test

import (
	"bytes"
	"fmt"

	"github.com/kindredlab/kintree/pkg/chart"
)

func ExampleReadGraph() {
	// JSON input representing a two-generation family
	jsonData := `{
		"root": "root",
		"ancestor_depth": 1,
		"nodes": [
			{"id": "root", "label": "Root", "generation": 0},
			{"id": "pa", "label": "Pa", "sex": "M", "generation": -1},
			{"id": "ma", "label": "Ma", "sex": "F", "generation": -1}
		],
		"edges": [
			{"kind": "parent-child", "from": "pa", "to": "root"},
			{"kind": "parent-child", "from": "ma", "to": "root"},
			{"kind": "spouse", "from": "ma", "to": "pa"}
		]
	}`

	// Parse and reassemble the rooted graph
	g, err := chart.ReadGraph(bytes.NewReader([]byte(jsonData)))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Parents of root:", g.Node("root").Parents)
	// Output:
	// Nodes: 3
	// Edges: 3
	// Parents of root: [pa ma]
}

func ExampleWriteGraph() {
	jsonData := `{
		"root": "root",
		"nodes": [
			{"id": "root", "generation": 0},
			{"id": "kid", "generation": 1}
		],
		"edges": [
			{"kind": "parent-child", "from": "root", "to": "kid"}
		]
	}`
	g, err := chart.ReadGraph(bytes.NewReader([]byte(jsonData)))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Write to a buffer (or any io.Writer)
	var buf bytes.Buffer
	if err := chart.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println(buf.String())
	// Output:
	// {
	//   "root": "root",
	//   "ancestor_depth": 0,
	//   "descendant_depth": 0,
	//   "nodes": [
	//     {
	//       "id": "root",
	//       "generation": 0
	//     },
	//     {
	//       "id": "kid",
	//       "generation": 1
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "kind": "parent-child",
	//       "from": "root",
	//       "to": "kid"
	//     }
	//   ]
	// }
}
