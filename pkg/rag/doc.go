// Package rag defines the resource-allocation graph snapshot consumed by the
// deadlock analysis engine.
//
// A [Graph] is a flat list of typed [Node] values and directed [Edge] values,
// the same shape a drawing surface or a graph file produces. Edge direction
// carries the domain contract:
//
//   - process -> resource: a request for one unit
//   - resource -> process: one unit currently allocated
//
// Any other pairing (resource -> resource, process -> process) is kept in the
// snapshot but has no allocation or request meaning. The package performs no
// validation; it only offers read-only lookups over the snapshot.
//
// # JSON Format
//
//	{
//	  "nodes": [
//	    {"id": "P1", "kind": "process", "pid": "101", "label": "Writer"},
//	    {"id": "R1", "kind": "resource", "rid": "7", "label": "Disk", "instances": 2}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "P1", "target": "R1"}
//	  ]
//	}
package rag
