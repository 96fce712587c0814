// Package io reads and writes resource-allocation graphs and deadlock reports.
//
// # Formats
//
// Graphs can be stored as JSON, TOML, YAML or HCL. The format is picked from
// the file extension by [ImportGraph], or passed explicitly to [ReadGraph].
//
// JSON and YAML share the shape of [rag.Graph]:
//
//	{
//	  "nodes": [
//	    {"id": "P1", "kind": "process", "label": "Writer"},
//	    {"id": "R1", "kind": "resource", "label": "Disk", "instances": 1}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "P1", "target": "R1"}
//	  ]
//	}
//
// TOML uses arrays of tables:
//
//	[[nodes]]
//	id = "P1"
//	kind = "process"
//
//	[[edges]]
//	source = "P1"
//	target = "R1"
//
// HCL uses one block per entity, labelled by ID:
//
//	process "P1" {
//	  label = "Writer"
//	}
//
//	resource "R1" {
//	  instances = 2
//	}
//
//	edge "e1" {
//	  source = "P1"
//	  target = "R1"
//	}
//
// In HCL files all process blocks come before resource blocks in the
// resulting node list; the relative order within each kind is kept, which
// is the only order the analysis depends on.
//
// # Validation
//
// Decoding checks syntax only. Dangling edges, duplicate IDs and odd kind
// pairings pass through untouched: the analysis engine defines how they are
// treated.
//
// # Export
//
// [WriteGraph] and [ExportGraph] write indented JSON. [WriteReport] writes a
// [deadlock.Report] as indented JSON.
package io
