// Package pkg holds the graphmorph libraries.
//
// # Overview
//
// graphmorph lays out one network with several algorithms and compares the
// results. The data flow is:
//
//	edge list (+ optional node table)
//	         ↓
//	    [network] build the node universe and module labels
//	         ↓
//	    [layout] one coordinate table per algorithm
//	         ↓
//	    [table] unified node table and edge table
//	         ↓
//	    [frames] morph sequence and comparison panels
//	         ↓
//	    [render] GIF, SVG, PNG, PDF and HTML
//
// [pipeline] runs these stages with caching from [cache]. [io] reads and
// writes the tabular formats, [config] loads run configuration files, and
// [observability] exposes hooks for metrics.
//
// # Quick Start
//
//	in, _ := io.ImportInput("edges.csv", "")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, in, pipeline.Options{
//	    Layouts: []string{"circle", "kk", "tree"},
//	    Formats: []string{"gif"},
//	})
package pkg
