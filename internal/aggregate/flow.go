package aggregate

import (
	"fmt"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
	"shoplens/domain/views"
)

// FlowTally counts how rows move between the values of adjacent columns in
// chain. Edges for the first pair come before edges for the second and so on;
// within a pair they appear in the order each (source, target) combination
// was first seen. Nodes are (column, value) pairs enumerated column by column
// in chain order, first-seen within each column, so equal values in
// different columns stay distinct nodes.
func FlowTally(view dataset.View, chain []string) (views.Flow, error) {
	if len(chain) < 2 {
		return views.Flow{}, fmt.Errorf("%w: got %d", core.ErrEmptyChain, len(chain))
	}

	cols := make([]*dataset.Column, len(chain))
	seen := make(map[string]bool, len(chain))
	for i, name := range chain {
		if seen[name] {
			return views.Flow{}, fmt.Errorf("%w: column %q appears twice in the chain", core.ErrDuplicateKey, name)
		}
		seen[name] = true
		col, err := view.Column(name)
		if err != nil {
			return views.Flow{}, err
		}
		cols[i] = col
	}

	flow := views.Flow{
		Chain:  append([]string{}, chain...),
		Nodes:  []views.FlowNode{},
		Labels: []string{},
		Edges:  []views.FlowEdge{},
	}

	nodeIndex := make([]map[string]int, len(chain))
	for stage, col := range cols {
		nodeIndex[stage] = make(map[string]int)
		for i := 0; i < view.Len(); i++ {
			val, ok := col.Text(view.Row(i))
			if !ok {
				continue
			}
			if _, dup := nodeIndex[stage][val]; dup {
				continue
			}
			nodeIndex[stage][val] = len(flow.Nodes)
			flow.Nodes = append(flow.Nodes, views.FlowNode{Column: chain[stage], Value: val})
			flow.Labels = append(flow.Labels, val)
		}
	}

	type pair struct{ source, target string }
	for stage := 0; stage < len(chain)-1; stage++ {
		left, right := cols[stage], cols[stage+1]
		edgeIndex := make(map[pair]int)
		for i := 0; i < view.Len(); i++ {
			row := view.Row(i)
			src, okS := left.Text(row)
			dst, okT := right.Text(row)
			if !okS || !okT {
				continue
			}
			key := pair{src, dst}
			pos, found := edgeIndex[key]
			if !found {
				pos = len(flow.Edges)
				edgeIndex[key] = pos
				flow.Edges = append(flow.Edges, views.FlowEdge{
					Stage:       stage,
					Source:      src,
					Target:      dst,
					SourceIndex: nodeIndex[stage][src],
					TargetIndex: nodeIndex[stage+1][dst],
				})
			}
			flow.Edges[pos].Count++
		}
	}
	return flow, nil
}
