// Package dot renders a graph.Model in the Graphviz DOT language.
package dot

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pix4d/sgraph/pkg/graph"
)

type Options struct {
	FontName string
	FontSize int
	// ShowUnused also draws the subgraph of groups without peers.
	ShowUnused bool
}

const (
	addressColor = "black"
	labelColor   = "white"
)

// Color returns the color of a node index: hues evenly spread over the
// palette, full saturation, value 0.6.
func Color(index, paletteSize int) string {
	if paletteSize <= 0 {
		paletteSize = graph.DefaultPaletteSize
	}
	hue := 360.0 * float64(index%paletteSize) / float64(paletteSize)
	return colorful.Hsv(hue, 1, 0.6).Hex()
}

// Write lays out m and writes it to w as DOT. Each subgraph of m becomes a
// cluster; edges are created on the root graph. Output depends only on m and
// opts.
func Write(ctx context.Context, w io.Writer, m *graph.Model, opts Options) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("starting graphviz: %w", err)
	}
	defer gv.Close()

	g, err := gv.Graph(graphviz.Directed)
	if err != nil {
		return fmt.Errorf("creating graph: %w", err)
	}
	defer g.Close()
	g.SetSplines("ortho")

	nodes, err := addSubgraphs(g, m, opts)
	if err != nil {
		return err
	}
	if err := addEdges(g, m, nodes, opts); err != nil {
		return err
	}

	return gv.Render(ctx, g, graphviz.DOT, w)
}

func addSubgraphs(g *cgraph.Graph, m *graph.Model, opts Options) (map[string]*cgraph.Node, error) {
	nodes := map[string]*cgraph.Node{}
	for _, sub := range m.Subgraphs {
		if sub.Kind == graph.SubgraphUnused && !opts.ShowUnused {
			continue
		}
		cluster, err := g.CreateSubGraphByName(sub.Name)
		if err != nil {
			return nil, fmt.Errorf("subgraph %s: %w", sub.Name, err)
		}
		for _, n := range sub.Nodes {
			node, err := cluster.CreateNodeByName(n.ID)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", n.ID, err)
			}
			color := addressColor
			if n.Kind == graph.KindGroup {
				color = Color(n.Index, m.PaletteSize)
			}
			node.SetLabel(n.Label)
			node.SetShape(cgraph.Shape(n.Shape))
			node.SetStyle(cgraph.FilledNodeStyle)
			node.SetColor(color)
			node.SetFontColor(labelColor)
			node.SetFontName(opts.FontName)
			node.SetFontSize(float64(opts.FontSize))
			nodes[n.ID] = node
		}
	}
	return nodes, nil
}

// addEdges connects the nodes created by addSubgraphs. An edge touching a
// hidden node is left out.
func addEdges(g *cgraph.Graph, m *graph.Model, nodes map[string]*cgraph.Node, opts Options) error {
	for i, e := range m.Edges {
		from, to := nodes[e.From], nodes[e.To]
		if from == nil || to == nil {
			continue
		}
		// Named edges, so that rules sharing both ends stay distinct.
		edge, err := g.CreateEdgeByName(fmt.Sprintf("rule%d", i), from, to)
		if err != nil {
			return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
		color := Color(e.Index, m.PaletteSize)
		edge.SetLabel(e.Label)
		edge.SetColor(color)
		edge.SetFontColor(color)
		edge.SetFontName(opts.FontName)
		edge.SetFontSize(float64(opts.FontSize))
	}
	return nil
}
