package canvas

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	out := *n
	if n.Prompt != nil {
		p := *n.Prompt
		p.SourceImages = append([]ImageRef(nil), n.Prompt.SourceImages...)
		out.Prompt = &p
	}
	if n.Image != nil {
		img := *n.Image
		if n.Image.Attribution != nil {
			a := *n.Image.Attribution
			img.Attribution = &a
		}
		if n.Image.Generation != nil {
			g := *n.Image.Generation
			g.SourceImageIDs = append([]string(nil), n.Image.Generation.SourceImageIDs...)
			if n.Image.Generation.Params != nil {
				g.Params = make(map[string]string, len(n.Image.Generation.Params))
				for k, v := range n.Image.Generation.Params {
					g.Params[k] = v
				}
			}
			img.Generation = &g
		}
		out.Image = &img
	}
	return &out
}

// Clone returns a copy of the edge.
func (e *Edge) Clone() *Edge {
	out := *e
	return &out
}
