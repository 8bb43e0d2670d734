package framegraph

// buildBarrierPlan walks surviving passes in registration order and, for
// every access edge, compares the resource's prior tracked state to the
// state the access requires. A transition emits a barrier; a repeated
// state (same-pass consecutive writes, or read-after-read) does not —
// this single comparison is what implements both tie-break rules from
// spec.md §4.3 without treating pass boundaries specially.
func (g *Graph) buildBarrierPlan(plan *CompiledPlan) error {
	imageState := make(map[ResourceIndex]ImageAccessType)
	bufferState := make(map[ResourceIndex]BufferAccessType)

	n := g.resources.Len()
	for i := 0; i < n; i++ {
		rec := g.resources.At(i)
		if !rec.isImported {
			continue
		}
		// An imported resource with no declared access is assumed to
		// already be in its import-time access at frame start.
		if rec.kind == resourceImage {
			imageState[ResourceIndex(i)] = rec.currentImageAccess
		} else {
			bufferState[ResourceIndex(i)] = rec.currentBufferAccess
		}
	}

	np := g.passes.Len()
	plan.passes = make([]compiledPass, 0, np)
	for p := 0; p < np; p++ {
		pass := g.passes.At(p)
		if pass.culled {
			continue
		}
		cp := compiledPass{index: PassIndex(p), name: pass.name, kind: pass.kind, fn: pass.fn}

		for _, e := range g.passEdgesInOrder(pass) {
			edge := g.edges.At(int(e))
			rec := g.resources.At(int(edge.resourceIndex))

			if rec.kind == resourceImage {
				required := ImageAccessUndefined
				if edge.isWrite {
					required = imageWriteAccess(edge.imageWrite)
				} else {
					required = imageReadAccess(edge.imageRead)
				}
				prior := imageState[edge.resourceIndex]
				if prior != required {
					cp.preBarriers = append(cp.preBarriers, barrier{
						resourceIndex: edge.resourceIndex,
						isImage:       true,
						fromImage:     prior,
						toImage:       required,
					})
					imageState[edge.resourceIndex] = required
				}
				continue
			}

			required := edge.bufferAccess
			prior := bufferState[edge.resourceIndex]
			if prior != required {
				cp.preBarriers = append(cp.preBarriers, barrier{
					resourceIndex: edge.resourceIndex,
					isImage:       false,
					fromBuffer:    prior,
					toBuffer:      required,
				})
				bufferState[edge.resourceIndex] = required
			}
		}

		plan.passes = append(plan.passes, cp)
	}
	return nil
}

func imageReadAccess(rt ImageReadType) ImageAccessType {
	if rt == ImageReadCopySrc {
		return ImageAccessCopySrc
	}
	return ImageAccessShaderRead
}

// passEdgesInOrder returns pass's access-edge indices in the order they
// were recorded (the intrusive chain is built LIFO, so this reverses it).
func (g *Graph) passEdgesInOrder(pass *passRecord) []int32 {
	var chain []int32
	for e := pass.accessHead; e != -1; {
		chain = append(chain, e)
		e = g.edges.At(int(e)).nextInPass
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
