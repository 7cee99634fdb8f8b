// ABOUTME: BFS search for the chains of references that keep an object alive
// ABOUTME: Returns up to K shortest simple paths from an object back to a root

package graph

import "slices"

// Path is a chain of objects from a target back to a rooted object
type Path struct {
	IDs []ObjID // target first, rooted object last
}

// PathsToRoots returns up to maxPaths shortest paths from the object from to
// an object referenced directly by a root. Paths never visit an object twice.
func PathsToRoots(g Graph, from ObjID, maxPaths int) []Path {
	if maxPaths <= 0 || g.GetObject(from) == nil {
		return nil
	}

	rooted := make(map[ObjID]bool)
	for _, id := range g.GetRoots().IDs() {
		rooted[id] = true
	}
	if rooted[from] {
		return []Path{{IDs: []ObjID{from}}}
	}

	reverse := BuildReverseEdges(g)

	var result []Path
	queue := [][]ObjID{{from}}
	for len(queue) > 0 && len(result) < maxPaths {
		path := queue[0]
		queue = queue[1:]

		for _, referrer := range reverse[path[len(path)-1]] {
			if slices.Contains(path, referrer) {
				continue
			}
			next := append(slices.Clip(path), referrer)
			if rooted[referrer] {
				result = append(result, Path{IDs: next})
				if len(result) >= maxPaths {
					break
				}
				continue
			}
			queue = append(queue, next)
		}
	}

	return result
}

// Reachable returns the set of objects reachable from the roots.
func Reachable(g Graph) map[ObjID]bool {
	seen := make(map[ObjID]bool)
	stack := g.GetRoots().IDs()
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		obj := g.GetObject(id)
		if obj == nil {
			continue
		}
		seen[id] = true
		stack = append(stack, obj.Ptrs()...)
	}
	return seen
}
