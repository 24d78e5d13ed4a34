package extrude

// Ear-clipping triangulation of a polygon with holes over a flattened
// coordinate array, after Mapbox's earcut. Holes are joined to the outer
// ring by bridge edges before clipping. The output indexes the flattened
// vertex list: contour vertices first, then each hole in order.

type earNode struct {
	i    int     // vertex index in the flattened input
	x, y float64 // coordinates

	prev, next *earNode

	steiner bool
}

// Earcut triangulates. data is [x0 y0 x1 y1 ...]; holeIndices lists the
// starting vertex index of every hole ring. The result is triples of
// vertex indices.
func Earcut(data []float64, holeIndices []int) []int {
	hasHoles := len(holeIndices) > 0
	outerLen := len(data)
	if hasHoles {
		outerLen = holeIndices[0] * 2
	}

	outer := linkedList(data, 0, outerLen, true)
	var triangles []int
	if outer == nil || outer.next == outer.prev {
		return triangles
	}

	if hasHoles {
		outer = eliminateHoles(data, holeIndices, outer)
	}

	return earcutLinked(outer, triangles, 0)
}

// linkedList builds a circular doubly-linked list from a ring slice of the
// data array, in the requested winding.
func linkedList(data []float64, start, end int, clockwise bool) *earNode {
	var last *earNode
	if clockwise == (signedArea(data, start, end) > 0) {
		for i := start; i < end; i += 2 {
			last = insertNode(i/2, data[i], data[i+1], last)
		}
	} else {
		for i := end - 2; i >= start; i -= 2 {
			last = insertNode(i/2, data[i], data[i+1], last)
		}
	}
	if last != nil && equals(last, last.next) {
		removeNode(last)
		last = last.next
	}
	return last
}

// filterPoints removes collinear or duplicate points.
func filterPoints(start, end *earNode) *earNode {
	if start == nil {
		return start
	}
	if end == nil {
		end = start
	}
	p := start
	for {
		again := false
		if !p.steiner && (equals(p, p.next) || area(p.prev, p, p.next) == 0) {
			removeNode(p)
			p = p.prev
			end = p
			if p == p.next {
				break
			}
			again = true
		} else {
			p = p.next
		}
		if !again && p == end {
			break
		}
	}
	return end
}

// earcutLinked clips ears one by one. The pass counter escalates through
// the fallback strategies when no ear can be found.
func earcutLinked(ear *earNode, triangles []int, pass int) []int {
	if ear == nil {
		return triangles
	}
	stop := ear

	for ear.prev != ear.next {
		prev := ear.prev
		next := ear.next

		if isEar(ear) {
			triangles = append(triangles, prev.i, ear.i, next.i)
			removeNode(ear)
			ear = next.next
			stop = next.next
			continue
		}

		ear = next
		if ear == stop {
			switch pass {
			case 0:
				triangles = earcutLinked(filterPoints(ear, nil), triangles, 1)
			case 1:
				ear, triangles = cureLocalIntersections(filterPoints(ear, nil), triangles)
				triangles = earcutLinked(ear, triangles, 2)
			case 2:
				triangles = splitEarcut(ear, triangles)
			}
			return triangles
		}
	}
	return triangles
}

// isEar reports whether the triangle (ear.prev, ear, ear.next) is convex
// and contains no other polygon vertex.
func isEar(ear *earNode) bool {
	a, b, c := ear.prev, ear, ear.next
	if area(a, b, c) >= 0 {
		return false // reflex or degenerate
	}
	p := ear.next.next
	for p != ear.prev {
		if pointInTriangle(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) &&
			area(p.prev, p, p.next) >= 0 {
			return false
		}
		p = p.next
	}
	return true
}

// cureLocalIntersections fixes cases where adjacent edges intersect by
// emitting the offending triangle and removing one vertex.
func cureLocalIntersections(start *earNode, triangles []int) (*earNode, []int) {
	p := start
	for {
		a := p.prev
		b := p.next.next
		if !equals(a, b) && intersects(a, p, p.next, b) &&
			locallyInside(a, b) && locallyInside(b, a) {
			triangles = append(triangles, a.i, p.i, b.i)
			removeNode(p)
			removeNode(p.next)
			p = b
			start = b
		}
		p = p.next
		if p == start {
			break
		}
	}
	return filterPoints(p, nil), triangles
}

// splitEarcut splits the remaining polygon by a diagonal and triangulates
// the halves independently.
func splitEarcut(start *earNode, triangles []int) []int {
	if start == nil {
		return triangles
	}
	a := start
	for {
		b := a.next.next
		for b != a.prev {
			if a.i != b.i && isValidDiagonal(a, b) {
				c := splitPolygon(a, b)
				a = filterPoints(a, a.next)
				c = filterPoints(c, c.next)
				triangles = earcutLinked(a, triangles, 0)
				return earcutLinked(c, triangles, 0)
			}
			b = b.next
		}
		a = a.next
		if a == start {
			break
		}
	}
	return triangles
}

// eliminateHoles links every hole into the outer ring, producing a single
// polygon without holes.
func eliminateHoles(data []float64, holeIndices []int, outer *earNode) *earNode {
	var queue []*earNode
	for i, start := range holeIndices {
		end := len(data)
		if i < len(holeIndices)-1 {
			end = holeIndices[i+1] * 2
		}
		list := linkedList(data, start*2, end, false)
		if list == nil {
			continue
		}
		if list == list.next {
			list.steiner = true
		}
		queue = append(queue, getLeftmost(list))
	}
	// Process holes left to right.
	for i := 1; i < len(queue); i++ {
		for j := i; j > 0 && queue[j].x < queue[j-1].x; j-- {
			queue[j], queue[j-1] = queue[j-1], queue[j]
		}
	}
	for _, hole := range queue {
		outer = eliminateHole(hole, outer)
		outer = filterPoints(outer, outer.next)
	}
	return outer
}

func eliminateHole(hole, outer *earNode) *earNode {
	bridge := findHoleBridge(hole, outer)
	if bridge == nil {
		return outer
	}
	bridgeReverse := splitPolygon(bridge, hole)
	filterPoints(bridgeReverse, bridgeReverse.next)
	return filterPoints(bridge, bridge.next)
}

// findHoleBridge locates the outer-ring vertex a bridge from the hole's
// leftmost point can reach (David Eberly's algorithm).
func findHoleBridge(hole, outer *earNode) *earNode {
	p := outer
	hx := hole.x
	hy := hole.y
	qx := -1e300 // math.Inf avoided; any polygon coordinate beats this
	var m *earNode

	// Find the rightmost intersection of a leftward ray from the hole
	// point with the outer ring edges.
	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				if x == hx {
					if hy == p.y {
						return p
					}
					if hy == p.next.y {
						return p.next
					}
				}
				if p.x < p.next.x {
					m = p
				} else {
					m = p.next
				}
			}
		}
		p = p.next
		if p == outer {
			break
		}
	}
	if m == nil {
		return nil
	}
	if hx == qx {
		return m // hole touches outer segment; pick the endpoint
	}

	// Check points inside the triangle of the bridge candidate; pick the
	// one minimizing the angle to keep the bridge valid.
	stop := m
	mx := m.x
	my := m.y
	tanMin := 1e300
	p = m

	for {
		lo, hi := qx, hx
		if hx < mx {
			lo, hi = hx, qx
		}
		if hx >= p.x && p.x >= mx && hx != p.x &&
			pointInTriangle(lo, hy, mx, my, hi, hy, p.x, p.y) {
			tan := absF(hy-p.y) / (hx - p.x)
			if locallyInside(p, hole) &&
				(tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContainsSector(m, p))))) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return m
}

func sectorContainsSector(m, p *earNode) bool {
	return area(m.prev, m, p.prev) < 0 && area(p.next, m, m.next) < 0
}

func getLeftmost(start *earNode) *earNode {
	p := start
	leftmost := start
	for {
		if p.x < leftmost.x || (p.x == leftmost.x && p.y < leftmost.y) {
			leftmost = p
		}
		p = p.next
		if p == start {
			break
		}
	}
	return leftmost
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}

// isValidDiagonal reports whether a-b is a chord lying inside the polygon.
func isValidDiagonal(a, b *earNode) bool {
	return a.next.i != b.i && a.prev.i != b.i &&
		!intersectsPolygon(a, b) &&
		(locallyInside(a, b) && locallyInside(b, a) && middleInside(a, b) &&
			(area(a.prev, a, b.prev) != 0 || area(a, b.prev, b) != 0) ||
			equals(a, b) && area(a.prev, a, a.next) > 0 && area(b.prev, b, b.next) > 0)
}

func area(p, q, r *earNode) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

func equals(p1, p2 *earNode) bool {
	return p1.x == p2.x && p1.y == p2.y
}

func intersects(p1, q1, p2, q2 *earNode) bool {
	o1 := sign(area(p1, q1, p2))
	o2 := sign(area(p1, q1, q2))
	o3 := sign(area(p2, q2, p1))
	o4 := sign(area(p2, q2, q1))

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, q1) {
		return true
	}
	if o3 == 0 && onSegment(p2, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(p2, q1, q2) {
		return true
	}
	return false
}

func onSegment(p, q, r *earNode) bool {
	return q.x <= maxF(p.x, r.x) && q.x >= minF(p.x, r.x) &&
		q.y <= maxF(p.y, r.y) && q.y >= minF(p.y, r.y)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func intersectsPolygon(a, b *earNode) bool {
	p := a
	for {
		if p.i != a.i && p.next.i != a.i && p.i != b.i && p.next.i != b.i &&
			intersects(p, p.next, a, b) {
			return true
		}
		p = p.next
		if p == a {
			break
		}
	}
	return false
}

func locallyInside(a, b *earNode) bool {
	if area(a.prev, a, a.next) < 0 {
		return area(a, b, a.next) >= 0 && area(a, a.prev, b) >= 0
	}
	return area(a, b, a.prev) < 0 || area(a, a.next, b) < 0
}

func middleInside(a, b *earNode) bool {
	p := a
	inside := false
	px := (a.x + b.x) / 2
	py := (a.y + b.y) / 2
	for {
		if ((p.y > py) != (p.next.y > py)) && p.next.y != p.y &&
			px < (p.next.x-p.x)*(py-p.y)/(p.next.y-p.y)+p.x {
			inside = !inside
		}
		p = p.next
		if p == a {
			break
		}
	}
	return inside
}

// splitPolygon splits the ring with a bridge edge a-b, returning the new
// node on b's side.
func splitPolygon(a, b *earNode) *earNode {
	a2 := &earNode{i: a.i, x: a.x, y: a.y}
	b2 := &earNode{i: b.i, x: b.x, y: b.y}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a

	a2.next = an
	an.prev = a2

	b2.next = a2
	a2.prev = b2

	bp.next = b2
	b2.prev = bp

	return b2
}

func insertNode(i int, x, y float64, last *earNode) *earNode {
	p := &earNode{i: i, x: x, y: y}
	if last == nil {
		p.prev = p
		p.next = p
		return p
	}
	p.next = last.next
	p.prev = last
	last.next.prev = p
	last.next = p
	return p
}

func removeNode(p *earNode) {
	p.next.prev = p.prev
	p.prev.next = p.next
}

func signedArea(data []float64, start, end int) float64 {
	var sum float64
	j := end - 2
	for i := start; i < end; i += 2 {
		sum += (data[j] - data[i]) * (data[i+1] + data[j+1])
		j = i
	}
	return sum
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
