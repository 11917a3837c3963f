package geospatial

// Position is a single [lon, lat] coordinate pair in GeoJSON order.
type Position = [2]float64

// PointInRing reports whether the point (lon, lat) lies inside the given
// linear ring using the even-odd ray casting rule. The ring may be open or
// closed (first position repeated at the end); both forms are handled.
// Points exactly on an edge count as inside.
func PointInRing(lon, lat float64, ring []Position) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	// Ignore an explicit closing position.
	if ring[0] == ring[n-1] {
		n--
		if n < 3 {
			return false
		}
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if onSegment(lon, lat, xi, yi, xj, yj) {
			return true
		}

		if (yi > lat) != (yj > lat) {
			x := (xj-xi)*(lat-yi)/(yj-yi) + xi
			if lon < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// BoundingBox returns the min/max extent of a ring. Used as a cheap
// rejection test before the full ray casting pass.
func BoundingBox(ring []Position) (minLon, minLat, maxLon, maxLat float64) {
	if len(ring) == 0 {
		return 0, 0, 0, 0
	}
	minLon, minLat = ring[0][0], ring[0][1]
	maxLon, maxLat = minLon, minLat
	for _, p := range ring[1:] {
		if p[0] < minLon {
			minLon = p[0]
		}
		if p[0] > maxLon {
			maxLon = p[0]
		}
		if p[1] < minLat {
			minLat = p[1]
		}
		if p[1] > maxLat {
			maxLat = p[1]
		}
	}
	return minLon, minLat, maxLon, maxLat
}

// InBoundingBox reports whether (lon, lat) falls inside the ring's extent.
func InBoundingBox(lon, lat float64, ring []Position) bool {
	minLon, minLat, maxLon, maxLat := BoundingBox(ring)
	return lon >= minLon && lon <= maxLon && lat >= minLat && lat <= maxLat
}

const onSegmentEps = 1e-12

// onSegment reports whether (px, py) lies on the segment (x1,y1)-(x2,y2).
func onSegment(px, py, x1, y1, x2, y2 float64) bool {
	cross := (x2-x1)*(py-y1) - (y2-y1)*(px-x1)
	if cross > onSegmentEps || cross < -onSegmentEps {
		return false
	}
	if px < min(x1, x2)-onSegmentEps || px > max(x1, x2)+onSegmentEps {
		return false
	}
	if py < min(y1, y2)-onSegmentEps || py > max(y1, y2)+onSegmentEps {
		return false
	}
	return true
}
