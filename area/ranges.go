package area

import "net"

// A Range is an address-range aggregation configured on an Area, RFC 2328
// §12.4.3. It can be toggled between advertised and suppressed without
// being deleted.
type Range struct {
	Prefix    *net.IPNet
	Advertise bool
}

// Contains reports whether prefix falls within r.
func (r *Range) Contains(prefix *net.IPNet) bool {
	ones, _ := prefix.Mask.Size()
	rOnes, _ := r.Prefix.Mask.Size()
	if ones < rOnes {
		// prefix is less specific than the range itself; it cannot be a
		// component of the aggregate.
		return false
	}
	return r.Prefix.Contains(prefix.IP)
}

// AddRange installs or updates a Range on the area.
func (a *Area) AddRange(prefix *net.IPNet, advertise bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, r := range a.ranges {
		if r.Prefix.String() == prefix.String() {
			r.Advertise = advertise
			return
		}
	}
	a.ranges = append(a.ranges, &Range{Prefix: prefix, Advertise: advertise})
}

// RemoveRange deletes the Range matching prefix, if any.
func (a *Area) RemoveRange(prefix *net.IPNet) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, r := range a.ranges {
		if r.Prefix.String() == prefix.String() {
			a.ranges = append(a.ranges[:i], a.ranges[i+1:]...)
			return
		}
	}
}

// Ranges returns a snapshot of the area's configured address ranges.
func (a *Area) Ranges() []*Range {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Range(nil), a.ranges...)
}

// A Component is one intra-area destination (from an SPF run) considered
// for aggregation into a Range's single inter-area summary.
type Component struct {
	Prefix *net.IPNet
	Cost   uint16
}

// Aggregate assigns each component to the first of ranges that contains it
// and returns, for every advertised range with at least one component, the
// summary cost to advertise: the maximum cost among its components, RFC
// 2328 §12.4.3. Components that fall in no range, and ranges marked
// Advertise: false, do not appear in the result.
func Aggregate(ranges []*Range, components []Component) map[*Range]uint16 {
	out := make(map[*Range]uint16)

	for _, c := range components {
		for _, r := range ranges {
			if !r.Contains(c.Prefix) {
				continue
			}
			if cur, ok := out[r]; !ok || c.Cost > cur {
				out[r] = c.Cost
			}
			break
		}
	}

	for r := range out {
		if !r.Advertise {
			delete(out, r)
		}
	}
	return out
}

// MatchesRange reports whether prefix is covered by any configured range on
// the area, meaning it should not be summarized individually.
func (a *Area) MatchesRange(prefix *net.IPNet) (*Range, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, r := range a.ranges {
		if r.Contains(prefix) {
			return r, true
		}
	}
	return nil, false
}
