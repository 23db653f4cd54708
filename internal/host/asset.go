package host

import "sync"

// Asset is a named byte payload produced by a compilation stage. Assets are
// transient: they exist only for the duration of a processing callback and may
// be deleted or replaced in place.
type Asset struct {
	Name string
	Data []byte
}

// AssetSet is an ordered, mutable collection of assets for one environment and
// one build cycle. Iteration order is insertion order. All methods are safe for
// concurrent use; the document phase rewrites assets from multiple goroutines.
type AssetSet struct {
	mu     sync.Mutex
	order  []string
	byName map[string]*Asset
}

// NewAssetSet constructs an empty asset set.
func NewAssetSet() *AssetSet {
	return &AssetSet{byName: make(map[string]*Asset)}
}

// Add inserts or overwrites an asset. Overwriting keeps the original position.
func (s *AssetSet) Add(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[name]; !ok {
		s.order = append(s.order, name)
	}
	s.byName[name] = &Asset{Name: name, Data: data}
}

// Get returns a copy of the named asset.
func (s *AssetSet) Get(name string) (Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byName[name]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// Delete removes the named asset. Deleting a missing asset is a no-op.
func (s *AssetSet) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[name]; !ok {
		return
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Replace swaps the payload of an existing asset, preserving its position.
// Replacing a missing asset inserts it at the end.
func (s *AssetSet) Replace(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byName[name]; ok {
		a.Data = data
		return
	}
	s.order = append(s.order, name)
	s.byName[name] = &Asset{Name: name, Data: data}
}

// Names returns the asset names in insertion order.
func (s *AssetSet) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Assets returns copies of all assets in insertion order.
func (s *AssetSet) Assets() []Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Asset, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, *s.byName[n])
	}
	return out
}

// Len reports the number of assets in the set.
func (s *AssetSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
