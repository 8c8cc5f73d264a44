package vegetation

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultBackend is the name of the pure Go backend, always available.
const DefaultBackend = "native"

// Backend runs the full conversion and segmentation pipeline.
//
// Implementations must return the same error types as ConvertToHSV and
// Segment for the same invalid inputs.
type Backend interface {
	Name() string
	Detect(src *Image, order ChannelOrder, r ColorRange) (*Mask, Metrics, error)
}

var (
	backendsMu sync.RWMutex
	backends   = map[string]Backend{DefaultBackend: nativeBackend{}}
)

// RegisterBackend makes a backend selectable by name. A later registration
// with the same name replaces the earlier one.
func RegisterBackend(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[b.Name()] = b
}

// LookupBackend returns the backend registered under name.
func LookupBackend(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, backendNamesLocked())
	}
	return b, nil
}

// BackendNames lists registered backends in sorted order.
func BackendNames() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backendNamesLocked()
}

func backendNamesLocked() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect converts src to HSV and segments it with r using the native backend.
func Detect(src *Image, order ChannelOrder, r ColorRange) (*Mask, Metrics, error) {
	return nativeBackend{}.Detect(src, order, r)
}

type nativeBackend struct{}

func (nativeBackend) Name() string { return DefaultBackend }

func (nativeBackend) Detect(src *Image, order ChannelOrder, r ColorRange) (*Mask, Metrics, error) {
	hsv, err := ConvertToHSV(src, order)
	if err != nil {
		return nil, Metrics{}, err
	}
	return Segment(hsv, r)
}
