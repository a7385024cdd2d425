package converters

import (
	"fmt"
	"sort"
	"sync"

	"github.com/darianmavgo/tabconv/converters/common"
)

var (
	driversMu sync.RWMutex
	decoders  = make(map[string]common.Decoder)
	encoders  = make(map[string]common.Encoder)
)

// RegisterDecoder makes a decoder available for the provided format name.
// If called twice with the same name or if decoder is nil, it panics.
func RegisterDecoder(format string, decoder common.Decoder) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if decoder == nil {
		panic("converters: RegisterDecoder decoder is nil")
	}
	if _, dup := decoders[format]; dup {
		panic("converters: RegisterDecoder called twice for format " + format)
	}
	decoders[format] = decoder
}

// RegisterEncoder makes an encoder available for the provided format name.
// If called twice with the same name or if encoder is nil, it panics.
func RegisterEncoder(format string, encoder common.Encoder) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if encoder == nil {
		panic("converters: RegisterEncoder encoder is nil")
	}
	if _, dup := encoders[format]; dup {
		panic("converters: RegisterEncoder called twice for format " + format)
	}
	encoders[format] = encoder
}

// LookupDecoder returns the decoder registered for format.
func LookupDecoder(format string) (common.Decoder, error) {
	driversMu.RLock()
	d, ok := decoders[format]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("converters: unknown decoder %q (forgotten import?)", format)
	}
	return d, nil
}

// LookupEncoder returns the encoder registered for format.
func LookupEncoder(format string) (common.Encoder, error) {
	driversMu.RLock()
	e, ok := encoders[format]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("converters: unknown encoder %q (forgotten import?)", format)
	}
	return e, nil
}

// Formats returns the sorted names of every format with a decoder or encoder.
func Formats() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	seen := make(map[string]bool)
	for name := range decoders {
		seen[name] = true
	}
	for name := range encoders {
		seen[name] = true
	}
	list := make([]string, 0, len(seen))
	for name := range seen {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}
