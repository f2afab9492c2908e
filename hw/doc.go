// Package hw defines the contract between the conversion pipeline and a
// hardware image service such as VA-API.
//
// A service allocates images, describes them with an immutable Descriptor and
// hands out CPU-visible mappings of their buffers. The service value is the
// device context: every operation that touches the device receives it
// explicitly.
//
// Buffers must be mapped by at most one Mapping at a time. Mapping the same
// buffer twice is a caller error; backends report it as ErrMappingFailed.
package hw
