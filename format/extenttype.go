package format

// ExtentType is the ExtentHeader.extent_type discriminator, per spec.md §3.
type ExtentType byte

const (
	// ExtentTypeData defines the content for an extent_id: payload follows
	// the header, and the checksum covers the full padded block.
	ExtentTypeData ExtentType = 'D'
	// ExtentTypeSparse carries no payload; it advances the file's logical
	// offset, relying on the pre-truncated output file to supply zeros.
	ExtentTypeSparse ExtentType = 'S'
	// ExtentTypeReference requests that the bytes already defined by an
	// earlier Data extent with the same extent_id be materialized here.
	ExtentTypeReference ExtentType = 'R'
)

// Valid reports whether b is a recognized ExtentType.
func (t ExtentType) Valid() bool {
	switch t {
	case ExtentTypeData, ExtentTypeSparse, ExtentTypeReference:
		return true
	default:
		return false
	}
}

func (t ExtentType) String() string {
	switch t {
	case ExtentTypeData:
		return "Data"
	case ExtentTypeSparse:
		return "Sparse"
	case ExtentTypeReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// parseExtentType validates b and returns the corresponding ExtentType.
func parseExtentType(b byte) (ExtentType, error) {
	t := ExtentType(b)
	if !t.Valid() {
		return 0, NewUnknownExtentTypeError(b)
	}
	return t, nil
}
