package shader

// wgslTypeLayout holds the byte size and alignment for a host-shareable WGSL type.
// Used to check host-side marshalers against their WGSL struct declarations.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// parsedEntryPoint is a shader entry point found in WGSL source
type parsedEntryPoint struct {
	name          string
	stage         Stage
	workgroupSize [3]uint32
}
