package shader

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// entryPointRegex captures the attribute block in front of a function and the function name.
	// Stage attributes may appear in any order with @workgroup_size.
	entryPointRegex = regexp.MustCompile(`((?:@\w+(?:\([^)]*\))?\s*)+)fn\s+(\w+)`)

	// stageAttrRegex matches a stage attribute inside an attribute block
	stageAttrRegex = regexp.MustCompile(`@(vertex|fragment|compute)\b`)

	// workgroupSizeRegex captures 1-3 integer dimensions from @workgroup_size(x[, y[, z]])
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)
)

// parseEntryPoints extracts every @vertex, @fragment and @compute function from WGSL source,
// in source order. Functions without a stage attribute are ignored.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []parsedEntryPoint: the entry points found
func parseEntryPoints(source string) []parsedEntryPoint {
	cleaned := stripComments(source)
	matches := entryPointRegex.FindAllStringSubmatch(cleaned, -1)
	out := make([]parsedEntryPoint, 0, len(matches))

	for _, match := range matches {
		attrs := match[1]
		stageMatch := stageAttrRegex.FindStringSubmatch(attrs)
		if stageMatch == nil {
			continue
		}

		ep := parsedEntryPoint{name: match[2], workgroupSize: [3]uint32{1, 1, 1}}
		switch stageMatch[1] {
		case "vertex":
			ep.stage = StageVertex
		case "fragment":
			ep.stage = StageFragment
		case "compute":
			ep.stage = StageCompute
			ep.workgroupSize = parseWorkgroupSize(attrs)
		}
		out = append(out, ep)
	}
	return out
}

// parseWorkgroupSize extracts the @workgroup_size(x, y, z) dimensions from WGSL source.
// Omitted dimensions default to 1.
// Returns [1, 1, 1] if no @workgroup_size annotation is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - [3]uint32: the workgroup size as [x, y, z]
func parseWorkgroupSize(source string) [3]uint32 {
	cleaned := stripComments(source)
	result := [3]uint32{1, 1, 1}

	match := workgroupSizeRegex.FindStringSubmatch(cleaned)
	if match == nil {
		return result
	}

	for i := 0; i < 3; i++ {
		if match[i+1] == "" {
			continue
		}
		if v, err := strconv.ParseUint(match[i+1], 10, 32); err == nil {
			result[i] = uint32(v)
		}
	}
	return result
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var field parsedField
		field.isBuiltin = builtinRegex.MatchString(line)

		field.location = -1
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])

		fields = append(fields, field)
	}

	return fields
}

// StructSize computes the host-shareable byte size of the named struct declared in source,
// following WGSL alignment rules.
//
// Parameters:
//   - source: WGSL source declaring the struct and any struct it depends on
//   - name: the struct name
//
// Returns:
//   - uint64: the struct size in bytes
//   - bool: false if the struct is missing or contains a type that cannot be resolved
func StructSize(source, name string) (uint64, bool) {
	sizes := computeStructSizes(parseStructBlocks(stripComments(source)))
	layout, ok := sizes[name]
	return layout.size, ok
}
