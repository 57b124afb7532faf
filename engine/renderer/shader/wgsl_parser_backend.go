package shader

import (
	"strconv"
	"strings"
)

// scalarSizes holds the byte size of each WGSL scalar. Scalars are aligned to their size.
var scalarSizes = map[string]uint64{
	"f32":  4,
	"i32":  4,
	"u32":  4,
	"f16":  2,
	"bool": 4,
}

// shorthandScalars maps the vecNf/matCxRh style suffixes to their scalar.
var shorthandScalars = map[byte]string{'f': "f32", 'i': "i32", 'u': "u32", 'h': "f16"}

func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// genericArgs splits "name<a, b>" into its name and top-level arguments.
func genericArgs(typeName string) (string, []string, bool) {
	open := strings.IndexByte(typeName, '<')
	if open < 0 || !strings.HasSuffix(typeName, ">") {
		return typeName, nil, false
	}
	args := splitAtTopLevelCommas(typeName[open+1 : len(typeName)-1])
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return typeName[:open], args, true
}

// vectorLayout lays out vecN<scalar>: vec2 aligns to twice the scalar, vec3 and vec4 to four times.
func vectorLayout(n uint64, scalar string) (wgslTypeLayout, bool) {
	s, ok := scalarSizes[scalar]
	if !ok || n < 2 || n > 4 {
		return wgslTypeLayout{}, false
	}
	align := 4 * s
	if n == 2 {
		align = 2 * s
	}
	return wgslTypeLayout{size: n * s, align: align}, true
}

// matrixLayout lays out matCxR<scalar> as C columns of vecR, each padded to the column alignment.
func matrixLayout(cols, rows uint64, scalar string) (wgslTypeLayout, bool) {
	col, ok := vectorLayout(rows, scalar)
	if !ok || cols < 2 || cols > 4 {
		return wgslTypeLayout{}, false
	}
	return wgslTypeLayout{size: cols * roundUpAlign(col.align, col.size), align: col.align}, true
}

// builtinLayout resolves scalars, vectors, matrices and atomics in both the generic
// (vec3<f32>) and shorthand (vec3f) spellings.
func builtinLayout(typeName string) (wgslTypeLayout, bool) {
	if s, ok := scalarSizes[typeName]; ok {
		return wgslTypeLayout{size: s, align: s}, true
	}

	base, args, generic := genericArgs(typeName)
	scalar := ""
	switch {
	case generic && len(args) == 1:
		scalar = args[0]
	case !generic && len(base) > 0:
		if s, ok := shorthandScalars[base[len(base)-1]]; ok {
			scalar = s
			base = base[:len(base)-1]
		}
	}
	if scalar == "" {
		return wgslTypeLayout{}, false
	}

	switch {
	case base == "atomic":
		if scalar != "u32" && scalar != "i32" {
			return wgslTypeLayout{}, false
		}
		return wgslTypeLayout{size: 4, align: 4}, true
	case len(base) == 4 && strings.HasPrefix(base, "vec"):
		return vectorLayout(uint64(base[3]-'0'), scalar)
	case len(base) == 6 && strings.HasPrefix(base, "mat") && base[4] == 'x':
		return matrixLayout(uint64(base[3]-'0'), uint64(base[5]-'0'), scalar)
	}
	return wgslTypeLayout{}, false
}

// resolveTypeLayout resolves a field type against the builtins and the structs resolved so far.
// A runtime-sized array resolves to a single element stride and reports runtimeSized.
func resolveTypeLayout(typeName string, known map[string]wgslTypeLayout) (layout wgslTypeLayout, runtimeSized, ok bool) {
	if l, ok := known[typeName]; ok {
		return l, false, true
	}
	if l, ok := builtinLayout(typeName); ok {
		return l, false, true
	}

	base, args, generic := genericArgs(typeName)
	if !generic || base != "array" || len(args) == 0 || len(args) > 2 {
		return wgslTypeLayout{}, false, false
	}
	elem, _, ok := resolveTypeLayout(args[0], known)
	if !ok {
		return wgslTypeLayout{}, false, false
	}
	stride := roundUpAlign(elem.align, elem.size)
	if len(args) == 1 {
		return wgslTypeLayout{size: stride, align: elem.align}, true, true
	}
	count, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false, false
	}
	return wgslTypeLayout{size: count * stride, align: elem.align}, false, true
}

// computeStructLayout places each non-builtin field at its next aligned offset. A trailing
// runtime-sized array contributes its element stride, which is the smallest valid binding.
func computeStructLayout(ps parsedStruct, known map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset, maxAlign := uint64(0), uint64(1)
	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		l, runtimeSized, ok := resolveTypeLayout(field.typeName, known)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(l.align, offset) + l.size
		maxAlign = max(maxAlign, l.align)
		if runtimeSized {
			break
		}
	}
	return wgslTypeLayout{size: roundUpAlign(maxAlign, offset), align: maxAlign}, true
}

// computeStructSizes resolves structs in dependency order, repeating passes until no
// further struct resolves. Structs that reference unknown types are left out.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	pending := append([]parsedStruct(nil), structs...)
	for len(pending) > 0 {
		next := pending[:0]
		for _, ps := range pending {
			if l, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = l
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return resolved
}

// stripComments removes // line comments and nestable /* */ block comments in one pass.
// Newlines are kept so attribute and field parsing still sees line boundaries.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case depth > 0 && c == '*' && next == '/':
			depth--
			i++
		case depth == 0 && c == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		case depth == 0:
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits at commas outside angle brackets, so array<T, N> stays whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
