// Package transform rewrites file content before packing: lexical comment
// stripping per language family and a lossy structural compressor.
//
// The strippers are small state machines over bytes. They are not parsers;
// raw strings, template literals and heredocs are not recognised.
package transform

// StripComments removes comments from content according to the comment
// family of tag, a file extension. Unknown tags return content unchanged.
func StripComments(content, tag string) string {
	return DefaultRegistry.Strip(content, tag)
}

// IsCommentRemovalSupported reports whether tag has a comment family.
func IsCommentRemovalSupported(tag string) bool {
	_, ok := DefaultRegistry.Lookup(tag)
	return ok
}

// Strip removes comments using the family registered for tag.
func (r *Registry) Strip(content, tag string) string {
	f, ok := r.Lookup(tag)
	if !ok {
		return content
	}
	return stripFamily(content, f)
}

func stripFamily(content string, f Family) string {
	switch f {
	case FamilyC:
		return stripCFamily(content)
	case FamilyPython, FamilyRuby:
		return stripHash(content, pythonRules)
	case FamilyShell:
		return stripHash(content, shellRules)
	case FamilyYAML:
		return stripHash(content, yamlRules)
	case FamilyPHP:
		return stripHash(stripCFamily(content), phpRules)
	case FamilyHTML:
		return stripHTML(content)
	case FamilyCSS:
		return stripCSS(content)
	}
	return content
}

// Transformer applies the configured content transformation. Compression
// takes precedence over comment removal when both are enabled.
type Transformer struct {
	Registry       *Registry
	RemoveComments bool
	Compress       bool
}

// Apply transforms the content of a file with extension ext.
func (t Transformer) Apply(content, ext string) string {
	switch {
	case t.Compress:
		return Compress(content)
	case t.RemoveComments:
		return t.registry().Strip(content, ext)
	}
	return content
}

func (t Transformer) registry() *Registry {
	if t.Registry == nil {
		return DefaultRegistry
	}
	return t.Registry
}
