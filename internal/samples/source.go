package samples

// SourceKind tags how a case field is stored.
type SourceKind int

const (
	Literal SourceKind = iota
	FileRef
)

// Source is either literal text or a reference to a file holding it.
type Source struct {
	Kind SourceKind
	Text string
	Path string
}

func Text(s string) Source {
	return Source{Kind: Literal, Text: s}
}

func File(path string) Source {
	return Source{Kind: FileRef, Path: path}
}

func (s Source) IsFile() bool {
	return s.Kind == FileRef
}
