package source

// FileID identifies a source file known to the front-end.
type FileID uint32

// NoFileID marks spans that do not point into any file (synthetic attributes).
const NoFileID FileID = 0
