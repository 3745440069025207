package compress

// Compress encodes field content before it is written to the store and
// decodes it on the way out. The codec used for a row is recorded in the
// row's Compression column so historical snapshots stay readable after the
// configured codec changes.
type Compress interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// ForName returns the codec recorded under name. Unknown names fall back to
// the nop codec so rows written before compression was enabled stay readable.
func ForName(name string) Compress {
	switch name {
	case NameGZip:
		return NewGZip()
	case NameLZ4:
		return NewLZ4()
	case NameBrotli:
		return NewBrotli()
	default:
		return NewNop()
	}
}
