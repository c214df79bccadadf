package dedupe

// Option configures a Deduper.
type Option func(*window)

// WithMaxSize caps how many submission ids are remembered. Once full the
// oldest id is forgotten first. Zero or negative keeps every id.
func WithMaxSize(maxSize int) Option {
	return func(w *window) {
		w.maxSize = maxSize
	}
}
