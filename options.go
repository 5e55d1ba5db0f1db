package naglfar

// RuntimeOption mutates runtimeConfig at construction time.
type RuntimeOption func(*runtimeConfig)

// WithLogger overrides the logger used for scheduler diagnostics.
func WithLogger(l *Logger) RuntimeOption {
	return func(c *runtimeConfig) { c.Logger = l }
}

// FileOption mutates fileConfig at construction time.
type FileOption func(*fileConfig)

// WithAutoflush enables flush-on-every-write.
func WithAutoflush(autoflush bool) FileOption {
	return func(c *fileConfig) { c.Autoflush = autoflush }
}

// WithBufferSize sets the outgoing-buffer threshold before an implicit
// (non-autoflush) flush is triggered.
func WithBufferSize(n int) FileOption {
	return func(c *fileConfig) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}
