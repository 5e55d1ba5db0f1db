package naglfar

// runtimeConfig holds Runtime construction options.
type runtimeConfig struct {
	// Logger is used for the scheduler's fatal-error diagnostics.
	Logger *Logger
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{Logger: Default()}
}

// fileConfig holds ScheduledFile construction options.
type fileConfig struct {
	// Autoflush triggers a flush on every Write call.
	// Default: false.
	Autoflush bool
	// BufferSize is the outgoing-buffer threshold past which Write
	// triggers an implicit flush even without Autoflush.
	// Default: 64KiB.
	BufferSize int
}

const defaultFileBufferSize = 64 * 1024

func defaultFileConfig() fileConfig {
	return fileConfig{Autoflush: false, BufferSize: defaultFileBufferSize}
}
