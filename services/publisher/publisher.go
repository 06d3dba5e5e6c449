package publisher

// Publisher represents a service for publishing newly stored ads
type Publisher interface {
	// Publish publishes a message to a stream under key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
