package log

// Option configures a [Logger].
type Option func(*config)

// apply returns a copy of cfg with each option applied in order.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
