package config

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    "~/.local/share/tween/work",
			LogDir:     "~/.local/share/tween/logs",
			FeedbackDB: "~/.local/share/tween/feedback.db",
		},
		Backend: Backend{
			Kind:           "process",
			Binary:         "tweengen",
			Endpoint:       "http://localhost:8000/generate",
			APIKey:         "",
			StyleStrength:  0.8,
			Resolution:     1024,
			TimeoutSeconds: 180,
		},
		Generation: Generation{
			AutoAcceptThreshold: 0.85,
			DefaultFrameCount:   4,
			MaxFrameCount:       16,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
