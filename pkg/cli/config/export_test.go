package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewWebhookForTest creates a Webhook config for testing purposes
func NewWebhookForTest(clientDataKey, postCallKey, searchDataKey string, tolerance time.Duration) *Webhook {
	return &Webhook{
		clientDataKey: clientDataKey,
		postCallKey:   postCallKey,
		searchDataKey: searchDataKey,
		tolerance:     tolerance,
	}
}

// NewMemoryForTest creates a Memory config for testing purposes
func NewMemoryForTest(backend, url string, searchLimit int) *Memory {
	return &Memory{
		backend:     backend,
		url:         url,
		searchLimit: searchLimit,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSalienceForTest creates a Salience config for testing purposes
func NewSalienceForTest(path string) *Salience {
	return &Salience{path: path}
}
