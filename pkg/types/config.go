package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request. The
	// service rejects obviously non-browser agents, so the default is a
	// desktop browser string.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the PubPeer session client.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the service root. A trailing slash is ignored.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Delay is the politeness delay between search pages and after each
	// successful detail fetch.
	Delay time.Duration `json:"delay" yaml:"delay"`

	// MaxResults caps the number of hits one search yields. Zero means
	// no cap.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxRetries bounds the attempts for one request, including the first.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryBackoff is the base backoff; attempt n sleeps n*RetryBackoff.
	RetryBackoff time.Duration `json:"retry_backoff" yaml:"retry_backoff"`
}

// DefaultClientConfig returns the client settings the service tolerates:
// one request per second and a modest retry budget.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HTTPConfig: HTTPConfig{
			Timeout: 30 * time.Second,
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		},
		BaseURL:      "https://pubpeer.com",
		Delay:        1 * time.Second,
		MaxRetries:   5,
		RetryBackoff: 2 * time.Second,
	}
}
