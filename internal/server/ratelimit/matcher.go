package ratelimit

import "strings"

// unlimitedPaths are never throttled: health checks come from load
// balancers and metrics scrapes from Prometheus, on their own schedules.
var unlimitedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// MatchEndpoint resolves the configuration for a request path and method.
// Exact path matches win; configs whose Path ends in "/" match by prefix
// (so "/apply/" covers every share-link slug). Returns nil when only the
// global default applies.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && unlimitedPaths[path] {
		return &EndpointConfig{Limit: 0}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") &&
			strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
