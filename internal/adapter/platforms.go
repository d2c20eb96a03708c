package adapter

import "strings"

// newLiveKit builds the adapter for docs.livekit.io.
// LiveKit publishes an llms.txt listing every page, so that strategy
// comes first. Auto-generated API reference pages and the changelog are
// skipped.
func newLiveKit() *Adapter {
	return &Adapter{
		Name:         "livekit",
		HostPatterns: []string{"docs.livekit.io", "livekit.io/docs"},
		ContentSelectors: []string{
			"article",
			".prose",
			"main",
		},
		SkipSelectors: append([]string{".copy-button"}, defaultSkipSelectors...),
		DiscoveryPriority: []string{
			StrategyLlmsTxt,
			StrategySitemap,
			StrategyRecursive,
		},
		SkipFunc: func(url string) bool {
			return strings.Contains(url, "/api-reference/") ||
				strings.Contains(url, "/changelog")
		},
		PriorityFunc: func(url string) int {
			switch {
			case strings.Contains(url, "/agents/"):
				return 100
			case strings.Contains(url, "/realtime/"):
				return 90
			case strings.Contains(url, "/guides/"):
				return 80
			case strings.Contains(url, "/quickstarts/"):
				return 70
			}
			return 50
		},
	}
}

// newPipecat builds the adapter for docs.pipecat.ai.
func newPipecat() *Adapter {
	return &Adapter{
		Name:         "pipecat",
		HostPatterns: []string{"docs.pipecat.ai", "pipecat.ai/docs"},
		ContentSelectors: []string{
			"article",
			".markdown-body",
			"main",
			".prose",
			"#content",
		},
		SkipSelectors: append([]string{".copy-button", ".tabs"}, defaultSkipSelectors...),
		DiscoveryPriority: []string{
			StrategySitemap,
			StrategyRecursive,
		},
		SkipFunc: func(url string) bool {
			// API reference is auto-generated, except the overview page.
			return strings.Contains(url, "/api/") && !strings.Contains(url, "/api/overview")
		},
		PriorityFunc: func(url string) int {
			switch {
			case strings.Contains(url, "/quickstart"):
				return 100
			case strings.Contains(url, "/getting-started"):
				return 95
			case strings.Contains(url, "/introduction"):
				return 90
			case strings.Contains(url, "/concepts"):
				return 85
			case strings.Contains(url, "/examples"):
				return 80
			case strings.Contains(url, "/guides"):
				return 75
			}
			return 50
		},
	}
}

// newRetellAI builds the adapter for docs.retellai.com.
func newRetellAI() *Adapter {
	return &Adapter{
		Name:         "retellai",
		HostPatterns: []string{"docs.retellai.com", "retellai.com/docs"},
		ContentSelectors: []string{
			"article",
			".markdown-body",
			"main",
			".prose",
			".content",
			"#content",
		},
		SkipSelectors: append([]string{".copy-button"}, defaultSkipSelectors...),
		DiscoveryPriority: []string{
			StrategySitemap,
			StrategyRecursive,
		},
		SkipFunc: func(url string) bool {
			return strings.Contains(url, "/api-reference/")
		},
		PriorityFunc: func(url string) int {
			switch {
			case strings.Contains(strings.ToLower(url), "conversation-flow"):
				return 100
			case strings.Contains(url, "/quickstart"):
				return 95
			case strings.Contains(url, "/getting-started"):
				return 90
			case strings.Contains(url, "/concepts"):
				return 85
			case strings.Contains(url, "/examples"):
				return 80
			case strings.Contains(url, "/guides"):
				return 75
			case strings.Contains(url, "/custom-llm"):
				return 70
			}
			return 50
		},
	}
}
