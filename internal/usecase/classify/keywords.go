package classify

import "github.com/kailas-cloud/feedex/internal/domain/classification"

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "awesome", "fantastic", "wonderful", "perfect",
	"love", "loved", "loving", "like", "enjoy", "happy", "pleased", "impressed",
	"helpful", "useful", "easy", "intuitive", "smooth", "fast", "reliable", "beautiful",
	"best", "nice", "recommend", "thanks", "thank you",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "horrible", "worst", "hate", "hated", "poor",
	"broken", "crash", "crashes", "crashed", "crashing", "bug", "bugs", "buggy",
	"error", "errors", "fail", "fails", "failed", "failure", "problem", "issue", "issues",
	"slow", "laggy", "lag", "freezes", "frozen", "takes forever",
	"annoying", "frustrating", "frustrated", "confusing", "useless", "unusable",
	"disappointed", "disappointing", "expensive", "overpriced",
	"not working", "doesn't work", "does not work",
}

var negationWords = []string{
	"not", "no", "never", "don't", "doesn't", "isn't", "wasn't", "aren't",
	"can't", "cannot", "won't", "hardly", "barely",
}

// themeRule maps a theme tag to its trigger words.
type themeRule struct {
	theme string
	words []string
}

// themeRules is evaluated in order; the first three matching themes win.
var themeRules = []themeRule{
	{"performance", []string{
		"slow", "fast", "speed", "performance", "laggy", "lag", "loading", "load time",
		"takes forever", "freeze", "freezes", "latency", "responsive", "sluggish",
	}},
	{"ui_ux", []string{
		"ui", "ux", "interface", "design", "layout", "button", "buttons", "screen", "navigation",
		"menu", "font", "dark mode", "intuitive", "confusing", "usability",
	}},
	{"pricing", []string{
		"price", "pricing", "expensive", "cheap", "cost", "costs", "subscription", "plan",
		"billing", "refund", "overpriced", "pay", "paid", "free tier",
	}},
	{"bugs", []string{
		"bug", "bugs", "buggy", "broken", "crash", "crashes", "crashed", "crashing", "error", "errors",
		"glitch", "not working", "doesn't work", "does not work", "fails", "failed",
	}},
	{"features", []string{
		"feature", "features", "request", "add", "would be", "wish", "missing", "option",
		"ability to", "support for",
	}},
	{"documentation", []string{
		"docs", "documentation", "guide", "tutorial", "manual", "example", "examples", "readme",
	}},
	{"support", []string{
		"support", "customer service", "help desk", "response time", "agent", "ticket", "contacted",
	}},
	{"security", []string{
		"security", "secure", "password", "login", "2fa", "privacy", "breach", "vulnerability",
		"hacked", "encryption", "permission", "permissions",
	}},
	{"integration", []string{
		"integration", "integrate", "api", "webhook", "slack", "zapier", "sync", "export",
		"import", "plugin",
	}},
}

// urgencyTier maps an urgency level to its trigger words.
type urgencyTier struct {
	level classification.Urgency
	words []string
}

// urgencyLadder is checked top to bottom; the first matching tier wins, else medium.
var urgencyLadder = []urgencyTier{
	{classification.Critical, []string{
		"crash", "crashes", "crashed", "crashing", "broken", "urgent", "urgently", "asap",
		"emergency", "not working", "doesn't work", "does not work", "can't use", "cannot use",
		"data loss", "lost data", "outage", "unusable",
	}},
	{classification.High, []string{
		"bug", "bugs", "error", "errors", "issue", "issues", "fail", "fails", "failed", "failing",
		"wrong", "problem",
	}},
	{classification.Low, []string{
		"nice", "suggestion", "suggest", "would be", "maybe", "minor", "idea", "could you",
		"nice to have",
	}},
}
