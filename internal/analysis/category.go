package analysis

import (
	"regexp"
	"strings"
	"sync"
)

// categoryLexicon is scanned in order: the first keyword that whole-word
// matches anywhere in the lower-cased title+text decides the category, so
// earlier entries win on multi-category text.
var categoryLexicon = []struct {
	category string
	keywords []string
}{
	{"Health", []string{"covid", "health", "hospital", "doctor", "vaccine", "disease", "virus", "medicine", "medical"}},
	{"Politics", []string{"election", "minister", "government", "parliament", "politics", "cabinet", "bjp", "congress", "policy", "bill", "law"}},
	{"Economy", []string{"economy", "gdp", "trade", "export", "import", "inflation", "market", "investment", "finance", "stock", "business"}},
	{"Education", []string{"school", "university", "education", "student", "exam", "teacher", "college", "admission"}},
	{"Security", []string{"security", "terror", "attack", "military", "army", "defence", "border", "police", "crime"}},
	{"Sports", []string{"cricket", "football", "olympic", "match", "tournament", "player", "goal", "score", "team", "league"}},
	{"Technology", []string{"tech", "ai", "robot", "software", "hardware", "internet", "startup", "app", "digital", "cyber"}},
	{"Environment", []string{"climate", "environment", "pollution", "weather", "rain", "flood", "earthquake", "disaster", "wildlife"}},
	{"International", []string{"us", "china", "pakistan", "bangladesh", "united nations", "global", "foreign", "international", "world"}},
	{"Culture", []string{"festival", "culture", "art", "music", "movie", "film", "heritage", "tradition", "literature"}},
	{"Science", []string{"science", "research", "study", "experiment", "discovery", "space", "nasa", "isro"}},
	{"Business", []string{"business", "company", "corporate", "industry", "merger", "acquisition", "startup", "entrepreneur"}},
	{"Crime", []string{"crime", "theft", "murder", "fraud", "scam", "arrest", "court", "trial"}},
}

var (
	keywordREs     map[string]*regexp.Regexp
	keywordREsOnce sync.Once
)

func compileKeywordREs() {
	keywordREs = make(map[string]*regexp.Regexp)
	for _, entry := range categoryLexicon {
		for _, kw := range entry.keywords {
			if _, ok := keywordREs[kw]; ok {
				continue
			}
			keywordREs[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
}

// InferCategory is the fallback classifier used when the upstream
// category is missing or the generic "General". It returns "General"
// itself when no keyword matches.
func InferCategory(title, text string) string {
	keywordREsOnce.Do(compileKeywordREs)
	content := strings.ToLower(title) + " " + strings.ToLower(text)
	for _, entry := range categoryLexicon {
		for _, kw := range entry.keywords {
			if keywordREs[kw].MatchString(content) {
				return entry.category
			}
		}
	}
	return "General"
}
