// Package sources holds the static registry of monitored outlets: which
// tier each domain belongs to, what language it publishes in, and the
// display names exposed to the dashboard.
package sources

import "strings"

// Tier classifies an outlet. Verification pools only draw from Regional
// and International; Other-tier articles are stored and listed but never
// corroborate anything.
type Tier string

const (
	TierDomestic      Tier = "Domestic"
	TierRegional      Tier = "Regional"
	TierInternational Tier = "International"
	TierFactCheck     Tier = "FactCheckOutlet"
	TierOther         Tier = "Other"
)

// Outlet is a registered domain with a human-readable name.
type Outlet struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// DomesticOutlets are the monitored Indian publishers, in display order.
var DomesticOutlets = []Outlet{
	{"timesofindia.indiatimes.com", "The Times of India"},
	{"hindustantimes.com", "Hindustan Times"},
	{"ndtv.com", "NDTV"},
	{"thehindu.com", "The Hindu"},
	{"indianexpress.com", "The Indian Express"},
	{"indiatoday.in", "India Today"},
	{"news18.com", "News18"},
	{"zeenews.india.com", "Zee News"},
	{"aajtak.in", "Aaj Tak"},
	{"abplive.com", "ABP Live"},
	{"jagran.com", "Dainik Jagran"},
	{"bhaskar.com", "Dainik Bhaskar"},
	{"livehindustan.com", "Hindustan"},
	{"business-standard.com", "Business Standard"},
	{"economictimes.indiatimes.com", "The Economic Times"},
	{"livemint.com", "Mint"},
	{"scroll.in", "Scroll.in"},
	{"thewire.in", "The Wire"},
	{"wionews.com", "WION"},
	{"indiatvnews.com", "India TV"},
	{"newsnationtv.com", "News Nation"},
	{"jansatta.com", "Jansatta"},
	{"india.com", "India.com"},
}

var regionalDomains = []string{
	"bdnews24.com", "thedailystar.net", "prothomalo.com", "dhakatribune.com",
	"newagebd.net", "financialexpress.com.bd", "theindependentbd.com",
	"tbsnews.net", "jugantor.com", "kalerkantho.com", "banglatribune.com",
	"samakal.com", "ittefaq.com.bd", "observerbd.com", "daily-sun.com",
	"unb.com.bd", "bssnews.net", "risingbd.com",
}

var internationalDomains = []string{
	"bbc.com", "reuters.com", "aljazeera.com", "apnews.com", "cnn.com",
	"nytimes.com", "theguardian.com", "france24.com", "dw.com",
	"washingtonpost.com", "bloomberg.com", "wsj.com", "ft.com",
	"economist.com", "npr.org", "latimes.com", "usatoday.com",
	"straitstimes.com", "channelnewsasia.com", "scmp.com",
	"gulfnews.com", "arabnews.com", "lemonde.fr", "spiegel.de",
	"elpais.com", "japantimes.co.jp",
}

var factCheckDomains = []string{
	"factwatchbd.com", "altnews.in", "boomlive.in", "factchecker.in",
	"thequint.com", "factcheck.afp.com", "snopes.com", "politifact.com",
	"fullfact.org", "factcheck.org",
}

// languageBySource maps monitored domestic outlets to their publication
// language. Anything unmapped buckets to "Other" in the dashboard.
var languageBySource = map[string]string{
	"timesofindia.indiatimes.com":  "English",
	"hindustantimes.com":           "English",
	"ndtv.com":                     "English",
	"thehindu.com":                 "English",
	"indianexpress.com":            "English",
	"indiatoday.in":                "English",
	"news18.com":                   "English",
	"zeenews.india.com":            "Hindi",
	"aajtak.in":                    "Hindi",
	"abplive.com":                  "Hindi",
	"jagran.com":                   "Hindi",
	"bhaskar.com":                  "Hindi",
	"livehindustan.com":            "Hindi",
	"business-standard.com":        "English",
	"economictimes.indiatimes.com": "English",
	"livemint.com":                 "English",
	"scroll.in":                    "English",
	"thewire.in":                   "English",
	"wionews.com":                  "English",
	"indiatvnews.com":              "Hindi",
	"newsnationtv.com":             "Hindi",
	"jansatta.com":                 "Hindi",
	"india.com":                    "English",
}

var tierByDomain = buildTierIndex()

func buildTierIndex() map[string]Tier {
	idx := make(map[string]Tier)
	for _, o := range DomesticOutlets {
		idx[o.Domain] = TierDomestic
	}
	for _, d := range regionalDomains {
		idx[d] = TierRegional
	}
	for _, d := range internationalDomains {
		idx[d] = TierInternational
	}
	for _, d := range factCheckDomains {
		idx[d] = TierFactCheck
	}
	return idx
}

// Classify maps a domain to its tier. Matching is case-insensitive and
// exact: unregistered domains (including unregistered subdomains) are
// TierOther.
func Classify(domain string) Tier {
	if t, ok := tierByDomain[strings.ToLower(strings.TrimSpace(domain))]; ok {
		return t
	}
	return TierOther
}

// Domain extracts the host from a URL and strips a leading "www.".
// Malformed input comes back unchanged so callers can still classify it
// (as Other).
func Domain(rawURL string) string {
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(strings.ToLower(s), "www.")
}

// LanguageOf returns the press language for a monitored source, or
// "Other" when the source is not in the language table.
func LanguageOf(source string) string {
	if lang, ok := languageBySource[strings.ToLower(source)]; ok {
		return lang
	}
	return "Other"
}

// AllDomains returns every registered domain across all tiers, domestic
// first. Used as the include list for discovery queries.
func AllDomains() []string {
	out := make([]string, 0, len(tierByDomain))
	for _, o := range DomesticOutlets {
		out = append(out, o.Domain)
	}
	out = append(out, regionalDomains...)
	out = append(out, internationalDomains...)
	out = append(out, factCheckDomains...)
	return out
}
