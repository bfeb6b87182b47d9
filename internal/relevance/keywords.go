package relevance

// Keyword weight tiers. A keyword not listed in any tier weighs tierDefault.
const (
	tierRole     = 0.20
	tierCore     = 0.15
	tierAdjacent = 0.10
	tierDefault  = 0.05

	titleBonus = 0.10
	maxScore   = 1.0
)

// aiKeywords is the reference list in match order. It must not contain
// duplicates: the matched list reports keywords in this order.
var aiKeywords = []string{
	"artificial intelligence", "ai", "machine learning", "ml", "deep learning",
	"neural network", "nlp", "natural language processing", "computer vision",
	"generative ai", "gpt", "llm", "large language model", "prompt engineering",
	"ai trainer", "ai consultant", "ai mentor", "ai project lead", "ai curator",
	"data scientist", "ml engineer", "ai researcher", "chatbot", "automation",
	"tensorflow", "pytorch", "hugging face", "openai", "anthropic", "claude",
	"stable diffusion", "diffusion model", "transformer", "bert", "reinforcement learning",
}

var keywordTiers = map[string]float64{
	"ai trainer":      tierRole,
	"ai consultant":   tierRole,
	"ai mentor":       tierRole,
	"ai project lead": tierRole,
	"ai curator":      tierRole,

	"artificial intelligence": tierCore,
	"ai":                      tierCore,
	"generative ai":           tierCore,

	"machine learning": tierAdjacent,
	"ml":               tierAdjacent,
	"deep learning":    tierAdjacent,
}

// titleBonusTerms earn titleBonus when any of them occurs in the title.
var titleBonusTerms = []string{"ai", "artificial intelligence", "machine learning"}

// danishLocations is the gazetteer used by IsLocal.
var danishLocations = []string{
	"denmark", "danmark", "copenhagen", "københavn", "aarhus", "aalborg",
	"odense", "esbjerg", "randers", "kolding", "horsens", "vejle", "roskilde",
	"helsingør", "herning", "silkeborg", "næstved", "fredericia", "viborg",
	"køge", "holstebro", "taastrup", "slagelse", "hillerød", "sønderborg",
	"danish", "dansk", "remote denmark", "hybrid denmark",
}

// Keywords returns a copy of the reference keyword list.
func Keywords() []string {
	out := make([]string, len(aiKeywords))
	copy(out, aiKeywords)
	return out
}

// Weight returns the score contribution of a reference keyword.
func Weight(keyword string) float64 {
	if w, ok := keywordTiers[keyword]; ok {
		return w
	}
	return tierDefault
}
