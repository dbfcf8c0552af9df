package text

// stopWords holds English and French function words, stored accent-folded.
var stopWords = map[string]struct{}{
	// english
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "all": {}, "also": {}, "am": {},
	"an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "been": {},
	"before": {}, "being": {}, "both": {}, "but": {}, "by": {}, "can": {}, "could": {}, "did": {},
	"do": {}, "does": {}, "doing": {}, "during": {}, "each": {}, "few": {}, "for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {}, "his": {},
	"how": {}, "i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"just": {}, "me": {}, "more": {}, "most": {}, "my": {}, "no": {}, "nor": {}, "not": {},
	"of": {}, "off": {}, "on": {}, "once": {}, "only": {}, "or": {}, "other": {}, "our": {},
	"out": {}, "over": {}, "own": {}, "same": {}, "she": {}, "should": {}, "so": {}, "some": {},
	"such": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "to": {}, "too": {}, "under": {},
	"until": {}, "up": {}, "very": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "who": {}, "will": {}, "with": {}, "would": {}, "you": {},
	"your": {},
	// french
	"au": {}, "aux": {}, "avec": {}, "ce": {}, "ces": {}, "dans": {}, "de": {}, "des": {},
	"du": {}, "elle": {}, "en": {}, "et": {}, "eux": {}, "il": {}, "ils": {}, "je": {},
	"la": {}, "le": {}, "les": {}, "leur": {}, "lui": {}, "ma": {}, "mais": {}, "mes": {},
	"moi": {}, "mon": {}, "ne": {}, "nos": {}, "notre": {}, "nous": {}, "ou": {}, "par": {},
	"pas": {}, "pour": {}, "qu": {}, "que": {}, "qui": {}, "sa": {}, "se": {}, "ses": {},
	"son": {}, "sur": {}, "ta": {}, "te": {}, "tes": {}, "toi": {}, "ton": {}, "tu": {},
	"un": {}, "une": {}, "vos": {}, "votre": {}, "vous": {}, "c": {}, "d": {}, "j": {},
	"l": {}, "m": {}, "n": {}, "s": {}, "t": {}, "y": {}, "ete": {}, "etre": {},
	"avoir": {}, "sont": {}, "est": {}, "cette": {}, "comme": {}, "plus": {}, "tres": {},
}

// IsStopWord reports whether w is a common English or French function word.
func IsStopWord(w string) bool {
	_, ok := stopWords[Fold(w)]
	return ok
}
