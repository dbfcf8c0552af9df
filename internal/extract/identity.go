package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/spigell/cvrank/internal/text"
)

// IdentitySource names the strategy that resolved the candidate name.
type IdentitySource string

const (
	IdentityNameLine    IdentitySource = "name_line"
	IdentityLeadingName IdentitySource = "leading_name"
	IdentityEmail       IdentitySource = "email"
	IdentityPlaceholder IdentitySource = "placeholder"
)

// Identity is the best-effort name and contact of a candidate.
type Identity struct {
	Name   string         `json:"name"`
	Email  string         `json:"email,omitempty"`
	Source IdentitySource `json:"source"`
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	nameTokenPattern = regexp.MustCompile(`^\p{Lu}[\p{L}'’\-]*\.?$|^\p{Lu}\.$`)

	commonMailDomains = map[string]struct{}{
		"gmail.com": {}, "googlemail.com": {}, "yahoo.com": {}, "yahoo.fr": {},
		"hotmail.com": {}, "hotmail.fr": {}, "outlook.com": {}, "outlook.fr": {},
		"live.com": {}, "live.fr": {}, "icloud.com": {}, "me.com": {}, "proton.me": {},
		"protonmail.com": {}, "orange.fr": {}, "free.fr": {}, "laposte.net": {},
		"sfr.fr": {}, "wanadoo.fr": {}, "gmx.com": {}, "gmx.fr": {}, "email.com": {},
	}

	// Words that start boilerplate lines or job titles rather than names.
	nonNameWords = map[string]struct{}{
		"cv": {}, "resume": {}, "curriculum": {}, "vitae": {}, "email": {}, "e-mail": {},
		"mail": {}, "phone": {}, "tel": {}, "telephone": {}, "mobile": {}, "linkedin": {},
		"github": {}, "address": {}, "adresse": {}, "contact": {}, "profile": {}, "profil": {},
		"summary": {}, "objective": {}, "experience": {}, "experiences": {}, "education": {},
		"formation": {}, "skills": {}, "competences": {}, "languages": {}, "langues": {},
		"projects": {}, "projets": {}, "references": {}, "interests": {}, "date": {},
		"page": {}, "born": {}, "ne": {}, "nee": {},
		"engineer": {}, "ingenieur": {}, "developer": {}, "developpeur": {}, "developpeuse": {},
		"senior": {}, "junior": {}, "lead": {}, "manager": {}, "consultant": {}, "architect": {},
		"architecte": {}, "analyst": {}, "analyste": {}, "designer": {}, "intern": {},
		"stagiaire": {}, "chef": {}, "head": {}, "director": {}, "directeur": {}, "full": {},
		"stack": {}, "fullstack": {}, "backend": {}, "frontend": {}, "data": {}, "scientist": {},
		"software": {}, "web": {}, "devops": {}, "administrator": {}, "technician": {},
		"technicien": {}, "student": {}, "etudiant": {}, "freelance": {}, "chez": {}, "at": {},
	}
)

const (
	minNameTokens = 2
	maxNameTokens = 4
)

// Identity extracts the candidate name and email from the raw document. The
// name always resolves, possibly to the placeholder.
func (e *Extractor) Identity(doc text.DocumentText) Identity {
	raw := doc.Raw
	if raw == "" {
		raw = doc.Cleaned
	}

	email := pickEmail(emailPattern.FindAllString(raw, -1))

	lines := headLines(raw, e.nameLines)

	if name, ok := e.nameFromLines(lines); ok {
		return Identity{Name: name, Email: email, Source: IdentityNameLine}
	}
	if name, ok := e.leadingName(lines); ok {
		return Identity{Name: name, Email: email, Source: IdentityLeadingName}
	}
	if name, ok := nameFromEmail(email); ok {
		return Identity{Name: name, Email: email, Source: IdentityEmail}
	}

	return Identity{Name: UnknownCandidate, Email: email, Source: IdentityPlaceholder}
}

// pickEmail prefers the first address on a personal mail provider, otherwise
// the longest one.
func pickEmail(found []string) string {
	if len(found) == 0 {
		return ""
	}

	for _, addr := range found {
		addr = strings.ToLower(strings.Trim(addr, ".-"))
		at := strings.LastIndexByte(addr, '@')
		if _, ok := commonMailDomains[addr[at+1:]]; ok {
			return addr
		}
	}

	sorted := append([]string{}, found...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return strings.ToLower(strings.Trim(sorted[0], ".-"))
}

func headLines(raw string, n int) []string {
	lines := make([]string, 0, n)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

// nameFromLines accepts a line made only of two to four name-like tokens.
func (e *Extractor) nameFromLines(lines []string) (string, bool) {
	for _, line := range lines {
		if emailPattern.MatchString(line) || strings.ContainsAny(line, "0123456789:|/@") {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < minNameTokens || len(tokens) > maxNameTokens {
			continue
		}
		if !e.allNameTokens(tokens) {
			continue
		}
		return formatName(tokens), true
	}
	return "", false
}

// leadingName accepts a run of capitalized tokens opening a line, as in
// "JEAN DUPONT jean.dupont@email.com".
func (e *Extractor) leadingName(lines []string) (string, bool) {
	for _, line := range lines {
		tokens := strings.Fields(line)
		run := 0
		for run < len(tokens) && run < maxNameTokens && e.isNameToken(tokens[run]) {
			run++
		}
		if run >= minNameTokens {
			return formatName(tokens[:run]), true
		}
	}
	return "", false
}

func (e *Extractor) allNameTokens(tokens []string) bool {
	for _, tok := range tokens {
		if !e.isNameToken(tok) {
			return false
		}
	}
	return true
}

func (e *Extractor) isNameToken(tok string) bool {
	if !nameTokenPattern.MatchString(tok) {
		return false
	}
	lower := strings.ToLower(strings.TrimSuffix(tok, "."))
	if _, ok := nonNameWords[text.Fold(lower)]; ok {
		return false
	}
	return !e.vocabulary.ContainsToken(lower)
}

// nameFromEmail turns "jean.dupont42@x.com" into "Jean Dupont" and
// "jdupont42@x.com" into "Jdupont".
func nameFromEmail(email string) (string, bool) {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "", false
	}

	parts := strings.FieldsFunc(email[:at], func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || unicode.IsDigit(r)
	})
	if len(parts) == 0 || len(parts) > maxNameTokens {
		return "", false
	}

	return formatName(parts), true
}

// formatName title-cases tokens written fully in upper or lower case and keeps
// mixed-case tokens such as "McDonald" untouched.
func formatName(tokens []string) string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if strings.ToUpper(tok) == tok || strings.ToLower(tok) == tok {
			out[i] = titleWord(tok)
			continue
		}
		out[i] = tok
	}
	return strings.Join(out, " ")
}

func titleWord(w string) string {
	var b strings.Builder
	upper := true
	for _, r := range w {
		if upper {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upper = r == '-' || r == '\'' || r == '’'
	}
	return b.String()
}
