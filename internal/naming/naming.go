// Package naming generates default group names from member names and
// resolves name collisions against a caller-supplied set of existing
// names.
package naming

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
)

// maxSurnames is the number of surnames joined before truncating with "-+N".
const maxSurnames = 5

var particles = map[string]bool{
	"de":  true,
	"van": true,
	"von": true,
	"ter": true,
	"le":  true,
	"du":  true,
	"der": true,
}

type parsedName struct {
	given   string
	surname string
}

// sortableToDisplay converts "Last, First" to "First Last". Names
// without a comma are returned unchanged. A trailing empty remainder
// collapses to just the first half.
func sortableToDisplay(name string) string {
	idx := strings.Index(name, ",")
	if idx < 0 {
		return name
	}
	before := strings.TrimSpace(name[:idx])
	after := strings.TrimSpace(name[idx+1:])
	if after == "" {
		return before
	}
	return after + " " + before
}

func isParticle(word string) bool {
	return particles[word]
}

// parseName splits a display name into given name and surname,
// recognizing trailing particle runs ("de", "van der", "von", "ter",
// "le", "du") as part of the surname. A mononym parses to that word as
// the given name and an empty surname (the caller treats that as "use
// given alone").
func parseName(name string) parsedName {
	display := sortableToDisplay(name)
	words := strings.Fields(display)

	switch len(words) {
	case 0:
		return parsedName{}
	case 1:
		return parsedName{given: words[0], surname: ""}
	}

	last := len(words) - 1
	start := last
	for start > 1 && isParticle(words[start-1]) {
		start--
	}

	return parsedName{
		given:   strings.Join(words[:start], " "),
		surname: strings.Join(words[start:], " "),
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a string to lowercase ASCII, stripping diacritics
// and collapsing runs of non-alphanumeric characters to a single dash.
func Slugify(s string) string {
	decomposed := norm.NFKD.String(s)
	var stripped strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		stripped.WriteRune(r)
	}
	lower := strings.ToLower(stripped.String())
	dashed := nonSlugChars.ReplaceAllString(lower, "-")
	return strings.Trim(dashed, "-")
}

// shortID returns the first 4 lowercase hex digits found anywhere in id,
// scanning left to right (the ID is not assumed to start with hex data,
// e.g. a base58 id).
func shortID(id string) string {
	var out strings.Builder
	for _, r := range id {
		if isHexDigit(r) {
			out.WriteRune(r)
			if out.Len() >= 4 {
				break
			}
		}
	}
	return strings.ToLower(out.String())
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func surnameSlugFor(m model.Member) string {
	surname := Slugify(parseName(m.Name).surname)
	if surname == "" {
		return shortID(string(m.ID))
	}
	return surname
}

// GenerateGroupName builds the default name for a group from its
// ordered members:
//   - 0 members: "empty-group"
//   - 1 member: "firstname_lastname" (slugified independently)
//   - 2-5 members: surnames joined by "-"
//   - 6+ members: first 5 surnames joined by "-", then "-+N" remainder
func GenerateGroupName(members []model.Member) string {
	switch len(members) {
	case 0:
		return "empty-group"
	case 1:
		m := members[0]
		parsed := parseName(m.Name)
		first := Slugify(parsed.given)
		last := Slugify(parsed.surname)
		switch {
		case first == "" && last == "":
			return "member-" + shortID(string(m.ID))
		case first == "":
			return last
		case last == "":
			return first
		default:
			return first + "_" + last
		}
	}

	n := len(members)
	if n <= maxSurnames {
		surnames := make([]string, n)
		for i, m := range members {
			surnames[i] = surnameSlugFor(m)
		}
		return strings.Join(surnames, "-")
	}

	surnames := make([]string, maxSurnames)
	for i := 0; i < maxSurnames; i++ {
		surnames[i] = surnameSlugFor(members[i])
	}
	remainder := n - maxSurnames
	return strings.Join(surnames, "-") + "-+" + strconv.Itoa(remainder)
}

// ResolveCollision appends a suffix to baseName until the result is not
// in existingNames. Single-member groups append "_<4-hex>" derived from
// memberID first; groups (and exhausted individual retries) append
// incrementing "-N"; past 1000 attempts, a random 8-character suffix is
// used as a last resort.
func ResolveCollision(baseName string, existingNames map[string]bool, memberID *model.MemberID) string {
	if memberID != nil {
		candidate := baseName + "_" + shortID(string(*memberID))
		if !existingNames[candidate] {
			return candidate
		}
	}

	for counter := 2; counter <= 1000; counter++ {
		candidate := baseName + "-" + strconv.Itoa(counter)
		if !existingNames[candidate] {
			return candidate
		}
	}

	suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return baseName + "-" + suffix
}

// GenerateUniqueGroupName generates a default name and resolves it
// against existingNames if it collides.
func GenerateUniqueGroupName(members []model.Member, existingNames map[string]bool) string {
	base := GenerateGroupName(members)
	if !existingNames[base] {
		return base
	}

	var memberID *model.MemberID
	if len(members) == 1 {
		id := members[0].ID
		memberID = &id
	}
	return ResolveCollision(base, existingNames, memberID)
}
