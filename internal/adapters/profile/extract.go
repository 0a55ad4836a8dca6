package profile

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"speakerhub/internal/domain"
)

// Selector lists are tried in order; the profile site ships several layouts at once.
var (
	searchResultSelector = ".reusable-search__result-container, .search-result__info"
	profileReadySelector = ".pv-top-card, .profile-background-image"

	nameSelectors     = []string{"h1.text-heading-xlarge", ".pv-top-card--list-bullet > li:first-child", "main h1"}
	titleSelectors    = []string{".pv-text-details__left-panel .text-body-medium", ".text-body-medium", ".pv-top-card--experience-list-item"}
	companySelectors  = []string{".pv-text-details__right-panel-item-text", ".pv-entity__secondary-title"}
	locationSelectors = []string{".pv-text-details__left-panel .text-body-small.inline", ".pv-top-card__location"}
	bioSelectors      = []string{".pv-about-section", "#about ~ .display-flex .inline-show-more-text", ".display-flex.ph5.pv3"}
	followerSelectors = []string{".pv-recent-activity-section__follower-count", ".text-body-small"}
	photoSelectors    = []string{".pv-top-card__photo img", "img.pv-top-card-profile-picture__image", "img.profile-photo-edit__preview"}
	skillSelectors    = []string{".pv-skill-category-entity__name-text", ".display-flex.align-items-center.mr1.hoverable-link-text"}
)

var followersRe = regexp.MustCompile(`(?i)(\d[\d,.]*)\s*([km])?\+?\s*followers?`)

// parseSearchResults returns the distinct profile URLs listed on a search page, in page order.
func parseSearchResults(doc *goquery.Document, base *url.URL) []string {
	var urls []string
	seen := map[string]bool{}
	doc.Find(searchResultSelector).Each(func(_ int, result *goquery.Selection) {
		link := result.Find("a.app-aware-link").First()
		if link.Length() == 0 {
			link = result.Find(`a[href*="/in/"]`).First()
		}
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		u := canonicalProfileURL(base, href)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	})
	return urls
}

// canonicalProfileURL resolves href against base and drops query and fragment.
func canonicalProfileURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// parseProfile reads one profile page. A page without a name is reported as failed; any other
// field that could not be found is listed in Missing and makes the result partial.
func parseProfile(doc *goquery.Document, profileURL string) domain.ProfileResult {
	snap := &domain.ProfileSnapshot{
		ProfileURL: profileURL,
		Name:       firstText(doc, nameSelectors),
		Title:      firstText(doc, titleSelectors),
		Company:    firstText(doc, companySelectors),
		Location:   firstText(doc, locationSelectors),
		Bio:        firstText(doc, bioSelectors),
		PhotoURL:   firstAttr(doc, photoSelectors, "src"),
		Skills:     allTexts(doc, skillSelectors),
	}
	if snap.Name == "" {
		return domain.ProfileResult{Status: domain.ProfileFailed, Reason: "profile name not found"}
	}
	followers, foundFollowers := findFollowers(doc)
	snap.Followers = followers

	var missing []string
	for _, f := range []struct {
		name  string
		found bool
	}{
		{"title", snap.Title != ""},
		{"company", snap.Company != ""},
		{"location", snap.Location != ""},
		{"bio", snap.Bio != ""},
		{"photo_url", snap.PhotoURL != ""},
		{"followers", foundFollowers},
		{"skills", len(snap.Skills) > 0},
	} {
		if !f.found {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return domain.ProfileResult{Status: domain.ProfilePartial, Snapshot: snap, Missing: missing}
	}
	return domain.ProfileResult{Status: domain.ProfileComplete, Snapshot: snap}
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var text string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = cleanText(s.Text())
			return text == ""
		})
		if text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// allTexts collects the distinct texts of the first selector that matches anything.
func allTexts(doc *goquery.Document, selectors []string) []string {
	for _, sel := range selectors {
		var out []string
		seen := map[string]bool{}
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := cleanText(s.Text())
			key := strings.ToLower(text)
			if text == "" || seen[key] {
				return
			}
			seen[key] = true
			out = append(out, text)
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func findFollowers(doc *goquery.Document) (int, bool) {
	for _, sel := range followerSelectors {
		var n int
		var found bool
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			n, found = parseFollowers(s.Text())
			return !found
		})
		if found {
			return n, true
		}
	}
	return 0, false
}

// parseFollowers reads counts such as "1,234 followers" or "12K followers".
func parseFollowers(text string) (int, bool) {
	m := followersRe.FindStringSubmatch(cleanText(text))
	if m == nil {
		return 0, false
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	switch strings.ToLower(m[2]) {
	case "k", "m":
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return 0, false
		}
		if strings.EqualFold(m[2], "k") {
			return int(math.Round(f * 1_000)), true
		}
		return int(math.Round(f * 1_000_000)), true
	default:
		n, err := strconv.Atoi(strings.ReplaceAll(digits, ".", ""))
		if err != nil {
			return 0, false
		}
		return n, true
	}
}
