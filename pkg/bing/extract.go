package bing

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/samvad-hq/samvad-image-scraper/internal/domain"
)

const (
	candidateSelector = "a.iusc"
	dataListSelector  = "ul.b_dataList"
	mediaAttr         = "m"
	thumbnailAttr     = "data-src"
)

var dimensionsPattern = regexp.MustCompile(`^(\d+) x (\d+)`)

// SkipReason names why a candidate was dropped.
type SkipReason string

const (
	SkipMissingMedia  SkipReason = "missing_media"
	SkipInvalidMedia  SkipReason = "invalid_media_json"
	SkipEmptyMediaURL SkipReason = "empty_media_url"
	SkipBadDimensions SkipReason = "malformed_dimensions"
)

// Skip records a dropped candidate by its position among all candidates.
type Skip struct {
	Index  int        `json:"index"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// Extraction is the detailed outcome of one Extract pass.
type Extraction struct {
	Result     domain.SearchResult
	Candidates int
	Skips      []Skip
}

// Extract parses an image results document and returns every well-formed record
// in document order. Malformed candidates are dropped; the document as a whole
// never fails.
func Extract(body []byte) domain.SearchResult {
	return ExtractDetailed(body).Result
}

// ExtractDetailed is Extract plus the list of dropped candidates.
func ExtractDetailed(body []byte) Extraction {
	out := Extraction{Result: domain.SearchResult{Records: []domain.ImageRecord{}}}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil || len(doc.Nodes) == 0 {
		return out
	}

	idx := newDocumentIndex(doc)
	candidates := doc.Find(candidateSelector)
	out.Candidates = candidates.Length()

	candidates.Each(func(i int, a *goquery.Selection) {
		rec, skip := parseCandidate(a, idx.nextAfter(a))
		if skip != nil {
			skip.Index = i
			out.Skips = append(out.Skips, *skip)
			return
		}
		out.Result.Records = append(out.Result.Records, rec)
	})

	return out
}

// parseCandidate runs the three independent extractions for one candidate.
// info is the first data list following the candidate and may be nil.
func parseCandidate(a *goquery.Selection, info *goquery.Selection) (domain.ImageRecord, *Skip) {
	fullURL, skip := mediaURL(a)
	if skip != nil {
		return domain.ImageRecord{}, skip
	}

	thumb := thumbnailURL(a)
	if thumb == "" {
		thumb = fullURL
	}

	desc, width, height, skip := describe(info)
	if skip != nil {
		return domain.ImageRecord{}, skip
	}

	return domain.ImageRecord{
		FullURL:      fullURL,
		ThumbnailURL: thumb,
		Description:  desc,
		Width:        width,
		Height:       height,
	}, nil
}

type mediaBlob struct {
	MURL string `json:"murl"`
}

func mediaURL(a *goquery.Selection) (string, *Skip) {
	raw, ok := a.Attr(mediaAttr)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", &Skip{Reason: SkipMissingMedia}
	}

	var blob mediaBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return "", &Skip{Reason: SkipInvalidMedia, Detail: err.Error()}
	}
	if blob.MURL == "" {
		return "", &Skip{Reason: SkipEmptyMediaURL}
	}
	return blob.MURL, nil
}

// thumbnailURL reads the lazy-load source of the first nested img, or "".
func thumbnailURL(a *goquery.Selection) string {
	img := a.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	return img.AttrOr(thumbnailAttr, "")
}

// describe reads dimensions from the first list item and the description from
// the second. A missing list or missing items are not errors; a first item that
// does not start with "<w> x <h>" is.
func describe(info *goquery.Selection) (string, int, int, *Skip) {
	if info == nil {
		return "", 0, 0, nil
	}
	items := info.Find("li")

	var width, height int
	if items.Length() > 0 {
		text := strings.TrimSpace(items.Eq(0).Text())
		m := dimensionsPattern.FindStringSubmatch(text)
		if m == nil {
			return "", 0, 0, &Skip{Reason: SkipBadDimensions, Detail: text}
		}
		var errW, errH error
		width, errW = strconv.Atoi(m[1])
		height, errH = strconv.Atoi(m[2])
		if errW != nil || errH != nil {
			return "", 0, 0, &Skip{Reason: SkipBadDimensions, Detail: text}
		}
	}

	desc := ""
	if items.Length() > 1 {
		desc = description(items.Eq(1))
	}
	return desc, width, height, nil
}

// description prefers the title of a nested span, which holds the untruncated text.
func description(li *goquery.Selection) string {
	if span := li.Find("span").First(); span.Length() > 0 {
		if title, ok := span.Attr("title"); ok {
			return title
		}
	}
	return strings.TrimSpace(li.Text())
}

// documentIndex answers "first data list after this node in document order".
// The list is usually a sibling of the candidate's wrapper, not of the candidate.
type documentIndex struct {
	order map[*html.Node]int
	lists []positioned
}

type positioned struct {
	pos int
	sel *goquery.Selection
}

func newDocumentIndex(doc *goquery.Document) *documentIndex {
	idx := &documentIndex{order: make(map[*html.Node]int)}

	n := 0
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		idx.order[node] = n
		n++
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}

	doc.Find(dataListSelector).Each(func(_ int, s *goquery.Selection) {
		idx.lists = append(idx.lists, positioned{pos: idx.order[s.Get(0)], sel: s})
	})
	sort.Slice(idx.lists, func(i, j int) bool { return idx.lists[i].pos < idx.lists[j].pos })
	return idx
}

func (d *documentIndex) nextAfter(s *goquery.Selection) *goquery.Selection {
	if s.Length() == 0 {
		return nil
	}
	pos, ok := d.order[s.Get(0)]
	if !ok {
		return nil
	}
	i := sort.Search(len(d.lists), func(i int) bool { return d.lists[i].pos > pos })
	if i == len(d.lists) {
		return nil
	}
	return d.lists[i].sel
}
