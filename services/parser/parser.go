package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/services/categorizer"

	"github.com/cespare/xxhash/v2"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Tags whose boundaries separate words once markup is removed.
var blockTags = map[string]struct{}{
	"p": {}, "br": {}, "div": {}, "li": {}, "ul": {}, "ol": {}, "tr": {}, "td": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {}, "blockquote": {},
}

const (
	rssEnvelopeStart = `<rss version="2.0"><channel>`
	rssEnvelopeEnd   = `</channel></rss>`
)

func New(categorizer categorizer.Service, maxDescription int) *Impl {
	if maxDescription <= 0 {
		maxDescription = defaultMaxDescription
	}
	return &Impl{
		categorizer:    categorizer,
		maxDescription: maxDescription,
		now:            time.Now,
	}
}

// WithClock replaces the time used for items without a readable pubDate.
func (service *Impl) WithClock(now func() time.Time) *Impl {
	service.now = now
	return service
}

func (service *Impl) Parse(markup string, source entities.FeedSource) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str(constants.LogSourceKey, source.Key).Msg("Feed parser panicked, source ignored")
			result = Result{Err: fmt.Errorf("%w: %v", ErrUnparsable, r)}
		}
	}()

	markup = strings.TrimSpace(markup)
	if markup == "" {
		return Result{Err: ErrEmpty}
	}

	root, err := checkWellFormed(markup)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %v", ErrUnparsable, err)}
	}
	if root == "item" {
		markup = wrapItems(markup)
	}

	feed, err := gofeed.NewParser().ParseString(markup)
	if err != nil {
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			// Well-formed but not a feed: nothing to read.
			return Result{Updates: []entities.RegulatoryUpdate{}}
		}
		return Result{Err: fmt.Errorf("%w: %v", ErrUnparsable, err)}
	}

	now := service.now()
	updates := make([]entities.RegulatoryUpdate, 0, len(feed.Items))
	for _, item := range feed.Items {
		updates = append(updates, service.toUpdate(item, source, now))
	}
	return Result{Updates: updates}
}

func (service *Impl) toUpdate(item *gofeed.Item, source entities.FeedSource, now time.Time) entities.RegulatoryUpdate {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	description := Truncate(StripHTML(item.Description), service.maxDescription)

	pub := now
	if item.PublishedParsed != nil {
		pub = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		pub = *item.UpdatedParsed
	}

	idSource := link
	if idSource == "" {
		idSource = title
	}

	return entities.RegulatoryUpdate{
		ID:          UpdateID(idSource),
		Title:       title,
		Description: description,
		Link:        link,
		PubDate:     pub,
		Source:      source.Key,
		SourceLabel: source.Label,
		Categories:  service.categorizer.Categorize(title, description, source.Key),
	}
}

// UpdateID hashes the link (or title) into a short base-36 identifier that
// is stable across runs.
func UpdateID(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 36)
}

// StripHTML keeps the text content of an HTML fragment, entities decoded and
// whitespace collapsed.
func StripHTML(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if _, ok := blockTags[string(name)]; ok {
				b.WriteByte(' ')
			}
		}
	}
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}

// checkWellFormed walks every token in strict mode and returns the name of
// the root element.
func checkWellFormed(markup string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	var root string
	roots := 0
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if root == "" {
					root = t.Name.Local
				}
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	switch {
	case root == "":
		return "", errors.New("no root element")
	case roots > 1 && root != "item":
		return "", errors.New("more than one root element")
	}
	return root, nil
}

// wrapItems turns bare <item> fragments into a single-channel RSS document.
func wrapItems(markup string) string {
	if strings.HasPrefix(markup, "<?xml") {
		if end := strings.Index(markup, "?>"); end >= 0 {
			markup = markup[end+2:]
		}
	}
	return rssEnvelopeStart + markup + rssEnvelopeEnd
}
