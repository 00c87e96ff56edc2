package transform

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
)

// Func converts an upstream body into the body relayed to the caller.
// ok=false means the body could not be converted; the caller answers 415.
type Func func(body []byte) ([]byte, bool)

var (
	// ErrNoChannel is returned for an RSS document without a <channel>.
	ErrNoChannel = errors.New("rss document has no channel")

	// ErrMalformed wraps XML decoding failures.
	ErrMalformed = errors.New("malformed rss document")
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Feed is the JSON form of an RSS channel.
type Feed struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Published   int64  `json:"published,omitempty"`
	Items       []Item `json:"items"`
}

// Item is the JSON form of an RSS item. Published is Unix seconds (UTC) and
// is left out when the item carries no parsable date.
type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Author      string `json:"author"`
	GUID        string `json:"guid"`
	Published   int64  `json:"published,omitempty"`
}

type rssDocument struct {
	XMLName xml.Name    `xml:"rss"`
	Channel *rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         []element `xml:"title"`
	Link          []element `xml:"link"`
	Description   []element `xml:"description"`
	PubDate       []element `xml:"pubDate"`
	LastBuildDate []element `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       []element `xml:"title"`
	Link        []element `xml:"link"`
	Description []element `xml:"description"`
	Author      []element `xml:"author"`
	Creator     []element `xml:"http://purl.org/dc/elements/1.1/ creator"`
	GUID        []element `xml:"guid"`
	PubDate     []element `xml:"pubDate"`
	Date        []element `xml:"http://purl.org/dc/elements/1.1/ date"`
}

// element keeps the namespace so that extension elements sharing a local
// name (atom:link, media:title) do not shadow the RSS ones.
type element struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// text returns the first non-empty value, preferring elements outside any
// namespace.
func text(els []element) string {
	for _, e := range els {
		if e.XMLName.Space == "" {
			if v := strings.TrimSpace(e.Value); v != "" {
				return v
			}
		}
	}
	for _, e := range els {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

// Parse decodes an RSS 2.0 document. Non UTF-8 documents are converted
// according to their XML declaration.
func Parse(body []byte) (*Feed, error) {
	d := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	d.CharsetReader = charset.NewReaderLabel
	d.Entity = xml.HTMLEntity

	var doc rssDocument
	if err := d.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Channel == nil {
		return nil, ErrNoChannel
	}

	ch := doc.Channel
	feed := &Feed{
		Title:       text(ch.Title),
		Link:        text(ch.Link),
		Description: text(ch.Description),
		Items:       make([]Item, 0, len(ch.Items)),
	}
	if ts, ok := ParseDate(text(ch.PubDate)); ok {
		feed.Published = ts
	} else if ts, ok := ParseDate(text(ch.LastBuildDate)); ok {
		feed.Published = ts
	}

	for _, it := range ch.Items {
		item := Item{
			Title:       text(it.Title),
			Link:        text(it.Link),
			Description: text(it.Description),
			Author:      text(it.Author),
			GUID:        text(it.GUID),
		}
		if item.Author == "" {
			item.Author = text(it.Creator)
		}
		if ts, ok := ParseDate(text(it.PubDate)); ok {
			item.Published = ts
		} else if ts, ok := ParseDate(text(it.Date)); ok {
			item.Published = ts
		}
		feed.Items = append(feed.Items, item)
	}

	return feed, nil
}

// Marshal renders feed as compact JSON without HTML escaping.
func Marshal(feed *Feed) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(feed); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// RSSToJSON is the Func used by the proxy: RSS 2.0 in, JSON out.
func RSSToJSON(body []byte) ([]byte, bool) {
	feed, err := Parse(body)
	if err != nil {
		return nil, false
	}
	out, err := Marshal(feed)
	if err != nil {
		return nil, false
	}
	return out, true
}
