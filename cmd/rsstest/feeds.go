package main

import (
	"time"

	"github.com/gorilla/feeds"
)

// BrokenRSS is served by /broken: a document cut off inside an item.
const BrokenRSS = `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0">
  <channel>
    <title>title text</title>
    <link>https://www.google.ru</link>
    <description>description text</description>
    <managingEditor>alexey@gmail.com (Alexey K)</managingEditor>
    <pubDate>Tue, 09 Feb 2016 21:09:09 +0300</pubDate>
    <item>`

func author() *feeds.Author {
	return &feeds.Author{Name: "Alexey K", Email: "alexey@gmail.com"}
}

// fullFeed has a date on the channel and every item.
func fullFeed(now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       "title text",
		Link:        &feeds.Link{Href: "https://www.google.ru"},
		Description: "description text",
		Author:      author(),
		Created:     now,
	}
	feed.Items = []*feeds.Item{
		{
			Title:       "Stored procedures in Redis",
			Link:        &feeds.Link{Href: "https://habrahabr.ru/post/270251"},
			Description: "Create and manage lua stored procedures in Redis NoSql database",
			Author:      author(),
			Created:     now,
		},
		{
			Title:   "Amazon Web Services is now part of Github Students Development Pack",
			Link:    &feeds.Link{Href: "https://habrahabr.ru/post/270123"},
			Author:  author(),
			Created: now,
		},
	}
	return feed
}

// missingFeed leaves every date out.
func missingFeed() *feeds.Feed {
	feed := &feeds.Feed{
		Title:       "RSS test server",
		Link:        &feeds.Link{Href: "http://localhost/missing"},
		Description: "description text",
		Author:      author(),
	}
	feed.Items = []*feeds.Item{
		{
			Title:       "Stored procedures in Redis",
			Link:        &feeds.Link{Href: "https://habrahabr.ru/post/270251"},
			Description: "Create and manage lua stored procedures in Redis NoSql database",
			Author:      author(),
		},
		{
			Title:  "Amazon Web Services is now part of Github Students Development Pack",
			Link:   &feeds.Link{Href: "https://habrahabr.ru/post/270123"},
			Author: author(),
		},
	}
	return feed
}
