// Package transform converts fetched bodies before they are relayed.
//
// A Func takes the upstream body and returns the new body with ok=true, or
// ok=false when the body is not something it understands. RSSToJSON decodes
// an RSS 2.0 channel and renders it as
//
//	{"title": "...", "link": "...", "description": "...",
//	 "items": [{"title": "...", "link": "...", "description": "...",
//	            "author": "...", "guid": "...", "published": 1455041349}]}
//
// Item dates are RFC 822 strings in the feed and Unix seconds in the JSON;
// "published" is omitted when the date is missing or unreadable. Documents
// declaring a legacy encoding (windows-1251, koi8-r, iso-8859-x) are decoded
// with golang.org/x/net/html/charset.
package transform
