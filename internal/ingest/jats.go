// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// Parse extracts document fields from one XML file. A root <article> element
// selects JATS journal-article handling (R2.1-R2.4); any other root falls
// back to generic extraction (R2.5).
func Parse(data []byte) (types.Document, error) {
	d := newDecoder(data)
	root, err := rootElement(d)
	if err != nil {
		return types.Document{}, err
	}
	if strings.EqualFold(root.Name.Local, "article") {
		return parseJATS(d, root)
	}
	return parseGeneric(d, root)
}

// newDecoder builds a decoder tolerant of published JATS: articles carry DTD
// entity references the decoder cannot resolve, so strict mode is off and
// common HTML entities are mapped.
func newDecoder(data []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	return d
}

func rootElement(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("reading XML: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// JATS structures, limited to the fields the scanner keeps.
type jatsArticle struct {
	Front jatsFront `xml:"front"`
	Body  flatText  `xml:"body"`
}

type jatsFront struct {
	Meta jatsArticleMeta `xml:"article-meta"`
}

type jatsArticleMeta struct {
	Title     flatText           `xml:"title-group>article-title"`
	Groups    []jatsContribGroup `xml:"contrib-group"`
	Abstracts []flatText         `xml:"abstract"`
	PubDates  []jatsPubDate      `xml:"pub-date"`
}

type jatsContribGroup struct {
	Contribs []jatsContrib `xml:"contrib"`
}

type jatsContrib struct {
	Name jatsName `xml:"name"`
}

type jatsName struct {
	Surname    string `xml:"surname"`
	GivenNames string `xml:"given-names"`
}

type jatsPubDate struct {
	Type  string `xml:"pub-type,attr"`
	Year  string `xml:"year"`
	Month string `xml:"month"`
	Day   string `xml:"day"`
}

// parseJATS reads a journal article: title from the title-group, authors
// from contrib-group names, the first non-empty abstract, and body text
// (R2.2). Contributors without a surname are dropped.
func parseJATS(d *xml.Decoder, root xml.StartElement) (types.Document, error) {
	var a jatsArticle
	if err := d.DecodeElement(&a, &root); err != nil {
		return types.Document{}, fmt.Errorf("parsing JATS article: %w", err)
	}

	doc := types.Document{
		Format:   types.FormatJATS,
		Title:    string(a.Front.Meta.Title),
		FullText: string(a.Body),
	}
	for _, abs := range a.Front.Meta.Abstracts {
		if abs != "" {
			doc.Abstract = string(abs)
			break
		}
	}
	for _, g := range a.Front.Meta.Groups {
		for _, c := range g.Contribs {
			surname := strings.TrimSpace(c.Name.Surname)
			if surname == "" {
				continue
			}
			author := surname
			if given := strings.TrimSpace(c.Name.GivenNames); given != "" {
				author = given + " " + surname
			}
			doc.Authors = append(doc.Authors, author)
		}
	}
	doc.Published = pubDate(a.Front.Meta.PubDates)
	return doc, nil
}

// pubDate picks the first pub-date carrying a parseable year. Missing or
// out-of-range month and day default to 1 (R2.4).
func pubDate(dates []jatsPubDate) time.Time {
	for _, pd := range dates {
		year, err := strconv.Atoi(strings.TrimSpace(pd.Year))
		if err != nil || year <= 0 {
			continue
		}
		month := atoiDefault(pd.Month, 1)
		if month < 1 || month > 12 {
			month = 1
		}
		day := atoiDefault(pd.Day, 1)
		if day < 1 || day > 31 {
			day = 1
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// titleNames are the child elements tried for a generic document title,
// in preference order.
var titleNames = []string{"title", "name", "heading"}

// parseGeneric handles non-JATS XML: the title comes from the first direct
// child named title, name, or heading, and the full text is all character
// data under the root (R2.5).
func parseGeneric(d *xml.Decoder, root xml.StartElement) (types.Document, error) {
	doc := types.Document{Format: types.FormatGeneric}
	titles := make(map[string]string)
	var paras []string
	var cur strings.Builder
	flush := func() {
		if p := collapseSpace(cur.String()); p != "" {
			paras = append(paras, p)
		}
		cur.Reset()
	}

	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return types.Document{}, fmt.Errorf("parsing XML: %w", err)
		}
		switch v := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(v.Name.Local)
			if depth == 1 && titles[name] == "" && slices.Contains(titleNames, name) {
				var t flatText
				if err := d.DecodeElement(&t, &v); err != nil {
					return types.Document{}, fmt.Errorf("parsing XML: %w", err)
				}
				titles[name] = string(t)
				flush()
				if t != "" {
					paras = append(paras, string(t))
				}
				continue
			}
			depth++
		case xml.EndElement:
			depth--
			if name := strings.ToLower(v.Name.Local); name == "p" || name == "title" {
				flush()
			}
		case xml.CharData:
			if cur.Len() > 0 {
				cur.WriteByte(' ')
			}
			cur.Write(v)
		}
	}
	flush()

	doc.FullText = strings.Join(paras, "\n\n")
	for _, name := range titleNames {
		if titles[name] != "" {
			doc.Title = titles[name]
			break
		}
	}
	return doc, nil
}

// flatText is the character data beneath one XML element with markup
// stripped. Paragraph and section-title boundaries become blank lines so
// sentence and paragraph statistics survive the flattening.
type flatText string

func (t *flatText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var paras []string
	var cur strings.Builder
	flush := func() {
		if p := collapseSpace(cur.String()); p != "" {
			paras = append(paras, p)
		}
		cur.Reset()
	}

	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if name := strings.ToLower(v.Name.Local); name == "p" || name == "title" {
				flush()
			}
		case xml.CharData:
			if cur.Len() > 0 {
				cur.WriteByte(' ')
			}
			cur.Write(v)
		}
	}
	flush()

	*t = flatText(strings.Join(paras, "\n\n"))
	return nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
