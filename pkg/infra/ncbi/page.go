package ncbi

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
)

// Labels looked up on GEO sample pages
const (
	labelStrategy  = "library strategy"
	labelOrganism  = "organism"
	labelRelations = "relations"
	labelSRA       = "sra"
	seriesLinkPath = "/geo/query"
)

func newDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse HTML", goerr.T(types.ErrTagParse))
	}
	return doc, nil
}

// ParseSeries extracts the sample accessions linked from a GEO series page.
// Only GEO query links whose text is an accession count.
func ParseSeries(r io.Reader) ([]string, error) {
	doc, err := newDocument(r)
	if err != nil {
		return nil, err
	}

	var samples []string
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.HasPrefix(href, seriesLinkPath) {
			return
		}
		if text := strings.TrimSpace(s.Text()); model.IsAccession(text) {
			samples = append(samples, text)
		}
	})

	return samples, nil
}

// ParseSample extracts library strategy, organism and SRA relation from a GEO
// sample page. Strategy and organism rows are required; a page without an SRA
// relation yields an empty RelationKey.
func ParseSample(r io.Reader) (*model.SampleRecord, error) {
	doc, err := newDocument(r)
	if err != nil {
		return nil, err
	}

	strategy, err := rowValue(doc.Selection, labelStrategy)
	if err != nil {
		return nil, err
	}
	organism, err := rowValue(doc.Selection, labelOrganism)
	if err != nil {
		return nil, err
	}

	return &model.SampleRecord{
		Strategy:    strategy,
		Organism:    organism,
		RelationKey: relationKey(doc),
	}, nil
}

// ParseRunSearch extracts the run accessions of an SRA search result page
func ParseRunSearch(r io.Reader) ([]string, error) {
	doc, err := newDocument(r)
	if err != nil {
		return nil, err
	}

	body := doc.Find("tbody").First()
	if body.Length() == 0 {
		return nil, goerr.New("no result table in SRA page", goerr.T(types.ErrTagParse))
	}

	var runs []string
	body.Find("a").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); model.IsAccession(text) {
			runs = append(runs, text)
		}
	})

	return runs, nil
}

func labelCells(sel *goquery.Selection, tag, label string) *goquery.Selection {
	return sel.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return model.MatchLabel(s.Text(), label)
	})
}

// rowValue returns the text of the cell next to the label cell in its row
func rowValue(sel *goquery.Selection, label string) (string, error) {
	cell := labelCells(sel, "td", label).First()
	if cell.Length() == 0 {
		return "", goerr.New("label not found in page",
			goerr.V("label", label),
			goerr.T(types.ErrTagParse),
		)
	}

	value := cell.Closest("tr").Find("td").Eq(1)
	if value.Length() == 0 {
		return "", goerr.New("label has no value cell",
			goerr.V("label", label),
			goerr.T(types.ErrTagParse),
		)
	}

	return strings.TrimSpace(value.Text()), nil
}

// relationKey scans the rows following the "Relations" header for the first
// one carrying an SRA cell
func relationKey(doc *goquery.Document) string {
	header := labelCells(doc.Selection, "strong", labelRelations).First()
	if header.Length() == 0 {
		return ""
	}

	var key string
	header.Closest("tr").NextAll().EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if labelCells(row, "td", labelSRA).Length() == 0 {
			return true
		}
		key = strings.TrimSpace(row.Find("td").Eq(1).Text())
		return false
	})

	return key
}
