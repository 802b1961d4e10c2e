package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// TitleProperty is the lead database column holding the company name.
const TitleProperty = "Name"

// QueryAll fetches every page of a database, following cursors until the
// API reports no more results.
func QueryAll(ctx context.Context, c Client, dbID string, base *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "notion: query all cancelled")
		}
		req := &notionapi.DatabaseQueryRequest{StartCursor: cursor}
		if base != nil {
			req.Filter = base.Filter
			req.Sorts = base.Sorts
			req.PageSize = base.PageSize
		}

		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}
		all = append(all, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}

// ExistingCompanies returns the lowercased company names already present in
// the lead database.
func ExistingCompanies(ctx context.Context, c Client, dbID string) (map[string]struct{}, error) {
	pages, err := QueryAll(ctx, c, dbID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "notion: list existing companies")
	}

	seen := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		if name := companyKey(pageTitle(p)); name != "" {
			seen[name] = struct{}{}
		}
	}
	return seen, nil
}

func pageTitle(p notionapi.Page) string {
	var rt []notionapi.RichText
	switch tp := p.Properties[TitleProperty].(type) {
	case *notionapi.TitleProperty:
		rt = tp.Title
	case notionapi.TitleProperty:
		rt = tp.Title
	default:
		return ""
	}

	var b strings.Builder
	for _, r := range rt {
		if r.PlainText != "" {
			b.WriteString(r.PlainText)
		} else if r.Text != nil {
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

func companyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
