package notion

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/lead"
)

// StatusNotContacted is the CRM status given to freshly imported prospects.
const StatusNotContacted = "Non contacté"

// pushConcurrency bounds in-flight page creations. The client limiter still
// caps the request rate.
const pushConcurrency = 3

// Contact is one prospect shaped for the CRM.
type Contact struct {
	Company    string
	FirstName  string
	LastName   string
	Email      string
	Industry   string
	Website    string
	Phone      string
	Address    string
	Commentary string
}

// SplitManager extracts the first and last name of the first manager in a
// "NAME Given (Title) | NAME2 (Title2)" list. A single word becomes the
// first name.
func SplitManager(managers string) (first, last string) {
	person, _, _ := strings.Cut(managers, "|")
	name, _, _ := strings.Cut(person, "(")
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// ContactFromLead maps a normalized lead to a CRM contact. Placeholders are
// not carried over. The website falls back to the registry link, and a site
// phone other than the chosen one goes into the commentary.
func ContactFromLead(d lead.Display) Contact {
	c := Contact{
		Email:    d.Email,
		Industry: d.Activity,
	}
	if d.HasName {
		c.Company = d.Name
	}
	if d.HasManager {
		c.FirstName, c.LastName = SplitManager(d.Manager)
	}
	if d.HasPhone {
		c.Phone = d.Phone
	}

	registry, hasRegistry := lead.RegistryLink(d)
	if site, ok := lead.WebsiteLink(d); ok {
		c.Website = site
	} else {
		c.Website = registry
	}

	var addr []string
	if d.HasAddress {
		addr = append(addr, d.Address)
	}
	for _, p := range []string{d.PostalCode, d.City} {
		if p != "" {
			addr = append(addr, p)
		}
	}
	c.Address = strings.Join(addr, ", ")

	var notes []string
	if d.HasSIRET {
		notes = append(notes, "SIRET: "+d.SIRET)
	}
	if hasRegistry && registry != c.Website {
		notes = append(notes, "Lien Pappers: "+registry)
	}
	if d.SitePhone != "" && d.SitePhone != c.Phone {
		notes = append(notes, "Tél Sec: "+d.SitePhone)
	}
	c.Commentary = strings.Join(notes, "\n")
	return c
}

// Properties renders the contact as Notion page properties. Empty values are
// omitted.
func (c Contact) Properties() notionapi.Properties {
	props := notionapi.Properties{
		TitleProperty: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(c.Company),
		},
		"Statut": notionapi.StatusProperty{
			Type:   notionapi.PropertyTypeStatus,
			Status: notionapi.Status{Name: StatusNotContacted},
		},
	}

	text := map[string]string{
		"First Name":      c.FirstName,
		"Last Name":       c.LastName,
		"Industry":        c.Industry,
		"origine_contact": c.Industry,
		"Company Address": c.Address,
		"Commentaire":     c.Commentary,
	}
	for k, v := range text {
		if v != "" {
			props[k] = notionapi.RichTextProperty{Type: notionapi.PropertyTypeRichText, RichText: richText(v)}
		}
	}
	if c.Email != "" {
		props["Email"] = notionapi.EmailProperty{Type: notionapi.PropertyTypeEmail, Email: c.Email}
	}
	if c.Website != "" {
		props["Website"] = notionapi.URLProperty{Type: notionapi.PropertyTypeURL, URL: c.Website}
	}
	if c.Phone != "" {
		props["Phone"] = notionapi.PhoneNumberProperty{Type: notionapi.PropertyTypePhoneNumber, PhoneNumber: c.Phone}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}}
}

// PushResult counts the outcome of a push.
type PushResult struct {
	Created int
	Skipped int
}

// PushLeads creates one page per lead whose company is not already in the
// database. Names are compared case-insensitively, both against existing
// pages and within leads. Leads without a company name are skipped.
func PushLeads(ctx context.Context, c Client, dbID string, leads []lead.Display) (PushResult, error) {
	var res PushResult

	seen, err := ExistingCompanies(ctx, c, dbID)
	if err != nil {
		return res, err
	}

	var pending []Contact
	for _, d := range leads {
		contact := ContactFromLead(d)
		key := companyKey(contact.Company)
		if key == "" {
			res.Skipped++
			continue
		}
		if _, dup := seen[key]; dup {
			zap.L().Debug("notion: skipping duplicate company", zap.String("company", contact.Company))
			res.Skipped++
			continue
		}
		seen[key] = struct{}{}
		pending = append(pending, contact)
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pushConcurrency)
	for _, contact := range pending {
		g.Go(func() error {
			req := &notionapi.PageCreateRequest{
				Parent: notionapi.Parent{
					Type:       notionapi.ParentTypeDatabaseID,
					DatabaseID: notionapi.DatabaseID(dbID),
				},
				Properties: contact.Properties(),
			}
			if _, err := c.CreatePage(gctx, req); err != nil {
				return eris.Wrapf(err, "notion: create page for %q", contact.Company)
			}
			created.Add(1)
			return nil
		})
	}
	err = g.Wait()
	res.Created = int(created.Load())
	return res, err
}
