package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sells-group/prospect-cli/internal/lead"
)

// WriteTable prints leads as aligned columns.
func WriteTable(w io.Writer, leads []lead.Display) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(Headers, "\t"))
	dashes := make([]string, len(Headers))
	for i, h := range Headers {
		dashes[i] = strings.Repeat("-", len([]rune(h)))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, d := range leads {
		cells := Row(d)
		for i, c := range cells {
			if c == "" {
				cells[i] = "-"
			}
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteSummary prints the header statistics block.
func WriteSummary(w io.Writer, s lead.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Prospects:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(tw, "Dirigeants trouvés:\t%d\n", s.ManagersFound)
	_, _ = fmt.Fprintf(tw, "Téléphones:\t%d\n", s.PhonesFound)
	_, _ = fmt.Fprintf(tw, "Emails:\t%d\n", s.EmailsFound)
	_, _ = fmt.Fprintf(tw, "Localités:\t%d\n", s.Localities)
	return tw.Flush()
}
