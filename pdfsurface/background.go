package pdfsurface

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// Background selects a page of an existing PDF, such as a letterhead, to be
// stretched over the whole chart page before anything else is drawn.
type Background struct {
	Path   string        // PDF file; ignored when Reader is set
	Reader io.ReadSeeker // PDF content
	Page   int           // 1-based; 0 selects the first page
}

// drawBackground imports the background page as a template and draws it at
// full page size. The importer panics on malformed input, which is reported
// as an error.
func (s *Surface) drawBackground() (err error) {
	bg := s.background
	page := bg.Page
	if page < 1 {
		page = 1
	}
	name := bg.Path
	if bg.Reader != nil {
		name = "stream"
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfsurface: background %s: %v", name, r)
		}
	}()

	imp := gofpdi.NewImporter()
	var tpl int
	if bg.Reader != nil {
		rs := bg.Reader
		tpl = imp.ImportPageFromStream(s.pdf, &rs, page, "/MediaBox")
	} else {
		if bg.Path == "" {
			return fmt.Errorf("pdfsurface: background has neither a path nor a reader")
		}
		tpl = imp.ImportPage(s.pdf, bg.Path, page, "/MediaBox")
	}
	imp.UseImportedTemplate(s.pdf, tpl, 0, 0, s.page.Width, s.page.Height)
	if s.pdf.Err() {
		return fmt.Errorf("pdfsurface: background %s: %w", name, s.pdf.Error())
	}
	s.log.Debug("background imported", "source", name, "page", page)
	return nil
}
