// Package printing turns quotes, invoices and supplier orders into PDF files.
//
// TemplateEngine renders the embedded html/template layouts with French
// number and date formatting. ChromedpRenderer prints the resulting page to
// an A4 PDF through headless Chrome, either launched locally or reached
// through a remote devtools endpoint.
//
// Example usage:
//
//	engine, err := NewTemplateEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "ws://chrome:9222"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	html, _ := engine.RenderHTML(document.KindInvoice, view)
//	pdf, err := renderer.RenderPDF(ctx, html, "facture-FAC-2026-00042.pdf")
package printing
