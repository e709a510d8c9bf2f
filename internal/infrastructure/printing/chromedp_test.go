package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/monartisan/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.Equal(t, DefaultMargins(), r.config.Margins)
	assert.NotNil(t, r.allocCtx)
}

func TestConfigFromPDF(t *testing.T) {
	cfg := ConfigFromPDF(config.PDFConfig{
		RemoteURL: "ws://chrome:9222",
		Timeout:   10 * time.Second,
		NoSandbox: true,
	}, zaptest.NewLogger(t))

	assert.Equal(t, "ws://chrome:9222", cfg.RemoteURL)
	assert.Equal(t, 10*time.Second, cfg.DefaultTimeout)
	assert.True(t, cfg.NoSandbox)

	r, err := NewChromedpRenderer(cfg)
	require.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestBuildPrintParams_A4(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{Margins: DefaultMargins()}}

	params := r.buildPrintParams()

	assert.InDelta(t, mmToInches(210), params.PaperWidth, 0.001)
	assert.InDelta(t, mmToInches(297), params.PaperHeight, 0.001)
	assert.InDelta(t, mmToInches(15), params.MarginTop, 0.001)
	assert.InDelta(t, mmToInches(18), params.MarginBottom, 0.001)
	assert.True(t, params.PrintBackground)
	assert.True(t, params.DisplayHeaderFooter)
	assert.Contains(t, params.FooterTemplate, "pageNumber")
	assert.False(t, params.Landscape)
}

func TestBuildCompleteHTML(t *testing.T) {
	t.Run("wraps fragments", func(t *testing.T) {
		out := buildCompleteHTML("<p>Bonjour</p>", "devis <1>.pdf")
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "<title>devis &lt;1&gt;.pdf</title>")
		assert.Contains(t, out, "<body><p>Bonjour</p></body>")
	})

	t.Run("keeps full documents", func(t *testing.T) {
		doc := "<!DOCTYPE html><html><body>x</body></html>"
		assert.Equal(t, doc, buildCompleteHTML(doc, "ignored"))
	})
}

func TestRenderPDF_EmptyHTML(t *testing.T) {
	r, err := NewChromedpRenderer(&ChromedpConfig{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.RenderPDF(context.Background(), "   ", "empty")
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestRenderError(t *testing.T) {
	cause := errors.New("boom")
	err := NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", cause)
	assert.Equal(t, "chromedp execution failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "no cause", NewRenderError(ErrCodeRenderFailed, "no cause", nil).Error())
}

func TestRenderPDF_Chrome(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping headless Chrome rendering in short mode")
	}
	r, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true, DefaultTimeout: 20 * time.Second})
	require.NoError(t, err)
	defer r.Close()

	engine, err := NewTemplateEngine()
	require.NoError(t, err)
	view := sampleView("invoice")
	html, err := engine.RenderHTML("invoice", view)
	require.NoError(t, err)

	pdf, err := r.RenderPDF(context.Background(), html, "facture.pdf")
	if err != nil {
		var renderErr *RenderError
		if errors.As(err, &renderErr) && renderErr.Code == ErrCodeRenderFailed {
			t.Skipf("Chrome not available: %v", err)
		}
		require.NoError(t, err)
	}
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
