package image_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/image"
	"github.com/goliatone/go-formdoc/pkg/schema"
	"github.com/goliatone/go-formdoc/pkg/testsupport"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

type stubCapturer struct {
	page []byte
	err  error
}

func (s *stubCapturer) Capture(_ context.Context, document []byte) ([]byte, error) {
	s.page = document
	if s.err != nil {
		return nil, s.err
	}
	return append(append([]byte(nil), pngMagic...), "data"...), nil
}

func sampleDocument(t *testing.T) render.Document {
	t.Helper()
	doc, err := render.NewDocument(schema.MustDefault().MustGet("B"), testsupport.SampleRecords(t)["B"])
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestRenderer_CapturesHTMLPage(t *testing.T) {
	capturer := &stubCapturer{}
	renderer, err := image.New(image.WithCapturer(capturer))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(testsupport.Context(), sampleDocument(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, pngMagic) {
		t.Fatalf("output is not the captured png")
	}
	if !strings.Contains(string(capturer.page), "DF-001") {
		t.Fatalf("captured page does not carry the form badge")
	}
	if renderer.ContentType() != "image/png" || render.Extension(renderer) != "png" {
		t.Fatalf("unexpected content type %s", renderer.ContentType())
	}
	if err := renderer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRenderer_CaptureFailure(t *testing.T) {
	cause := errors.New("chrome not found")
	renderer, err := image.New(image.WithCapturer(&stubCapturer{err: cause}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := renderer.Render(testsupport.Context(), sampleDocument(t), render.RenderOptions{}); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped capture error, got %v", err)
	}
}

func TestNewRodCapturer_Defaults(t *testing.T) {
	capturer := image.NewRodCapturer(image.ChromeConfig{}, nil)
	if err := capturer.Close(); err != nil {
		t.Fatalf("closing an unstarted capturer: %v", err)
	}
}
