package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pdf-webhook/internal/domain"
	"pdf-webhook/internal/engine"
	"pdf-webhook/internal/pdftest"
	apperrors "pdf-webhook/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(e domain.PDFEngine) *PDFService {
	logger := NewMockLogger()
	return NewPDFService(NewDocumentGate(e, logger), NewPDFExtractor(logger), logger)
}

func TestPDFService_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		engine     *pdftest.FakeEngine
		password   string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "malformed",
			engine:     &pdftest.FakeEngine{Err: errors.New("not a pdf")},
			wantStatus: http.StatusBadRequest,
			wantMsg:    MsgInvalidPDF,
		},
		{
			name:       "password required",
			engine:     &pdftest.FakeEngine{Doc: &pdftest.FakeDocument{Password: "pw", Pages: []pdftest.FakePage{{}}}},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    MsgPasswordRequired,
		},
		{
			name:       "password incorrect",
			engine:     &pdftest.FakeEngine{Doc: &pdftest.FakeDocument{Password: "pw", Pages: []pdftest.FakePage{{}}}},
			password:   "nope",
			wantStatus: http.StatusUnauthorized,
			wantMsg:    MsgPasswordIncorrect,
		},
		{
			name:       "no pages",
			engine:     &pdftest.FakeEngine{Doc: &pdftest.FakeDocument{}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    MsgNoPages,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.engine)
			ctx := context.Background()

			_, textErr := svc.ExtractText(ctx, submission(tt.password))
			_, imagesErr := svc.ExtractImages(ctx, submission(tt.password))
			_, infoErr := svc.DocumentInfo(ctx, submission(tt.password))

			for _, err := range []error{textErr, imagesErr, infoErr} {
				require.Error(t, err)
				assert.Equal(t, tt.wantStatus, apperrors.GetStatusCode(err))
				assert.Equal(t, tt.wantMsg, apperrors.GetMessage(err))
			}
			assert.True(t, tt.engine.AllClosed())
		})
	}
}

func TestPDFService_ClosesAcceptedDocuments(t *testing.T) {
	fake := &pdftest.FakeEngine{Doc: &pdftest.FakeDocument{
		Password: "pw",
		Pages:    []pdftest.FakePage{{Text: "a", Images: []pdftest.FakeImage{{Components: 3}}}},
	}}
	svc := newTestService(fake)
	ctx := context.Background()

	text, err := svc.ExtractText(ctx, submission("pw"))
	require.NoError(t, err)
	assert.Equal(t, "a", text.FullText)

	images, err := svc.ExtractImages(ctx, submission("pw"))
	require.NoError(t, err)
	assert.Equal(t, 1, images.ImagesFound)

	info, err := svc.DocumentInfo(ctx, submission("pw"))
	require.NoError(t, err)
	assert.Equal(t, 1, info.Info.TotalImages)

	require.Len(t, fake.Opened, 3)
	assert.True(t, fake.AllClosed())
}

func TestPDFService_OperationFailure(t *testing.T) {
	fake := &pdftest.FakeEngine{Doc: &pdftest.FakeDocument{
		Pages: []pdftest.FakePage{{TextErr: errors.New("broken font")}},
	}}
	svc := newTestService(fake)

	_, err := svc.ExtractText(context.Background(), submission(""))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.GetStatusCode(err))
	assert.Contains(t, apperrors.GetMessage(err), "Error processing PDF: ")
	assert.Contains(t, apperrors.GetMessage(err), "broken font")
	assert.True(t, fake.AllClosed())
}

func TestPDFService_OperationPanic(t *testing.T) {
	fake := &pdftest.FakeEngine{Doc: &pdftest.FakeDocument{
		Pages: []pdftest.FakePage{{Panic: true}},
	}}
	svc := newTestService(fake)

	_, err := svc.ExtractText(context.Background(), submission(""))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.GetStatusCode(err))
	assert.Equal(t, "Error processing PDF: fake decoder crashed", apperrors.GetMessage(err))
	assert.True(t, fake.AllClosed())
}

func TestPDFService_RealDocuments(t *testing.T) {
	svc := newTestService(engine.New(engine.TextEngineMuPDF))
	ctx := context.Background()

	plain := pdftest.Build(pdftest.Document{
		Title: "Manual",
		Pages: []pdftest.Page{
			{Text: "Hello"},
			{Text: "World", Images: []pdftest.Image{{Width: 2, Height: 2, ColorSpace: "DeviceRGB"}}},
		},
	})

	text, err := svc.ExtractText(ctx, &domain.RawSubmission{Data: plain, Source: domain.SourceMultipart})
	require.NoError(t, err)
	assert.Equal(t, 2, text.Pages)
	assert.Equal(t, "Hello\n\nWorld", text.FullText)

	info, err := svc.DocumentInfo(ctx, &domain.RawSubmission{Data: plain, Source: domain.SourceMultipart})
	require.NoError(t, err)
	assert.Equal(t, "Manual", info.Info.Title)
	assert.Equal(t, 1, info.Info.TotalImages)

	locked, err := pdftest.Encrypt(plain, "secret")
	require.NoError(t, err)

	_, err = svc.ExtractText(ctx, &domain.RawSubmission{Data: locked, Source: domain.SourceBase64JSON})
	assert.Equal(t, MsgPasswordRequired, apperrors.GetMessage(err))

	_, err = svc.ExtractText(ctx, &domain.RawSubmission{Data: locked, Password: "wrong", Source: domain.SourceBase64JSON})
	assert.Equal(t, MsgPasswordIncorrect, apperrors.GetMessage(err))

	images, err := svc.ExtractImages(ctx, &domain.RawSubmission{Data: locked, Password: "secret", Source: domain.SourceBase64JSON})
	require.NoError(t, err)
	require.Equal(t, 1, images.ImagesFound)
	assert.Equal(t, 2, images.Images[0].Page)
	assert.Equal(t, 0, images.Images[0].ImageIndex)
}
