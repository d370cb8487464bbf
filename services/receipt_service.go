package services

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

//go:embed templates/receipt.html
var receiptTemplate string

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// PDFRenderer turns an HTML document into PDF bytes.
type PDFRenderer func(ctx context.Context, html string) ([]byte, error)

// FileUploader stores a file and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, r io.Reader, publicID string) (string, error)
}

type ReceiptService struct {
	appName  string
	render   PDFRenderer
	uploader FileUploader
	now      func() time.Time
}

func NewReceiptService(appName string, render PDFRenderer, up FileUploader) *ReceiptService {
	return &ReceiptService{appName: appName, render: render, uploader: up, now: time.Now}
}

type receiptData struct {
	AppName       string
	ReceiptNumber string
	IssuedAt      string
	MenteeName    string
	MenteeEmail   string
	MentorName    string
	Topic         string
	StartTime     string
	OrderID       string
	PaymentID     string
	Amount        string
}

func (s *ReceiptService) Issue(ctx context.Context, p *models.SessionPayment, sess *models.Session) (string, error) {
	htmlData, err := s.renderHTML(p, sess)
	if err != nil {
		return "", fmt.Errorf("render receipt html: %w", err)
	}

	pdf, err := s.render(ctx, htmlData)
	if err != nil {
		return "", fmt.Errorf("render receipt pdf: %w", err)
	}

	url, err := s.uploader.Upload(ctx, bytes.NewReader(pdf), fmt.Sprintf("receipts/%s", p.ID))
	if err != nil {
		return "", fmt.Errorf("upload receipt: %w", err)
	}
	log.Printf("✅ Generated receipt for payment %s.", p.ID)
	return url, nil
}

func (s *ReceiptService) renderHTML(p *models.SessionPayment, sess *models.Session) (string, error) {
	paymentID := ""
	if p.GatewayPaymentID != nil {
		paymentID = *p.GatewayPaymentID
	}
	issued := s.now()
	if p.PaidAt != nil {
		issued = *p.PaidAt
	}

	data := receiptData{
		AppName:       s.appName,
		ReceiptNumber: p.ID.String()[:8],
		IssuedAt:      issued.UTC().Format("January 2, 2006"),
		MenteeName:    sess.Mentee.FullName,
		MenteeEmail:   sess.Mentee.Email,
		MentorName:    sess.Mentor.FullName,
		Topic:         sess.Topic,
		StartTime:     sess.StartTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
		OrderID:       p.GatewayOrderID,
		PaymentID:     paymentID,
		Amount:        notifications.FormatAmount(p.Amount, p.Currency),
	}

	var rendered bytes.Buffer
	if err := receiptTmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

// ChromePDF prints HTML with a headless Chrome.
func ChromePDF(ctx context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}
