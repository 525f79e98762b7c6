package dep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	brevo "github.com/getbrevo/brevo-go/lib"

	"phishtrack/config"
)

var (
	sendEmailUrl = "https://api.brevo.com/v3/smtp/email"
)

type brevoResp struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Sender struct {
	Email string
	Name  string
}

type Receiver struct {
	Email string
	Name  string
}

type SendSmtpEmail struct {
	From        *Sender
	To          []*Receiver
	Subject     string
	HtmlContent string
}

type EmailService interface {
	SendEmail(ctx context.Context, sendSmtpEmail *SendSmtpEmail) error
	Close(ctx context.Context) error
}

type emailService struct {
	apiKey string
}

func NewEmailService(_ context.Context, cfg config.Brevo) (EmailService, error) {
	return &emailService{
		apiKey: cfg.APIKey,
	}, nil
}

func (s *emailService) SendEmail(ctx context.Context, sendSmtpEmail *SendSmtpEmail) error {
	for _, r := range sendSmtpEmail.To {
		body := brevo.SendSmtpEmail{
			Sender: &brevo.SendSmtpEmailSender{
				Email: sendSmtpEmail.From.Email,
				Name:  sendSmtpEmail.From.Name,
			},
			To: []brevo.SendSmtpEmailTo{
				{
					Email: r.Email,
					Name:  r.Name,
				},
			},
			Subject:     sendSmtpEmail.Subject,
			HtmlContent: sendSmtpEmail.HtmlContent,
		}

		op := func() error {
			return s.postHttpRequest(ctx, sendEmailUrl, body)
		}

		bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
		if err := backoff.Retry(op, bo); err != nil {
			return err
		}
	}

	return nil
}

func (s *emailService) Close(_ context.Context) error {
	return nil
}

func (s *emailService) postHttpRequest(_ context.Context, url string, body interface{}) error {
	js, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(js))
	if err != nil {
		return err
	}

	req.Header.Add("accept", "application/json")
	req.Header.Add("content-type", "application/json")
	req.Header.Add("api-key", s.apiKey)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = res.Body.Close()
	}()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	brevoResp := new(brevoResp)
	if err := json.Unmarshal(b, brevoResp); err != nil {
		return err
	}

	if brevoResp.Message != "" {
		return fmt.Errorf("encounter brevo error: %s, code: %s", brevoResp.Message, brevoResp.Code)
	}

	return nil
}
