// Package mail sends transactional HTML email through SES v2 as raw MIME.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is one outbound email. Body is an HTML fragment placed inside a
// fixed document; ImagePath is attached inline when it names a file.
type Message struct {
	To        string
	Subject   string
	Body      string
	CC        string
	ImagePath string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SESAPI is the subset of *sesv2.Client in use.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESSender struct {
	client SESAPI
	from   string
	prod   bool
	log    *zap.Logger
}

func NewSESSender(client SESAPI, from string, prod bool, log *zap.Logger) *SESSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &SESSender{client: client, from: from, prod: prod, log: log}
}

func (s *SESSender) Send(ctx context.Context, m Message) error {
	raw, err := s.compose(m)
	if err != nil {
		return fmt.Errorf("compose mail: %w", err)
	}
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Content: &types.EmailContent{Raw: &types.RawMessage{Data: raw}},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	s.log.Info("mail sent", zap.String("component", "mail"), zap.String("messageId", aws.ToString(out.MessageId)))
	return nil
}

func (s *SESSender) subject(subj string) string {
	if s.prod {
		return subj
	}
	return "[Dev] " + subj
}

const htmlDocument = `<html lang="ja">
    <head>
        <meta http-equiv="Content-Language" content="ja">
        <meta charset="UTF-8">
        <title>%s</title>
    </head>
    <body>
        <br/>
        %s
        <br/>
    </body>
</html>
`

// compose renders m as the raw RFC 5322 bytes SES expects. Parts are
// base64 encoded; a missing image is logged and left out.
func (s *SESSender) compose(m Message) ([]byte, error) {
	msg := gomail.NewMsg(gomail.WithEncoding(gomail.EncodingB64), gomail.WithCharset(gomail.CharsetUTF8))
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if cc := strings.TrimSpace(m.CC); cc != "" {
		if err := msg.Cc(cc); err != nil {
			return nil, fmt.Errorf("cc: %w", err)
		}
	}

	subject := s.subject(m.Subject)
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, fmt.Sprintf(htmlDocument, html.EscapeString(subject), m.Body))

	if m.ImagePath != "" {
		if _, err := os.Stat(m.ImagePath); err != nil {
			s.log.Warn("mail image skipped", zap.String("component", "mail"), zap.String("path", m.ImagePath), zap.Error(err))
		} else {
			opts := []gomail.FileOption{gomail.WithFileName(filepath.Base(m.ImagePath))}
			if ctype := mime.TypeByExtension(filepath.Ext(m.ImagePath)); ctype != "" {
				opts = append(opts, gomail.WithFileContentType(gomail.ContentType(ctype)))
			}
			msg.EmbedFile(m.ImagePath, opts...)
		}
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
