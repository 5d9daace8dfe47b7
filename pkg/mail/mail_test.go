package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	netmail "net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	raw []byte
	err error
}

func (f *fakeSES) SendEmail(ctx context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.raw = in.Content.Raw.Data
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

type leaf struct {
	header textproto.MIMEHeader
	body   []byte
}

type parsed struct {
	header netmail.Header
	leaves []leaf
}

func parse(t *testing.T, raw []byte) parsed {
	t.Helper()
	msg, err := netmail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	out := parsed{header: msg.Header}
	out.leaves = walk(t, textproto.MIMEHeader(msg.Header), msg.Body)
	return out
}

func address(t *testing.T, h netmail.Header, key string) string {
	t.Helper()
	list, err := h.AddressList(key)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0].Address
}

// walk flattens nested multiparts into their decoded leaf parts.
func walk(t *testing.T, h textproto.MIMEHeader, r io.Reader) []leaf {
	t.Helper()
	mt, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	require.NoError(t, err)

	if !strings.HasPrefix(mt, "multipart/") {
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		if strings.EqualFold(h.Get("Content-Transfer-Encoding"), "base64") {
			b, err = base64.StdEncoding.DecodeString(strings.NewReplacer("\r", "", "\n", "").Replace(string(b)))
			require.NoError(t, err)
		}
		return []leaf{{header: h, body: b}}
	}

	var out []leaf
	mr := multipart.NewReader(r, params["boundary"])
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		out = append(out, walk(t, p.Header, p)...)
	}
	return out
}

func TestSend_DevPrefixAndCc(t *testing.T) {
	ses := &fakeSES{}
	s := NewSESSender(ses, "from@example.com", false, nil)

	err := s.Send(context.Background(), Message{
		To:      "to@example.com",
		CC:      "cc@example.com",
		Subject: "体験授業のお知らせ",
		Body:    "<p>こんにちは</p>",
	})
	require.NoError(t, err)

	p := parse(t, ses.raw)
	subj, err := new(mime.WordDecoder).DecodeHeader(p.header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "[Dev] 体験授業のお知らせ", subj)
	assert.Equal(t, "from@example.com", address(t, p.header, "From"))
	assert.Equal(t, "to@example.com", address(t, p.header, "To"))
	assert.Equal(t, "cc@example.com", address(t, p.header, "Cc"))

	require.Len(t, p.leaves, 1)
	html := string(p.leaves[0].body)
	assert.Contains(t, html, `<html lang="ja">`)
	assert.Contains(t, html, "<p>こんにちは</p>")
}

func TestSend_ProdNoPrefixNoCc(t *testing.T) {
	ses := &fakeSES{}
	s := NewSESSender(ses, "from@example.com", true, nil)

	require.NoError(t, s.Send(context.Background(), Message{To: "to@example.com", Subject: "Reminder", Body: "x"}))

	p := parse(t, ses.raw)
	assert.Equal(t, "Reminder", p.header.Get("Subject"))
	assert.Empty(t, p.header.Get("Cc"))
}

func TestSend_InlineImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "map.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG fake"), 0o600))

	ses := &fakeSES{}
	s := NewSESSender(ses, "from@example.com", true, nil)
	require.NoError(t, s.Send(context.Background(), Message{To: "to@example.com", Subject: "s", Body: "b", ImagePath: img}))

	p := parse(t, ses.raw)
	require.Len(t, p.leaves, 2)
	assert.Contains(t, string(p.leaves[0].body), `<html lang="ja">`)
	assert.Equal(t, "\x89PNG fake", string(p.leaves[1].body))
	assert.Contains(t, p.leaves[1].header.Get("Content-Disposition"), "map.png")
	assert.Contains(t, p.leaves[1].header.Get("Content-Id"), "map.png")
}

func TestSend_MissingImageSkipped(t *testing.T) {
	ses := &fakeSES{}
	s := NewSESSender(ses, "from@example.com", true, nil)
	require.NoError(t, s.Send(context.Background(), Message{To: "to@example.com", Subject: "s", Body: "b", ImagePath: "/nope/missing.png"}))
	assert.Len(t, parse(t, ses.raw).leaves, 1)
}

func TestSend_InvalidAddress(t *testing.T) {
	ses := &fakeSES{}
	s := NewSESSender(ses, "from@example.com", true, nil)
	err := s.Send(context.Background(), Message{To: "not an address", Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Nil(t, ses.raw)
}

func TestSend_ProviderError(t *testing.T) {
	s := NewSESSender(&fakeSES{err: errors.New("throttled")}, "from@example.com", true, nil)
	err := s.Send(context.Background(), Message{To: "to@example.com", Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
