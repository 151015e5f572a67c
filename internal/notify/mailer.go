// Package notify sends the admin notification mail after a submission is
// processed. Delivery is best effort; callers log failures and move on.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/roboco-io/md2wechat/internal/config"
	"github.com/roboco-io/md2wechat/internal/pipeline"
)

// Mailer sends notification mail through a configured SMTP account.
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer creates a mailer; the config must be complete.
func NewMailer(cfg config.SMTPConfig) (*Mailer, error) {
	if !cfg.IsComplete() {
		return nil, errors.New("SMTP config incomplete (host, port, username, password and to_admin are required)")
	}
	return &Mailer{cfg: cfg}, nil
}

// NotifySubmission mails the admin a summary of one processed submission.
func (m *Mailer) NotifySubmission(ctx context.Context, res *pipeline.Result) error {
	subject := fmt.Sprintf("新投稿：%s（%d 篇转换成功）", res.Original, len(res.Converted))
	body := submissionBody(res)
	return m.Send(ctx, subject, body)
}

// Send delivers a single mail to the configured admin address. Port 465
// speaks implicit TLS with a STARTTLS fallback on 587; any other port does
// the reverse.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	msg := m.buildMessage(subject, body)

	primary, fallback := m.transports()
	err := m.deliver(ctx, primary, msg)
	if err == nil {
		return nil
	}

	if fbErr := m.deliver(ctx, fallback, msg); fbErr == nil {
		return nil
	}
	return fmt.Errorf("failed to send mail via %s: %w", primary.addr, err)
}

type transport struct {
	addr     string
	implicit bool // implicit TLS vs STARTTLS
}

func (m *Mailer) transports() (primary, fallback transport) {
	host := m.cfg.Host
	if m.cfg.Port == 465 {
		return transport{net.JoinHostPort(host, "465"), true},
			transport{net.JoinHostPort(host, "587"), false}
	}
	return transport{net.JoinHostPort(host, strconv.Itoa(m.cfg.Port)), false},
		transport{net.JoinHostPort(host, "465"), true}
}

func (m *Mailer) deliver(ctx context.Context, tr transport, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if !tr.implicit {
		return smtp.SendMail(tr.addr, auth, m.cfg.FromAddr(), []string{m.cfg.ToAdmin}, msg)
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", tr.addr)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	tlsConn := tls.Client(conn, &tls.Config{ServerName: m.cfg.Host})

	client, err := smtp.NewClient(tlsConn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if err := client.Mail(m.cfg.FromAddr()); err != nil {
		return err
	}
	if err := client.Rcpt(m.cfg.ToAdmin); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMessage assembles an RFC 822 message with a UTF-8 body.
func (m *Mailer) buildMessage(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.FromAddr())
	fmt.Fprintf(&b, "To: %s\r\n", m.cfg.ToAdmin)
	if replyTo := m.cfg.ReplyToAddr(); replyTo != m.cfg.FromAddr() {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func submissionBody(res *pipeline.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "投稿编号：%s\n", res.ID)
	fmt.Fprintf(&b, "提交时间：%s\n", res.Timestamp)
	if res.Meta.WeChat != "" {
		fmt.Fprintf(&b, "微信号：%s\n", res.Meta.WeChat)
	}
	if res.Meta.Email != "" {
		fmt.Fprintf(&b, "邮箱：%s\n", res.Meta.Email)
	}
	fmt.Fprintf(&b, "原始文件：%s\n", res.Original)
	fmt.Fprintf(&b, "转换成功：%d 篇\n", len(res.Converted))
	if len(res.Failed) > 0 {
		fmt.Fprintf(&b, "转换失败：%d 篇\n", len(res.Failed))
		for _, f := range res.Failed {
			fmt.Fprintf(&b, "  - %s: %s\n", f.Markdown, f.Error)
		}
	}
	return b.String()
}
