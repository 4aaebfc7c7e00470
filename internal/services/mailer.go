package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/skip2/go-qrcode"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"storefront_back_end/internal/config"
	"storefront_back_end/internal/models"
)

var orderConfirmationTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order confirmation</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Your order has been placed successfully.</h2>
		<p>Hello {{.Name}},</p>
		<p>Order reference: <strong>{{.CheckoutID}}</strong></p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Product</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantity</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Price</th>
				</tr>
			</thead>
			<tbody>
				{{range .Orders}}<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.ProductName}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Quantity}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{printf "%.2f" .ProductPrice}}</td>
				</tr>{{end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="2" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{printf "%.2f" .Total}}</td>
				</tr>
			</tfoot>
		</table>
		<p>Shipping to: {{.Address}}</p>
		<p>The attached QR code links to your orders page.</p>
	</div>
</body>
</html>`))

// Mailer envoie les e-mails transactionnels via SMTP.
type Mailer struct {
	cfg         config.SMTPConfig
	frontendURL string
	log         *zap.Logger
}

func NewMailer(cfg config.SMTPConfig, frontendURL string, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, frontendURL: frontendURL, log: log}
}

func (m *Mailer) Enabled() bool { return m != nil && m.cfg.Enabled() }

// SendOrderConfirmation : récapitulatif + QR code vers la page commandes.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, to string, result *models.CheckoutResult) error {
	if !m.Enabled() {
		return ErrMailDisabled
	}

	body, err := RenderOrderConfirmation(result)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject("Order confirmation " + result.CheckoutID)
	msg.SetBodyString(mail.TypeTextHTML, body)

	png, err := qrcode.Encode(m.frontendURL+"/orders?checkout="+result.CheckoutID, qrcode.Medium, 256)
	if err != nil {
		m.log.Warn("⚠️ order QR code generation failed", zap.Error(err))
	} else {
		msg.AttachReader("order-"+result.CheckoutID+".png", bytes.NewReader(png))
	}

	return m.send(ctx, msg)
}

// SendContact relaie le formulaire contact vers CONTACT_EMAIL.
func (m *Mailer) SendContact(ctx context.Context, contact models.ContactMessage) error {
	if !m.Enabled() || m.cfg.ContactEmail == "" {
		return ErrMailDisabled
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.cfg.ContactEmail); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	if err := msg.ReplyTo(contact.Email); err != nil {
		return fmt.Errorf("mail reply-to: %w", err)
	}
	msg.Subject("Contact form: " + contact.Name)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("From: %s <%s>\n\n%s", contact.Name, contact.Email, contact.Message))

	return m.send(ctx, msg)
}

func (m *Mailer) send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}

// RenderOrderConfirmation produit le corps HTML de l'e-mail de confirmation.
func RenderOrderConfirmation(result *models.CheckoutResult) (string, error) {
	data := struct {
		*models.CheckoutResult
		Name    string
		Address string
	}{CheckoutResult: result}
	if len(result.Orders) > 0 {
		data.Name = result.Orders[0].Name
		data.Address = result.Orders[0].Address
	}

	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}
