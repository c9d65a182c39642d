package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"oficri/mesapartes/internal/core/oficio"
	"oficri/mesapartes/internal/infrastructure/config"
)

// Notificador delivers pickup-ready notices over SMTP. Recipients are the
// configured mesa de partes inbox list; enabling requires a host and a
// sender address.
type Notificador struct {
	cfg config.SMTPSettings
	log *slog.Logger
}

// NewNotificador creates a new SMTP notificador.
func NewNotificador(cfg config.SMTPSettings, log *slog.Logger) *Notificador {
	return &Notificador{cfg: cfg, log: log}
}

// NotificarListoParaRecojo mails the configured recipients that a case's
// results are ready for pickup.
func (n *Notificador) NotificarListoParaRecojo(ctx context.Context, of oficio.Oficio) error {
	if !n.cfg.Enabled || len(n.cfg.NotifyTo) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.NotifyTo...)
	m.SetHeader("Subject", fmt.Sprintf("Oficio %s listo para recojo", of.NumeroOficio))
	m.SetBody("text/plain", cuerpoListoParaRecojo(of))

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	n.log.InfoContext(ctx, "notificación enviada",
		slog.Int64("id_oficio", of.ID),
		slog.String("numero_oficio", of.NumeroOficio))

	return nil
}

func cuerpoListoParaRecojo(of oficio.Oficio) string {
	var b strings.Builder
	fmt.Fprintf(&b, "El oficio %s se encuentra listo para recojo.\n\n", of.NumeroOficio)
	fmt.Fprintf(&b, "Asunto: %s\n", of.Asunto)
	fmt.Fprintf(&b, "Examinado: %s\n", of.ExaminadoIncriminado)
	if len(of.TiposDeExamen) > 0 {
		fmt.Fprintf(&b, "Exámenes: %s\n", strings.Join(of.TiposDeExamen, ", "))
	}
	fmt.Fprintf(&b, "Prioridad: %s\n", of.NombrePrioridad)
	return b.String()
}
