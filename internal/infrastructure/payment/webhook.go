package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadSignature indica una firma de webhook ausente, malformada o inválida.
var ErrBadSignature = errors.New("firma de webhook inválida")

// Tolerancia del timestamp de la firma frente a replays.
const signatureTolerance = 5 * time.Minute

// WebhookEvent es el evento ya verificado y decodificado que consume el caso
// de uso. InvoiceID sale de metadata; IntentRef es el id del payment intent.
type WebhookEvent struct {
	ID        string
	Type      string
	IntentRef string
	InvoiceID string
}

// VerifySignature valida el header `t=<unix>,v1=<hex>` contra
// HMAC-SHA256(secret, "<t>.<payload>") y rechaza timestamps fuera de
// tolerancia. Comparación en tiempo constante.
func VerifySignature(secret string, payload []byte, header string, now time.Time) error {
	if secret == "" || header == "" {
		return ErrBadSignature
	}
	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrBadSignature
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if diff := now.Sub(time.Unix(unix, 0)); diff > signatureTolerance || diff < -signatureTolerance {
		return fmt.Errorf("%w: timestamp fuera de tolerancia", ErrBadSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrBadSignature
}

// ParseEvent decodifica el payload ya verificado.
func ParseEvent(payload []byte) (*WebhookEvent, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID       string `json:"id"`
				Metadata struct {
					InvoiceID string `json:"invoice_id"`
				} `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decodificando evento de webhook: %w", err)
	}
	if raw.ID == "" || raw.Type == "" {
		return nil, errors.New("evento de webhook sin id o type")
	}
	return &WebhookEvent{
		ID:        raw.ID,
		Type:      raw.Type,
		IntentRef: raw.Data.Object.ID,
		InvoiceID: raw.Data.Object.Metadata.InvoiceID,
	}, nil
}
