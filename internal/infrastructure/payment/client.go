package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/pkg/config"
	"github.com/flowfix/flowfix-api/pkg/logger"
)

// Tipos de evento de webhook que el backend procesa. El resto se ignora.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// Processor es el contrato mínimo contra el procesador de pagos. Lo implementa
// Client; los casos de uso dependen de la interfaz para poder testear con fakes.
type Processor interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
	CreateSetupIntent(ctx context.Context, customerRef string) (*SetupIntentResult, error)
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
}

// IntentRequest parámetros para crear un cargo off-session contra el método
// de pago guardado del cliente.
type IntentRequest struct {
	AmountCents      int64
	Currency         string
	CustomerRef      string
	PaymentMethodRef string
	InvoiceID        string
}

// IntentResult respuesta del procesador al crear un intent.
type IntentResult struct {
	IntentRef    string
	ClientSecret string
	Status       string
}

// SetupIntentResult respuesta al crear un setup-intent (guardar tarjeta).
type SetupIntentResult struct {
	SetupRef     string
	ClientSecret string
}

// Client habla el API REST del procesador: POST form-encoded con la clave
// secreta como Bearer. Sin clave configurada toda operación retorna
// ErrPaymentNotConfigured para que el handler lo distinga de un rechazo.
type Client struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
	log        *logger.Logger
}

// NewClient construye el cliente desde la configuración.
func NewClient(cfg config.PaymentConfig, log *logger.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.stripe.com/v1"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		secretKey:  cfg.SecretKey,
		baseURL:    strings.TrimRight(base, "/"),
		log:        log,
	}
}

// CreateCustomer registra al cliente en el procesador y devuelve su referencia.
func (c *Client) CreateCustomer(ctx context.Context, email string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/customers", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateSetupIntent abre el flujo de guardar un método de pago para el cliente.
func (c *Client) CreateSetupIntent(ctx context.Context, customerRef string) (*SetupIntentResult, error) {
	form := url.Values{}
	form.Set("customer", customerRef)
	form.Set("usage", "off_session")
	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := c.post(ctx, "/setup_intents", form, &out); err != nil {
		return nil, err
	}
	return &SetupIntentResult{SetupRef: out.ID, ClientSecret: out.ClientSecret}, nil
}

// CreateIntent crea y confirma el cargo off-session de una factura. El
// invoice_id viaja en metadata para correlacionar el webhook.
func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", currency)
	form.Set("customer", req.CustomerRef)
	form.Set("payment_method", req.PaymentMethodRef)
	form.Set("confirm", "true")
	form.Set("off_session", "true")
	form.Set("metadata[invoice_id]", req.InvoiceID)
	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Status       string `json:"status"`
	}
	if err := c.post(ctx, "/payment_intents", form, &out); err != nil {
		return nil, err
	}
	return &IntentResult{IntentRef: out.ID, ClientSecret: out.ClientSecret, Status: out.Status}, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	if c.secretKey == "" {
		return domain.ErrPaymentNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("armando request al procesador: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llamando al procesador: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("leyendo respuesta del procesador: %w", err)
	}
	if resp.StatusCode >= 400 {
		return c.decodeError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decodificando respuesta del procesador: %w", err)
	}
	return nil
}

// decodeError mapea los errores del procesador a sentinelas de dominio:
// card_error → ErrPaymentDeclined; 401 → credencial inválida.
func (c *Client) decodeError(status int, body []byte) error {
	var apiErr struct {
		Error struct {
			Type    string `json:"type"`
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)
	c.log.Warn().
		Int("status", status).
		Str("type", apiErr.Error.Type).
		Str("code", apiErr.Error.Code).
		Msg("el procesador de pagos rechazó la operación")

	if status == http.StatusUnauthorized {
		return domain.ErrPaymentNotConfigured
	}
	if apiErr.Error.Type == "card_error" {
		return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, apiErr.Error.Code)
	}
	return fmt.Errorf("procesador de pagos respondió %d: %s", status, apiErr.Error.Message)
}
