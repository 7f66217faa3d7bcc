package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout é o limite fixo de uma requisição ao fornecedor
const DefaultTimeout = 5 * time.Second

// DefaultMaxBodyBytes limita o corpo de uma resposta de sucesso
const DefaultMaxBodyBytes = 8 << 20

// Options descreve o fornecedor e como a chave deve ser enviada
type Options struct {
	BaseURL    string
	APIKey     string
	KeyInQuery bool   // true: ?apiKey=...; false: header KeyHeader
	KeyHeader  string // ex: "x-rapidapi-key"
	Regions    string
	Markets    string
	OddsFormat string
	DateFormat string
	Timeout    time.Duration
}

// Client faz uma única requisição GET por tentativa, sem retry interno
type Client struct {
	opts    Options
	HTTP    *http.Client
	Log     *zap.Logger
	MaxBody int64 // corpo maior que isso vira ParseError
}

// New cria o cliente com timeout fixo
func New(opts Options, log *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.KeyHeader == "" {
		opts.KeyHeader = "x-rapidapi-key"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		opts:    opts,
		HTTP:    &http.Client{Timeout: opts.Timeout},
		Log:     log,
		MaxBody: DefaultMaxBodyBytes,
	}
}

// Configured indica se existe chave; sem chave o cliente não deve ser chamado
func (c *Client) Configured() bool { return c.opts.APIKey != "" }

// Fetch busca o payload bruto de odds de um esporte
func (c *Client) Fetch(ctx context.Context, sportKey string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(sportKey), nil)
	if err != nil {
		return nil, &TransportError{Kind: KindNetwork, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if !c.opts.KeyInQuery {
		req.Header.Set(c.opts.KeyHeader, c.opts.APIKey)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer res.Body.Close()

	c.logQuota(sportKey, res.Header)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		prefix, _ := io.ReadAll(io.LimitReader(res.Body, bodyPrefixLimit))
		return nil, &TransportError{Kind: KindUpstreamStatus, Status: res.StatusCode, BodyPrefix: string(prefix)}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, c.MaxBody+1))
	if err != nil {
		return nil, classify(err)
	}
	if int64(len(body)) > c.MaxBody {
		return nil, &ParseError{Err: fmt.Errorf("response body exceeds %d bytes", c.MaxBody)}
	}
	return body, nil
}

// endpoint monta /sports/{sport}/odds com os parâmetros fixos do fornecedor
func (c *Client) endpoint(sportKey string) string {
	q := url.Values{}
	q.Set("regions", c.opts.Regions)
	q.Set("markets", c.opts.Markets)
	q.Set("oddsFormat", c.opts.OddsFormat)
	q.Set("dateFormat", c.opts.DateFormat)
	if c.opts.KeyInQuery {
		q.Set("apiKey", c.opts.APIKey)
	}
	return fmt.Sprintf("%s/sports/%s/odds?%s", c.opts.BaseURL, url.PathEscape(sportKey), q.Encode())
}

// logQuota registra a cota restante informada pelo fornecedor, quando presente
func (c *Client) logQuota(sportKey string, h http.Header) {
	remaining := h.Get("x-requests-remaining")
	if remaining == "" {
		return
	}
	c.Log.Debug("odds api quota",
		zap.String("sport", sportKey),
		zap.String("remaining", remaining),
		zap.String("used", h.Get("x-requests-used")),
	)
}

func classify(err error) *TransportError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TransportError{Kind: KindTimeout, Err: err}
	}
	return &TransportError{Kind: KindNetwork, Err: err}
}

// Decode interpreta o corpo como JSON de formato desconhecido.
// Números ficam como json.Number para ids inteiros grandes não perderem precisão.
func Decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Err: fmt.Errorf("unexpected data after JSON value")}
	}
	return v, nil
}
