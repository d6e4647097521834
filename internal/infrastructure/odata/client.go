// Package odata implementa el puerto DocumentStore sobre el servicio OData v2
// del SAP Gateway: lecturas JSON, envío de lotes por deep insert con token
// CSRF y parseo de errores del Gateway en JSON o XML.
package odata

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/pkcs12"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/repository"
)

var _ repository.DocumentStore = (*Client)(nil)

// ── Colecciones del servicio ───────────────────────────────────────────────────

const (
	setLines                = "LineasEntregaSet"
	setMaterialGroups       = "GruposMaterialSet"
	setSellingPlants        = "CentrosSuministroSet"
	setBuyingPlants         = "CentrosRecepcionSet"
	setRegistrationStatuses = "StatusRegistroSet"
	setActionStatuses       = "StatusAccionSet"
	setBatches              = "LotesSet"

	maxBodyBytes = 8 << 20
)

// Config parámetros de conexión al Gateway.
type Config struct {
	BaseURL      string // ej. https://gw.example.com
	ServicePath  string // ej. /sap/opu/odata/sap/ZMM_ENTREGAS_SRV
	SAPClient    string // mandante (sap-client)
	User         string
	Password     string
	CertPath     string // .p12/.pfx o certificado PEM
	CertKeyPath  string // llave PEM; vacío si CertPath es .p12
	CertPassword string
	Timeout      time.Duration
}

// Client adaptador HTTP del servicio OData.
type Client struct {
	cfg        Config
	base       *url.URL
	httpClient *http.Client
	log        zerolog.Logger

	mu        sync.Mutex
	csrfToken string
}

// NewClient construye el cliente. Si hay certificado configurado se usa como
// certificado de cliente TLS.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("odata: ODATA_BASE_URL vacío")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.Trim(cfg.ServicePath, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("odata: URL base: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("odata: cookie jar: %w", err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.CertPath != "" {
		cert, err := loadClientCert(cfg.CertPath, cfg.CertKeyPath, cfg.CertPassword)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	}
	return &Client{
		cfg:        cfg,
		base:       base,
		httpClient: &http.Client{Timeout: cfg.Timeout, Jar: jar, Transport: transport},
		log:        log,
	}, nil
}

// loadClientCert carga el certificado de cliente desde .p12/.pfx o PEM.
func loadClientCert(certPath, keyPath, password string) (tls.Certificate, error) {
	lower := strings.ToLower(certPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		data, err := os.ReadFile(certPath)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("odata: leer p12: %w", err)
		}
		priv, cert, err := pkcs12.Decode(data, password)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("odata: decodificar p12: %w", err)
		}
		return tls.Certificate{Certificate: [][]byte{cert.Raw}, PrivateKey: priv, Leaf: cert}, nil
	}
	if keyPath == "" {
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("odata: cargar PEM: %w", err)
	}
	return cert, nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

// ListMaterialGroups grupos de material.
func (c *Client) ListMaterialGroups(ctx context.Context) ([]entity.ReferenceItem, error) {
	return c.listReference(ctx, setMaterialGroups, nil)
}

// ListSellingPlants centros de suministro.
func (c *Client) ListSellingPlants(ctx context.Context) ([]entity.ReferenceItem, error) {
	return c.listReference(ctx, setSellingPlants, nil)
}

// ListBuyingPlants centros de recepción.
func (c *Client) ListBuyingPlants(ctx context.Context) ([]entity.ReferenceItem, error) {
	return c.listReference(ctx, setBuyingPlants, nil)
}

// ListRegistrationStatuses estados de registro.
func (c *Client) ListRegistrationStatuses(ctx context.Context) ([]entity.ReferenceItem, error) {
	return c.listReference(ctx, setRegistrationStatuses, nil)
}

// ListActionStatuses estados posibles del resultado de una acción.
func (c *Client) ListActionStatuses(ctx context.Context, action string) ([]entity.ActionStatus, error) {
	q := url.Values{}
	q.Set("$filter", "Accion eq "+quote(action))
	var items []wireActionStatus
	if err := c.getCollection(ctx, setActionStatuses, q, &items); err != nil {
		return nil, err
	}
	out := make([]entity.ActionStatus, 0, len(items))
	for _, it := range items {
		out = append(out, entity.ActionStatus{
			Action: strings.TrimSpace(it.Accion),
			Code:   strings.TrimSpace(it.Codigo),
			Label:  strings.TrimSpace(it.Descripcion),
		})
	}
	return out, nil
}

func (c *Client) listReference(ctx context.Context, set string, q url.Values) ([]entity.ReferenceItem, error) {
	var items []wireReference
	if err := c.getCollection(ctx, set, q, &items); err != nil {
		return nil, err
	}
	out := make([]entity.ReferenceItem, 0, len(items))
	for _, it := range items {
		out = append(out, entity.ReferenceItem{Key: strings.TrimSpace(it.Clave), Text: strings.TrimSpace(it.Texto)})
	}
	return out, nil
}

// QueryLines lee las líneas de entrega filtradas por las facetas de la consulta.
func (c *Client) QueryLines(ctx context.Context, dq repository.DocumentQuery) ([]lifecycle.RawRecord, error) {
	q := url.Values{}
	if f := RenderFilter(dq.Filter()); f != "" {
		q.Set("$filter", f)
	}
	if dq.Top > 0 {
		q.Set("$top", fmt.Sprint(dq.Top))
	}
	var items []wireLine
	if err := c.getCollection(ctx, setLines, q, &items); err != nil {
		return nil, err
	}
	out := make([]lifecycle.RawRecord, 0, len(items))
	for _, it := range items {
		out = append(out, it.toRaw())
	}
	return out, nil
}

// getCollection GET de una colección y decodificación de {"d":{"results":[…]}}.
func (c *Client) getCollection(ctx context.Context, set string, q url.Values, dst any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("$format", "json")
	req, err := c.newRequest(ctx, http.MethodGet, set, q, nil)
	if err != nil {
		return err
	}
	body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("odata: leer %s: %w", set, err)
	}
	var env struct {
		D struct {
			Results json.RawMessage `json:"results"`
		} `json:"d"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("odata: decodificar %s: %w", set, err)
	}
	if len(env.D.Results) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.D.Results, dst); err != nil {
		return fmt.Errorf("odata: decodificar %s: %w", set, err)
	}
	return nil
}

// ── Envío de lotes ────────────────────────────────────────────────────────────

// SubmitBatch envía el lote como deep insert (cabecera + líneas + resultados).
// Si el Gateway rechaza el token CSRF (403) se pide uno nuevo y se reintenta
// una sola vez.
func (c *Client) SubmitBatch(ctx context.Context, br entity.BatchRequest) (*entity.BatchResponse, error) {
	payload, err := json.Marshal(toWireBatch(br))
	if err != nil {
		return nil, fmt.Errorf("odata: serializar lote: %w", err)
	}

	body, err := c.postBatch(ctx, payload, false)
	if err != nil {
		return nil, err
	}
	var env struct {
		D wireBatchResult `json:"d"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("odata: decodificar respuesta del lote: %w", err)
	}
	return env.D.toResponse(), nil
}

func (c *Client) postBatch(ctx context.Context, payload []byte, retried bool) ([]byte, error) {
	token, err := c.token(ctx, retried)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("$format", "json")
	req, err := c.newRequest(ctx, http.MethodPost, setBatches, q, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", token)

	body, err := c.do(req)
	if err != nil {
		var ge *GatewayError
		if !retried && asGatewayError(err, &ge) && ge.Status == http.StatusForbidden && ge.CSRFRequired {
			c.log.Debug().Msg("token CSRF rechazado, se solicita uno nuevo")
			return c.postBatch(ctx, payload, true)
		}
		return nil, fmt.Errorf("odata: enviar lote: %w", err)
	}
	return body, nil
}

// token devuelve el token CSRF en caché o lo solicita con un GET al documento
// de servicio (X-CSRF-Token: Fetch). La cookie de sesión queda en el jar.
func (c *Client) token(ctx context.Context, refresh bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.csrfToken != "" && !refresh {
		return c.csrfToken, nil
	}
	req, err := c.newRequest(ctx, http.MethodGet, "", nil, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-CSRF-Token", "Fetch")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("odata: obtener token CSRF: HTTP %d", resp.StatusCode)
	}
	tok := resp.Header.Get("X-CSRF-Token")
	if tok == "" {
		return "", fmt.Errorf("odata: el Gateway no devolvió token CSRF")
	}
	c.csrfToken = tok
	return tok, nil
}

// ── HTTP ──────────────────────────────────────────────────────────────────────

func (c *Client) newRequest(ctx context.Context, method, set string, q url.Values, body io.Reader) (*http.Request, error) {
	u := *c.base
	u.Path += set
	if q == nil {
		q = url.Values{}
	}
	if c.cfg.SAPClient != "" {
		q.Set("sap-client", c.cfg.SAPClient)
	}
	// url.Values.Encode escapa "$" en las claves; el Gateway lo acepta igual.
	u.RawQuery = strings.ReplaceAll(q.Encode(), "+", "%20")
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("odata: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.User != "" {
		req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	}
	return req, nil
}

// do ejecuta la llamada y devuelve el cuerpo; los estados >= 400 se convierten
// en *GatewayError con el mensaje del Gateway.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(req.Context(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("leer respuesta: %w", err)
	}
	if resp.StatusCode >= 400 {
		ge := parseGatewayError(resp.StatusCode, resp.Header.Get("Content-Type"), body)
		ge.CSRFRequired = strings.EqualFold(resp.Header.Get("X-CSRF-Token"), "Required")
		c.log.Warn().Int("status", ge.Status).Str("code", ge.Code).Str("url", req.URL.Path).Msg(ge.Message)
		return nil, ge
	}
	return body, nil
}

func transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("timeout o cancelación: %w", ctx.Err())
	}
	return fmt.Errorf("llamada HTTP fallida: %w", err)
}
