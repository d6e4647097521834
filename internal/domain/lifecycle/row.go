package lifecycle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/sunat"
)

// RawRecord registro tal como lo entrega el backend: todo texto, con campos
// opcionales que pueden venir vacíos. Las diferencias QtyDelta/AmountDelta se
// reciben pero nunca se usan.
type RawRecord struct {
	OrderID                string
	LineNo                 string
	Delivery               string
	DeliveryDate           string
	SellingPlant           string
	BuyingPlant            string
	Material               string
	MaterialGroup          string
	Description            string
	Unit                   string
	Currency               string
	QtyShipped             string
	QtyReceived            string
	QtyDelta               string
	AmountShipped          string
	AmountReceived         string
	AmountDelta            string
	ToleranceCode          string
	InvoiceNumber          string
	TaxSubmissionStatus    string
	TaxReference           string
	InvoiceVerificationDoc string
	LastEventMessage       string
	RegistrationStatus     string
	LastAction             string
}

// NormalizeRow convierte el registro crudo a la forma canónica. Aplica una sola
// vez las reglas de defecto: recorte de espacios, tolerancia ausente → WithinZero,
// clasificación del estado SUNAT por catálogo y recálculo de diferencias.
func NormalizeRow(raw RawRecord, catalog *StatusCatalog) (*entity.DeliveryLine, error) {
	if catalog == nil {
		catalog = DefaultStatusCatalog()
	}
	t := strings.TrimSpace
	line := &entity.DeliveryLine{
		OrderID:                t(raw.OrderID),
		LineNo:                 t(raw.LineNo),
		Delivery:               t(raw.Delivery),
		SellingPlant:           t(raw.SellingPlant),
		BuyingPlant:            t(raw.BuyingPlant),
		Material:               t(raw.Material),
		MaterialGroup:          t(raw.MaterialGroup),
		Description:            t(raw.Description),
		Unit:                   t(raw.Unit),
		Currency:               t(raw.Currency),
		InvoiceNumber:          t(raw.InvoiceNumber),
		TaxSubmissionStatus:    t(raw.TaxSubmissionStatus),
		TaxReference:           t(raw.TaxReference),
		InvoiceVerificationDoc: t(raw.InvoiceVerificationDoc),
		LastEventMessage:       t(raw.LastEventMessage),
		RegistrationStatus:     t(raw.RegistrationStatus),
		LastAction:             strings.ToUpper(t(raw.LastAction)),
		Tolerance:              ParseTolerance(raw.ToleranceCode),
	}
	if line.OrderID == "" || line.LineNo == "" {
		return nil, fmt.Errorf("%w: pedido/posición vacío", domain.ErrInvalidRecord)
	}

	var err error
	if line.QtyShipped, err = parseAmount(raw.QtyShipped); err != nil {
		return nil, fieldError(line, "cantidad salida", err)
	}
	if line.QtyReceived, err = parseAmount(raw.QtyReceived); err != nil {
		return nil, fieldError(line, "cantidad entrega", err)
	}
	if line.AmountShipped, err = parseAmount(raw.AmountShipped); err != nil {
		return nil, fieldError(line, "importe salida", err)
	}
	if line.AmountReceived, err = parseAmount(raw.AmountReceived); err != nil {
		return nil, fieldError(line, "importe entrega", err)
	}
	if line.DeliveryDate, err = parseDate(raw.DeliveryDate); err != nil {
		return nil, fieldError(line, "fecha de entrega", err)
	}

	line.TaxStatus = catalog.Classify(line.TaxSubmissionStatus)
	line.Recompute()
	return line, nil
}

// ParseTolerance traduce el código de tolerancia del backend. Ausente → WithinZero;
// un código desconocido se trata como fuera de tolerancia.
func ParseTolerance(code string) entity.ToleranceState {
	switch strings.TrimSpace(code) {
	case "", sunat.ToleranceCodeNoDifference:
		return entity.WithinZero
	case sunat.ToleranceCodeWithin:
		return entity.WithinTolerance
	case sunat.ToleranceCodeOut:
		return entity.OutOfTolerance
	}
	return entity.OutOfTolerance
}

// ToleranceCode operación inversa de ParseTolerance (para el lote de salida).
func ToleranceCode(t entity.ToleranceState) string {
	switch t {
	case entity.WithinZero:
		return sunat.ToleranceCodeNoDifference
	case entity.WithinTolerance:
		return sunat.ToleranceCodeWithin
	}
	return sunat.ToleranceCodeOut
}

func fieldError(line *entity.DeliveryLine, field string, err error) error {
	return fmt.Errorf("%w: %s en %s: %v", domain.ErrInvalidRecord, field, line.Key(), err)
}

// parseAmount acepta "", "10", "10.500" y el signo al final estilo ABAP ("5.00-").
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.HasSuffix(s, "-") {
		s = "-" + strings.TrimSpace(strings.TrimSuffix(s, "-"))
	}
	return decimal.NewFromString(s)
}

var sapDateRe = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// parseDate acepta yyyy-MM-dd, yyyyMMdd, ISO 8601 y el formato JSON de SAP
// Gateway "/Date(ms)/".
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "00000000" {
		return time.Time{}, nil
	}
	if m := sapDateRe.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range []string{"2006-01-02", "20060102", "2006-01-02T15:04:05", time.RFC3339} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de fecha no reconocido %q", s)
}
