package odata

import (
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
)

// Estructuras tal como las expone el servicio SAP (nombres de propiedades del
// modelo OData). Los números y fechas llegan como texto.

type wireReference struct {
	Clave string `json:"Clave"`
	Texto string `json:"Texto"`
}

type wireActionStatus struct {
	Accion      string `json:"Accion"`
	Codigo      string `json:"Codigo"`
	Descripcion string `json:"Descripcion"`
}

type wireLine struct {
	IdLinea          string `json:"IdLinea,omitempty"`
	Pedido           string `json:"Pedido"`
	Posicion         string `json:"Posicion"`
	Entrega          string `json:"Entrega"`
	FechaEntrega     string `json:"FechaEntrega,omitempty"`
	CentroSum        string `json:"CentroSum"`
	CentroRecep      string `json:"CentroRecep"`
	Material         string `json:"Material"`
	GrupoMaterial    string `json:"GrupoMaterial"`
	Descripcion      string `json:"Descripcion"`
	Unidad           string `json:"Unidad"`
	Moneda           string `json:"Moneda"`
	CantSal          string `json:"CantSal"`
	CantEnt          string `json:"CantEnt"`
	DifCant          string `json:"DifCant"`
	ImpSal           string `json:"ImpSal"`
	ImpEnt           string `json:"ImpEnt"`
	DifImp           string `json:"DifImp"`
	Tolerancia       string `json:"Tolerancia"`
	Factura          string `json:"Factura"`
	StatusEnvioSunat string `json:"StatusEnvioSunat"`
	Referencia       string `json:"Referencia"`
	DocMiro          string `json:"DocMiro"`
	Mensaje          string `json:"Mensaje"`
	StatusRegistro   string `json:"StatusRegistro"`
	UltimaAccion     string `json:"UltimaAccion"`
}

func (w wireLine) toRaw() lifecycle.RawRecord {
	return lifecycle.RawRecord{
		OrderID:                w.Pedido,
		LineNo:                 w.Posicion,
		Delivery:               w.Entrega,
		DeliveryDate:           w.FechaEntrega,
		SellingPlant:           w.CentroSum,
		BuyingPlant:            w.CentroRecep,
		Material:               w.Material,
		MaterialGroup:          w.GrupoMaterial,
		Description:            w.Descripcion,
		Unit:                   w.Unidad,
		Currency:               w.Moneda,
		QtyShipped:             w.CantSal,
		QtyReceived:            w.CantEnt,
		QtyDelta:               w.DifCant,
		AmountShipped:          w.ImpSal,
		AmountReceived:         w.ImpEnt,
		AmountDelta:            w.DifImp,
		ToleranceCode:          w.Tolerancia,
		InvoiceNumber:          w.Factura,
		TaxSubmissionStatus:    w.StatusEnvioSunat,
		TaxReference:           w.Referencia,
		InvoiceVerificationDoc: w.DocMiro,
		LastEventMessage:       w.Mensaje,
		RegistrationStatus:     w.StatusRegistro,
		LastAction:             w.UltimaAccion,
	}
}

// wireBatch cuerpo del deep insert. Resultados y Mensajes van vacíos: los
// completa el backend en la respuesta.
type wireBatch struct {
	CentroSum     string        `json:"CentroSum"`
	CentroRecep   string        `json:"CentroRecep"`
	GrupoMaterial string        `json:"GrupoMaterial"`
	Accion        string        `json:"Accion"`
	Periodo       string        `json:"Periodo"`
	Lineas        []wireLine    `json:"Lineas"`
	Resultados    []wireLine    `json:"Resultados"`
	Mensajes      []wireMessage `json:"Mensajes"`
}

func toWireBatch(br entity.BatchRequest) wireBatch {
	out := wireBatch{
		CentroSum:     br.Header.SellingPlant,
		CentroRecep:   br.Header.BuyingPlant,
		GrupoMaterial: br.Header.MaterialGroup,
		Accion:        br.Header.Action,
		Periodo:       br.Header.Period,
		Lineas:        make([]wireLine, 0, len(br.Lines)),
		Resultados:    []wireLine{},
		Mensajes:      []wireMessage{},
	}
	for _, l := range br.Lines {
		out.Lineas = append(out.Lineas, wireLine{
			IdLinea:          l.CorrelationID,
			Pedido:           l.OrderID,
			Posicion:         l.LineNo,
			Entrega:          l.Delivery,
			CentroSum:        br.Header.SellingPlant,
			CentroRecep:      br.Header.BuyingPlant,
			Material:         l.Material,
			GrupoMaterial:    br.Header.MaterialGroup,
			CantSal:          l.QtyShipped.String(),
			CantEnt:          l.QtyReceived.String(),
			DifCant:          l.QtyShipped.Sub(l.QtyReceived).String(),
			ImpSal:           l.AmountShipped.String(),
			ImpEnt:           l.AmountReceived.String(),
			DifImp:           l.AmountShipped.Sub(l.AmountReceived).String(),
			Tolerancia:       lifecycle.ToleranceCode(l.Tolerance),
			Factura:          l.InvoiceNumber,
			StatusEnvioSunat: l.TaxSubmissionStatus,
			Referencia:       l.TaxReference,
			DocMiro:          l.InvoiceVerificationDoc,
			StatusRegistro:   l.RegistrationStatus,
		})
	}
	return out
}

type wireMessage struct {
	IdLinea string `json:"IdLinea"`
	Tipo    string `json:"Tipo"`
	Texto   string `json:"Texto"`
}

// wireResultLine línea de resultado. Los punteros distinguen "no vino" de
// "vino vacío".
type wireResultLine struct {
	IdLinea          string  `json:"IdLinea"`
	Pedido           string  `json:"Pedido"`
	Posicion         string  `json:"Posicion"`
	Factura          *string `json:"Factura"`
	StatusEnvioSunat *string `json:"StatusEnvioSunat"`
	Referencia       *string `json:"Referencia"`
	DocMiro          *string `json:"DocMiro"`
	Mensaje          *string `json:"Mensaje"`
	StatusRegistro   *string `json:"StatusRegistro"`
	UltimaAccion     *string `json:"UltimaAccion"`
}

type wireBatchResult struct {
	Resultados struct {
		Results []wireResultLine `json:"results"`
	} `json:"Resultados"`
	Mensajes struct {
		Results []wireMessage `json:"results"`
	} `json:"Mensajes"`
}

func (w wireBatchResult) toResponse() *entity.BatchResponse {
	out := &entity.BatchResponse{
		Lines:    make([]entity.ResponseLine, 0, len(w.Resultados.Results)),
		Messages: make([]entity.BatchMessage, 0, len(w.Mensajes.Results)),
	}
	for _, r := range w.Resultados.Results {
		out.Lines = append(out.Lines, entity.ResponseLine{
			CorrelationID:          r.IdLinea,
			OrderID:                r.Pedido,
			LineNo:                 r.Posicion,
			InvoiceNumber:          r.Factura,
			TaxSubmissionStatus:    r.StatusEnvioSunat,
			TaxReference:           r.Referencia,
			InvoiceVerificationDoc: r.DocMiro,
			LastEventMessage:       r.Mensaje,
			RegistrationStatus:     r.StatusRegistro,
			LastAction:             r.UltimaAccion,
		})
	}
	for _, m := range w.Mensajes.Results {
		out.Messages = append(out.Messages, entity.BatchMessage{LineID: m.IdLinea, Type: m.Tipo, Text: m.Texto})
	}
	return out
}
