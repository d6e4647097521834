package odata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// GatewayError error devuelto por el SAP Gateway.
type GatewayError struct {
	Status       int
	Code         string
	Message      string
	Details      []string
	CSRFRequired bool
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "sin detalle"
	}
	if e.Code != "" {
		return fmt.Sprintf("gateway HTTP %d [%s]: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("gateway HTTP %d: %s", e.Status, msg)
}

func asGatewayError(err error, target **GatewayError) bool {
	return errors.As(err, target)
}

// parseGatewayError arma el error a partir del cuerpo JSON o XML del Gateway.
// Un cuerpo que no se puede interpretar queda como mensaje recortado.
func parseGatewayError(status int, contentType string, body []byte) *GatewayError {
	ge := &GatewayError{Status: status}
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '{':
		parseJSONError(trimmed, ge)
	case trimmed[0] == '<':
		parseXMLError(trimmed, contentType, ge)
	default:
		ge.Message = truncate(string(trimmed), 300)
	}
	return ge
}

func parseJSONError(body []byte, ge *GatewayError) {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message struct {
				Value string `json:"value"`
			} `json:"message"`
			InnerError struct {
				ErrorDetails []struct {
					Code     string `json:"code"`
					Message  string `json:"message"`
					Severity string `json:"severity"`
				} `json:"errordetails"`
			} `json:"innererror"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		ge.Message = truncate(string(body), 300)
		return
	}
	ge.Code = env.Error.Code
	ge.Message = env.Error.Message.Value
	for _, d := range env.Error.InnerError.ErrorDetails {
		if d.Message != "" && d.Message != ge.Message {
			ge.Details = append(ge.Details, d.Message)
		}
	}
}

func parseXMLError(body []byte, contentType string, ge *GatewayError) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if latin1(contentType) && !bytes.HasPrefix(body, []byte("<?xml")) {
		body = append([]byte(`<?xml version="1.0" encoding="iso-8859-1"?>`), body...)
	}
	if err := doc.ReadFromBytes(body); err != nil {
		ge.Message = truncate(string(body), 300)
		return
	}
	root := doc.Root()
	if root == nil {
		return
	}
	if el := root.FindElement("./code"); el != nil {
		ge.Code = strings.TrimSpace(el.Text())
	}
	if el := root.FindElement("./message"); el != nil {
		ge.Message = strings.TrimSpace(el.Text())
	}
	for _, d := range root.FindElements("./innererror/errordetails/errordetail/message") {
		if t := strings.TrimSpace(d.Text()); t != "" && t != ge.Message {
			ge.Details = append(ge.Details, t)
		}
	}
}

// charsetReader los errores del Gateway pueden venir en ISO-8859-1.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	if latin1(charset) {
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	}
	return input, nil
}

func latin1(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "iso-8859-1") || strings.Contains(s, "iso8859-1") || strings.Contains(s, "latin1")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
