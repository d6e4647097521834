package lifecycle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
)

// Period periodo contable de la facturación.
type Period struct {
	Month int
	Year  int
}

// ParsePeriod acepta "MM/AAAA".
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 4 {
		return Period{}, fmt.Errorf("%w: periodo %q (formato MM/AAAA)", domain.ErrInvalidInput, s)
	}
	m, errM := strconv.Atoi(parts[0])
	y, errY := strconv.Atoi(parts[1])
	if errM != nil || errY != nil || m < 1 || m > 12 || y < 1900 {
		return Period{}, fmt.Errorf("%w: periodo %q fuera de rango", domain.ErrInvalidInput, s)
	}
	return Period{Month: m, Year: y}, nil
}

// PeriodFromDate periodo de una fecha de contabilización.
func PeriodFromDate(d time.Time) Period {
	return Period{Month: int(d.Month()), Year: d.Year()}
}

// IsZero indica que no se informó periodo.
func (p Period) IsZero() bool {
	return p.Month == 0 && p.Year == 0
}

// String formato de cabecera MM/AAAA.
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}
