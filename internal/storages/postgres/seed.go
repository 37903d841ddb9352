package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// defaultFunds начальный каталог фондов
var defaultFunds = []struct {
	nombre      string
	categoria   string
	montoMinimo int64
	descripcion string
}{
	{"FPV_BTG_PACTUAL_RECAUDADORA", "FPV", 75000, "Fondo voluntario de pensión recaudador"},
	{"FPV_BTG_PACTUAL_ECOPETROL", "FPV", 125000, "Fondo voluntario de pensión Ecopetrol"},
	{"DEUDAPRIVADA", "FIC", 50000, "Fondo de inversión colectiva en deuda privada"},
	{"FDO-ACCIONES", "FIC", 250000, "Fondo de inversión colectiva en acciones"},
	{"FPV_BTG_PACTUAL_DINAMICA", "FPV", 100000, "Fondo voluntario de pensión dinámico"},
}

// seedFunds добавляет начальный каталог фондов, если таблица пустая
func (s *PostgresStorage) seedFunds(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fondos").Scan(&count); err != nil {
		return err
	}

	if count > 0 {
		s.logger.Info("Fund catalog already contains data, skipping seed")
		return nil
	}

	for _, f := range defaultFunds {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO fondos (nombre, categoria, monto_minimo, descripcion)
			 VALUES ($1, $2, $3, $4) ON CONFLICT (nombre, categoria) DO NOTHING`,
			f.nombre, f.categoria, decimal.NewFromInt(f.montoMinimo), f.descripcion,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fund %s: %w", f.nombre, err)
		}
	}

	s.logger.Infof("Seeded %d funds", len(defaultFunds))
	return nil
}
