// Package scheduler programa las tareas periódicas del servicio: refresco de
// las listas de referencia y limpieza de vistas inactivas.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher recarga las listas de referencia.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Sweeper descarta las vistas inactivas y devuelve cuántas cerró.
type Sweeper interface {
	SweepIdle() int
}

// SweepSpec frecuencia de la limpieza de vistas.
const SweepSpec = "@every 1m"

const refreshTimeout = 2 * time.Minute

// Jobs tareas programadas con robfig/cron. Una ejecución que todavía no
// terminó hace que se salte la siguiente.
type Jobs struct {
	cron      *cron.Cron
	refresher Refresher
	sweeper   Sweeper
	log       zerolog.Logger
}

// New construye el planificador; no arranca hasta Start.
func New(refresher Refresher, sweeper Sweeper, log zerolog.Logger) *Jobs {
	cl := cronLogger{log: log}
	return &Jobs{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		refresher: refresher,
		sweeper:   sweeper,
		log:       log,
	}
}

// Start registra las tareas y arranca el planificador.
func (j *Jobs) Start(refreshSpec string) error {
	if j.refresher != nil && refreshSpec != "" {
		if _, err := j.cron.AddFunc(refreshSpec, j.refresh); err != nil {
			return fmt.Errorf("scheduler: REFERENCE_REFRESH_CRON %q: %w", refreshSpec, err)
		}
	}
	if j.sweeper != nil {
		if _, err := j.cron.AddFunc(SweepSpec, j.sweep); err != nil {
			return fmt.Errorf("scheduler: limpieza de vistas: %w", err)
		}
	}
	j.cron.Start()
	j.log.Info().Str("refresh", refreshSpec).Str("sweep", SweepSpec).Msg("tareas programadas iniciadas")
	return nil
}

// Stop detiene el planificador y espera a que terminen las tareas en curso
// o a que venza ctx.
func (j *Jobs) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.log.Warn().Msg("tareas programadas no terminaron a tiempo")
	}
	j.log.Info().Msg("tareas programadas detenidas")
}

func (j *Jobs) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := j.refresher.Refresh(ctx); err != nil {
		j.log.Error().Err(err).Msg("refresco de listas de referencia falló")
	}
}

func (j *Jobs) sweep() {
	if n := j.sweeper.SweepIdle(); n > 0 {
		j.log.Info().Int("closed", n).Msg("vistas inactivas cerradas")
	}
}

// cronLogger adapta zerolog a cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
