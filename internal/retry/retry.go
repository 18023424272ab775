/*
Package retry fournit une logique de relance avec un backoff exponentiel.

Elle sert au client pour récupérer la page du serveur, qui peut démarrer
après lui.
*/
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Config contient la configuration pour le mécanisme de relance.
type Config struct {
	MaxAttempts  int           // Nombre maximum de tentatives (incluant la première).
	InitialDelay time.Duration // Délai initial avant la première relance.
	MaxDelay     time.Duration // Délai maximum entre les relances.
	Multiplier   float64       // Multiplicateur pour le backoff exponentiel.
}

// DefaultConfig retourne une configuration de relance par défaut.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// normalize corrige les valeurs hors bornes: au moins une tentative,
// un multiplicateur d'au moins 1 et un plafond jamais inférieur au délai initial.
func (c Config) normalize() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Multiplier < 1 {
		c.Multiplier = 1
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	return c
}

// PermanentError enveloppe une erreur pour indiquer qu'elle ne doit pas être retentée.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent enveloppe err pour indiquer qu'elle ne doit pas être retentée.
// Retourne nil si err est nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent vérifie si une erreur est marquée comme permanente.
func IsPermanent(err error) bool {
	var permanentErr *PermanentError
	return errors.As(err, &permanentErr)
}

// Result contient le résultat d'une opération de relance.
type Result struct {
	Attempts int           // Nombre de tentatives effectuées.
	Duration time.Duration // Durée totale de toutes les tentatives.
	Err      error         // Erreur finale (nil si succès).
}

// Do exécute fn jusqu'à ce qu'elle réussisse, retourne une erreur permanente,
// ou que le nombre maximum de tentatives soit atteint.
func Do(ctx context.Context, cfg Config, fn func() error) Result {
	return DoWithCallback(ctx, cfg, fn, nil)
}

// DoWithCallback est comme Do mais appelle onRetry avant chaque attente,
// avec le numéro de la tentative échouée, son erreur et le prochain délai.
func DoWithCallback(ctx context.Context, cfg Config, fn func() error, onRetry func(attempt int, err error, nextDelay time.Duration)) Result {
	cfg = cfg.normalize()
	start := time.Now()
	done := func(attempt int, err error) Result {
		return Result{Attempts: attempt, Duration: time.Since(start), Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return done(attempt, err)
		}

		err := fn()
		if err == nil {
			return done(attempt, nil)
		}
		lastErr = err
		if IsPermanent(err) {
			return done(attempt, err)
		}

		// Pas d'attente après la dernière tentative
		if attempt == cfg.MaxAttempts {
			break
		}
		delay := calculateDelay(attempt, cfg)
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return done(attempt, ctx.Err())
		case <-timer.C:
		}
	}
	return done(cfg.MaxAttempts, lastErr)
}

// calculateDelay calcule le délai d'une tentative: backoff exponentiel plafonné
// puis jitter de ±25%.
func calculateDelay(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	jitter := delay * 0.25 * (rand.Float64()*2 - 1)
	return time.Duration(delay + jitter)
}
