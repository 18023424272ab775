/*
Package config fournit la configuration centralisée de hookorder.

Ce paquet contient les constantes par défaut et les structures de configuration
partagées entre le viewer, le serveur et le client.
*/
package config

import "time"

// Environnements et niveaux
const (
	DefaultEnv      = "development"
	DefaultLogLevel = "info"
)

// Valeurs possibles de capture.passthrough (toute autre valeur est un chemin de fichier)
const (
	PassthroughStdout  = "stdout"
	PassthroughStderr  = "stderr"
	PassthroughDiscard = "discard"
	PassthroughSlog    = "slog"
)

// Constantes pour la capture
const (
	CaptureStartPaused = false
	CapturePassthrough = PassthroughDiscard
)

// Constantes pour le serveur (variante deux processus)
const (
	ServerDefaultAddr       = "127.0.0.1:8080"
	ServerPayloadVar        = "__SERVER_LOGS__"
	ServerShutdownTimeout   = 5 * time.Second
	ServerReadHeaderTimeout = 5 * time.Second
)

// Constantes pour le client
const (
	ClientDefaultPageURL = "http://" + ServerDefaultAddr + "/"
	ClientRequestTimeout = 10 * time.Second
)

// Constantes pour le viewer
const (
	ViewerMaxRecentLogs    = 20
	ViewerUIUpdateInterval = 250 * time.Millisecond
	ViewerMaxRowLength     = 90
	ViewerTruncateSuffix   = "..."
	ViewerPassthroughFile  = "hookorder.console.log"
)

// Variantes du scénario de démonstration
const (
	DemoVariantWithCompiler    = "with-compiler"
	DemoVariantWithoutCompiler = "without-compiler"
)

// Constantes pour le scénario de démonstration
const (
	DemoDefaultVariant = DemoVariantWithoutCompiler
	DemoStepInterval   = 400 * time.Millisecond
	DemoInteractions   = 3
)

// Constantes de relance
const (
	RetryMaxAttempts  = 5
	RetryInitialDelay = 200 * time.Millisecond
	RetryMaxDelay     = 3 * time.Second
	RetryMultiplier   = 2.0
)

// Rechargement à chaud
const (
	WatchDebounce = 100 * time.Millisecond
)
